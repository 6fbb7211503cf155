package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func weekdaysToInts(days []time.Weekday) []int32 {
	out := make([]int32, 0, len(days))
	for _, d := range days {
		out = append(out, int32(d))
	}
	return out
}

func intsToWeekdays(days []int32) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

// LockCollaborators serializes concurrent binds against the same resource:
// every bind takes row locks on its target collaborators for the duration of
// the transaction, so overlapping binds re-check commitments one at a time.
func LockCollaborators(ctx context.Context, q Querier, ids []string) error {
	rows, err := q.Query(ctx, `SELECT id FROM collaborators WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Commitments returns every live commitment touching any of the given
// collaborators, from both sources: scheduled services and recurring
// allocations. Availability is always derived from these rows on demand.
func Commitments(ctx context.Context, q Querier, collaboratorIDs []string) ([]models.Commitment, error) {
	var out []models.Commitment

	rows, err := q.Query(ctx, `
		SELECT id, collaborator_id, member_ids, date, start_time, end_time
		FROM scheduled_services
		WHERE status IN ('scheduled', 'in-progress')
			AND (collaborator_id = ANY($1) OR member_ids && $1)`, collaboratorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c         models.Commitment
			collabID  *string
			memberIDs []string
			date      time.Time
		)
		if err := rows.Scan(&c.ID, &collabID, &memberIDs, &date, &c.Start, &c.End); err != nil {
			return nil, err
		}
		c.Kind = models.CommitmentService
		c.Date = &date
		if collabID != nil {
			c.CollaboratorIDs = []string{*collabID}
		} else {
			c.CollaboratorIDs = memberIDs
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	allocRows, err := q.Query(ctx, `
		SELECT id, collaborator_id, start_date, end_date, weekdays, start_time, end_time
		FROM allocations
		WHERE status = 'active' AND collaborator_id = ANY($1)`, collaboratorIDs)
	if err != nil {
		return nil, err
	}
	defer allocRows.Close()
	for allocRows.Next() {
		var (
			c          models.Commitment
			collabID   string
			startDate  time.Time
			endDate    time.Time
			weekdayInt []int32
		)
		if err := allocRows.Scan(&c.ID, &collabID, &startDate, &endDate, &weekdayInt, &c.Start, &c.End); err != nil {
			return nil, err
		}
		c.Kind = models.CommitmentAllocation
		c.CollaboratorIDs = []string{collabID}
		c.StartDate = &startDate
		c.EndDate = &endDate
		c.Weekdays = intsToWeekdays(weekdayInt)
		out = append(out, c)
	}
	return out, allocRows.Err()
}

func InsertScheduledService(ctx context.Context, q Querier, svc *models.ScheduledService) error {
	svc.ID = NewID()
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	var teamID, collabID *string
	if svc.Binding.TeamID != "" {
		teamID = &svc.Binding.TeamID
	}
	if svc.Binding.CollaboratorID != "" {
		collabID = &svc.Binding.CollaboratorID
	}
	_, err := q.Exec(ctx, `
		INSERT INTO scheduled_services
			(id, request_id, client_id, catalog_service_id, manager_id, date, start_time, end_time,
			binding_kind, team_id, member_ids, collaborator_id, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		svc.ID, svc.RequestID, svc.ClientID, svc.CatalogServiceID, svc.ManagerID, svc.Date, svc.Start, svc.End,
		string(svc.Binding.Kind), teamID, svc.Binding.MemberIDs, collabID, svc.Status, svc.Notes,
		svc.CreatedAt, svc.UpdatedAt)
	return err
}

const serviceColumns = `id, request_id, client_id, catalog_service_id, manager_id, date, start_time, end_time,
	binding_kind, team_id, member_ids, collaborator_id, status, notes, created_at, updated_at`

func scanService(row interface{ Scan(dest ...any) error }) (models.ScheduledService, error) {
	var (
		svc      models.ScheduledService
		kind     string
		teamID   *string
		collabID *string
	)
	err := row.Scan(
		&svc.ID, &svc.RequestID, &svc.ClientID, &svc.CatalogServiceID, &svc.ManagerID, &svc.Date, &svc.Start, &svc.End,
		&kind, &teamID, &svc.Binding.MemberIDs, &collabID, &svc.Status, &svc.Notes, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return models.ScheduledService{}, err
	}
	svc.Binding.Kind = models.BindingKind(kind)
	if teamID != nil {
		svc.Binding.TeamID = *teamID
	}
	if collabID != nil {
		svc.Binding.CollaboratorID = *collabID
	}
	return svc, nil
}

func GetScheduledService(ctx context.Context, q Querier, id string) (models.ScheduledService, error) {
	row := q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM scheduled_services WHERE id = $1`, id)
	return scanService(row)
}

type ServiceFilter struct {
	ClientID       string
	CollaboratorID string
	ManagerID      string
	From           *time.Time
	To             *time.Time
}

func (s *Store) ListScheduledServices(ctx context.Context, f ServiceFilter) ([]models.ScheduledService, error) {
	query := `SELECT ` + serviceColumns + ` FROM scheduled_services`
	var args []any
	var wheres []string
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		wheres = append(wheres, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if f.CollaboratorID != "" {
		args = append(args, f.CollaboratorID)
		wheres = append(wheres, fmt.Sprintf("(collaborator_id = $%d OR $%d = ANY(member_ids))", len(args), len(args)))
	}
	if f.ManagerID != "" {
		args = append(args, f.ManagerID)
		wheres = append(wheres, fmt.Sprintf("manager_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		wheres = append(wheres, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		wheres = append(wheres, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduledService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func UpdateServiceStatus(ctx context.Context, q Querier, id string, from []models.ServiceStatus, to models.ServiceStatus) (bool, error) {
	fromStr := make([]string, 0, len(from))
	for _, st := range from {
		fromStr = append(fromStr, string(st))
	}
	tag, err := q.Exec(ctx, `
		UPDATE scheduled_services SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)`,
		to, id, fromStr)
	return tag.RowsAffected() > 0, err
}

// CancelServicesForRequest terminates any still-open services derived from the
// request, releasing their bound collaborators.
func CancelServicesForRequest(ctx context.Context, q Querier, requestID string) error {
	_, err := q.Exec(ctx, `
		UPDATE scheduled_services SET status = $1, updated_at = now()
		WHERE request_id = $2 AND status IN ('scheduled', 'in-progress')`,
		models.ServiceCancelled, requestID)
	return err
}

func InsertAllocation(ctx context.Context, q Querier, a *models.Allocation) error {
	a.ID = NewID()
	a.CreatedAt = time.Now().UTC()
	_, err := q.Exec(ctx, `
		INSERT INTO allocations
			(id, collaborator_id, client_id, start_date, end_date, weekdays, start_time, end_time, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CollaboratorID, a.ClientID, a.StartDate, a.EndDate, weekdaysToInts(a.Weekdays),
		a.Start, a.End, a.Status, a.CreatedBy, a.CreatedAt)
	return err
}

const allocationColumns = `id, collaborator_id, client_id, start_date, end_date, weekdays, start_time, end_time, status, created_by, created_at`

func scanAllocation(row interface{ Scan(dest ...any) error }) (models.Allocation, error) {
	var (
		a          models.Allocation
		weekdayInt []int32
	)
	err := row.Scan(&a.ID, &a.CollaboratorID, &a.ClientID, &a.StartDate, &a.EndDate, &weekdayInt,
		&a.Start, &a.End, &a.Status, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return models.Allocation{}, err
	}
	a.Weekdays = intsToWeekdays(weekdayInt)
	return a, nil
}

func GetAllocation(ctx context.Context, q Querier, id string) (models.Allocation, error) {
	row := q.QueryRow(ctx, `SELECT `+allocationColumns+` FROM allocations WHERE id = $1`, id)
	return scanAllocation(row)
}

func (s *Store) ListAllocations(ctx context.Context, collaboratorID, clientID string, activeOnly bool) ([]models.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations`
	var args []any
	var wheres []string
	if collaboratorID != "" {
		args = append(args, collaboratorID)
		wheres = append(wheres, fmt.Sprintf("collaborator_id = $%d", len(args)))
	}
	if clientID != "" {
		args = append(args, clientID)
		wheres = append(wheres, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if activeOnly {
		wheres = append(wheres, "status = 'active'")
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY start_date ASC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func ReleaseAllocation(ctx context.Context, q Querier, id string) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE allocations SET status = $1 WHERE id = $2 AND status = $3`,
		models.AllocationReleased, id, models.AllocationActive)
	return tag.RowsAffected() > 0, err
}

func (s *Store) InsertEvent(ctx context.Context, e *models.Event) error {
	e.ID = NewID()
	e.CreatedAt = time.Now().UTC()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO events (id, owner_id, kind, title, date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OwnerID, e.Kind, e.Title, e.Date, e.Start, e.End, e.CreatedAt)
	return err
}

func (s *Store) ListEvents(ctx context.Context, ownerID string, from, to time.Time) ([]models.Event, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, owner_id, kind, title, date, start_time, end_time, created_at
		FROM events
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, start_time ASC`, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Kind, &e.Title, &e.Date, &e.Start, &e.End, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
