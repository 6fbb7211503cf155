package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func (s *Store) InsertRequest(ctx context.Context, r *models.ServiceRequest) error {
	r.ID = NewID()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO service_requests
			(id, client_id, branch_id, catalog_service_id, description, desired_date, desired_start, desired_end,
			priority, status, observations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '', $11, $12)`,
		r.ID, r.ClientID, r.BranchID, r.CatalogServiceID, r.Description, r.DesiredDate, r.DesiredStart, r.DesiredEnd,
		r.Priority, r.Status, r.CreatedAt, r.UpdatedAt)
	return err
}

const requestColumns = `id, client_id, branch_id, catalog_service_id, description, desired_date, desired_start, desired_end,
	priority, status, manager_id, binding_kind, team_id, member_ids, collaborator_id,
	observations, proposed_date, proposed_note, created_at, updated_at`

func scanRequest(row interface{ Scan(dest ...any) error }) (models.ServiceRequest, error) {
	var (
		r           models.ServiceRequest
		bindingKind *string
		teamID      *string
		memberIDs   []string
		collabID    *string
	)
	err := row.Scan(
		&r.ID, &r.ClientID, &r.BranchID, &r.CatalogServiceID, &r.Description, &r.DesiredDate, &r.DesiredStart, &r.DesiredEnd,
		&r.Priority, &r.Status, &r.ManagerID, &bindingKind, &teamID, &memberIDs, &collabID,
		&r.Observations, &r.ProposedDate, &r.ProposedNote, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if bindingKind != nil {
		b := models.ResourceBinding{Kind: models.BindingKind(*bindingKind), MemberIDs: memberIDs}
		if teamID != nil {
			b.TeamID = *teamID
		}
		if collabID != nil {
			b.CollaboratorID = *collabID
		}
		r.Binding = &b
	}
	return r, nil
}

func GetRequest(ctx context.Context, q Querier, id string) (models.ServiceRequest, error) {
	row := q.QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id)
	return scanRequest(row)
}

type RequestFilter struct {
	Status    string
	ClientID  string
	ManagerID string
	// Unassigned selects the pool the admin delegates from.
	Unassigned bool
	Limit      int
	Offset     int
}

func (s *Store) ListRequests(ctx context.Context, f RequestFilter) ([]models.ServiceRequest, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := `SELECT ` + requestColumns + ` FROM service_requests`
	var args []any
	var wheres []string
	if f.Status != "" {
		args = append(args, f.Status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		wheres = append(wheres, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if f.ManagerID != "" {
		args = append(args, f.ManagerID)
		wheres = append(wheres, fmt.Sprintf("manager_id = $%d", len(args)))
	}
	if f.Unassigned {
		wheres = append(wheres, "manager_id IS NULL", "status IN ('pending', 'urgent', 'refused-by-manager')")
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func statusList(statuses []models.RequestStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// All transition updates below are guarded by the expected source statuses so
// that a concurrent caller who moved the request first makes the second
// update report no rows, which the service surfaces as InvalidTransition.

func DelegateRequest(ctx context.Context, q Querier, id, managerID string, from []models.RequestStatus) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE service_requests SET status = $1, manager_id = $2, updated_at = now()
		WHERE id = $3 AND status = ANY($4)`,
		models.RequestDelegated, managerID, id, statusList(from))
	return tag.RowsAffected() > 0, err
}

func ApproveRequest(ctx context.Context, q Querier, id string, from []models.RequestStatus, to models.RequestStatus,
	b models.ResourceBinding, managerID string, proposedDate time.Time, proposedNote string) (bool, error) {
	var teamID, collabID *string
	if b.TeamID != "" {
		teamID = &b.TeamID
	}
	if b.CollaboratorID != "" {
		collabID = &b.CollaboratorID
	}
	tag, err := q.Exec(ctx, `
		UPDATE service_requests
		SET status = $1, binding_kind = $2, team_id = $3, member_ids = $4, collaborator_id = $5,
			manager_id = $6, proposed_date = $7, proposed_note = $8, updated_at = now()
		WHERE id = $9 AND status = ANY($10)`,
		to, string(b.Kind), teamID, b.MemberIDs, collabID, managerID, proposedDate, proposedNote, id, statusList(from))
	return tag.RowsAffected() > 0, err
}

func UpdateRequestStatus(ctx context.Context, q Querier, id string, from []models.RequestStatus, to models.RequestStatus) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE service_requests SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)`,
		to, id, statusList(from))
	return tag.RowsAffected() > 0, err
}

func appendObservationSQL(col string) string {
	return `CASE WHEN ` + col + ` = '' THEN $1::text ELSE ` + col + ` || E'\n' || $1::text END`
}

// RefuseRequest returns the request to the unassigned pool with the refusal
// reason recorded and the manager reference cleared.
func RefuseRequest(ctx context.Context, q Querier, id, reason string, from []models.RequestStatus) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE service_requests
		SET status = $2, manager_id = NULL, observations = `+appendObservationSQL("observations")+`, updated_at = now()
		WHERE id = $3 AND status = ANY($4)`,
		reason, models.RequestRefused, id, statusList(from))
	return tag.RowsAffected() > 0, err
}

func EscalateRequest(ctx context.Context, q Querier, id, reason string, from []models.RequestStatus,
	to models.RequestStatus, priority models.Priority) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE service_requests
		SET status = $2, priority = $3, manager_id = NULL, observations = `+appendObservationSQL("observations")+`, updated_at = now()
		WHERE id = $4 AND status = ANY($5)`,
		reason, to, priority, id, statusList(from))
	return tag.RowsAffected() > 0, err
}

// RejectRequest is the admin override: any non-terminal status goes to
// rejected and the binding columns are cleared.
func RejectRequest(ctx context.Context, q Querier, id, reason string) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE service_requests
		SET status = $2, binding_kind = NULL, team_id = NULL, member_ids = NULL, collaborator_id = NULL,
			observations = `+appendObservationSQL("observations")+`, updated_at = now()
		WHERE id = $3 AND status NOT IN ('completed', 'rejected')`,
		reason, models.RequestRejected, id)
	return tag.RowsAffected() > 0, err
}

func ClearRequestBinding(ctx context.Context, q Querier, id string) error {
	_, err := q.Exec(ctx, `
		UPDATE service_requests
		SET binding_kind = NULL, team_id = NULL, member_ids = NULL, collaborator_id = NULL, updated_at = now()
		WHERE id = $1`, id)
	return err
}
