package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

// MinuteOfDay parses an "HH:MM" clock string into minutes since midnight. The
// two-digit form is required: stored windows are compared lexically, which only
// matches minute order when every value is zero-padded.
func MinuteOfDay(s string) (int, error) {
	var h, m int
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// windowsOverlap treats touching boundaries as free: a window ending 12:00
// does not conflict with one starting 12:00.
func windowsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWindow validates a start/end pair and returns it in minutes.
func ParseWindow(start, end string) (int, int, error) {
	startMin, err := MinuteOfDay(start)
	if err != nil {
		return 0, 0, core.Invalid("start", err.Error())
	}
	endMin, err := MinuteOfDay(end)
	if err != nil {
		return 0, 0, core.Invalid("end", err.Error())
	}
	if startMin >= endMin {
		return 0, 0, core.Invalid("window", "start must be before end")
	}
	return startMin, endMin, nil
}

// ValidateBinding enforces the tagged-variant rules: exactly one of team or
// collaborator, and a member subset only within the bound team.
func ValidateBinding(b models.ResourceBinding, team *models.Team) error {
	switch b.Kind {
	case models.BindingTeam:
		if b.TeamID == "" {
			return core.Invalid("team_id", "required for team binding")
		}
		if b.CollaboratorID != "" {
			return core.Invalid("collaborator_id", "must be empty for team binding")
		}
		if team == nil || team.ID != b.TeamID {
			return &core.NotFoundError{Entity: "team", ID: b.TeamID}
		}
		members := map[string]bool{}
		for _, id := range team.MemberIDs {
			members[id] = true
		}
		for _, id := range b.MemberIDs {
			if !members[id] {
				return core.Invalid("member_ids", fmt.Sprintf("collaborator %s is not a member of team %s", id, team.ID))
			}
		}
	case models.BindingCollaborator:
		if b.CollaboratorID == "" {
			return core.Invalid("collaborator_id", "required for collaborator binding")
		}
		if b.TeamID != "" || len(b.MemberIDs) > 0 {
			return core.Invalid("team_id", "must be empty for collaborator binding")
		}
	default:
		return core.Invalid("kind", "must be team or collaborator")
	}
	return nil
}

// BoundCollaborators resolves a binding to the concrete collaborator set; an
// empty member subset means the whole team.
func BoundCollaborators(b models.ResourceBinding, team *models.Team) []string {
	if b.Kind == models.BindingCollaborator {
		return []string{b.CollaboratorID}
	}
	if len(b.MemberIDs) > 0 {
		return b.MemberIDs
	}
	if team != nil {
		return team.MemberIDs
	}
	return nil
}

func intersects(a []string, b []string) (string, bool) {
	set := map[string]bool{}
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			return id, true
		}
	}
	return "", false
}

func commitmentCoversDate(c models.Commitment, date time.Time) bool {
	if c.Date != nil {
		return sameDay(*c.Date, date)
	}
	if c.StartDate == nil || c.EndDate == nil {
		return false
	}
	d := dateOnly(date)
	if d.Before(dateOnly(*c.StartDate)) || d.After(dateOnly(*c.EndDate)) {
		return false
	}
	for _, wd := range c.Weekdays {
		if wd == date.Weekday() {
			return true
		}
	}
	return false
}

func conflictError(c models.Commitment, collaboratorID string, date string) *core.AllocationConflictError {
	return &core.AllocationConflictError{
		CollaboratorID: collaboratorID,
		SourceKind:     string(c.Kind),
		SourceID:       c.ID,
		Date:           date,
		Start:          c.Start,
		End:            c.End,
	}
}

// FindConflict scans the commitments of the target collaborators for one that
// covers the given date and intersects the window.
func FindConflict(commitments []models.Commitment, targets []string, date time.Time, start, end string) (*core.AllocationConflictError, error) {
	startMin, endMin, err := ParseWindow(start, end)
	if err != nil {
		return nil, err
	}
	for _, c := range commitments {
		id, hit := intersects(c.CollaboratorIDs, targets)
		if !hit || !commitmentCoversDate(c, date) {
			continue
		}
		cStart, cErr := MinuteOfDay(c.Start)
		if cErr != nil {
			continue
		}
		cEnd, cErr := MinuteOfDay(c.End)
		if cErr != nil {
			continue
		}
		if windowsOverlap(startMin, endMin, cStart, cEnd) {
			return conflictError(c, id, date.Format("2006-01-02")), nil
		}
	}
	return nil, nil
}

// FindRecurringConflict applies the same overlap rule across a full
// recurrence: a commitment conflicts if its dates fall inside the range on a
// selected weekday with an intersecting window.
func FindRecurringConflict(commitments []models.Commitment, collaboratorID string,
	startDate, endDate time.Time, weekdays []time.Weekday, start, end string) (*core.AllocationConflictError, error) {
	startMin, endMin, err := ParseWindow(start, end)
	if err != nil {
		return nil, err
	}
	wanted := map[time.Weekday]bool{}
	for _, wd := range weekdays {
		wanted[wd] = true
	}
	for _, c := range commitments {
		id, hit := intersects(c.CollaboratorIDs, []string{collaboratorID})
		if !hit {
			continue
		}
		cStart, cErr := MinuteOfDay(c.Start)
		if cErr != nil {
			continue
		}
		cEnd, cErr := MinuteOfDay(c.End)
		if cErr != nil {
			continue
		}
		if !windowsOverlap(startMin, endMin, cStart, cEnd) {
			continue
		}
		if c.Date != nil {
			d := dateOnly(*c.Date)
			if d.Before(dateOnly(startDate)) || d.After(dateOnly(endDate)) || !wanted[c.Date.Weekday()] {
				continue
			}
			return conflictError(c, id, c.Date.Format("2006-01-02")), nil
		}
		if c.StartDate == nil || c.EndDate == nil {
			continue
		}
		if dateOnly(*c.StartDate).After(dateOnly(endDate)) || dateOnly(*c.EndDate).Before(dateOnly(startDate)) {
			continue
		}
		for _, wd := range c.Weekdays {
			if wanted[wd] {
				return conflictError(c, id, fmt.Sprintf("recurring %s", wd)), nil
			}
		}
	}
	return nil, nil
}

// Engine centralizes every conflict check so double-booking cannot slip in
// between the two sources of commitment (one-off services and recurring
// allocations).
type Engine struct {
	Store  *db.Store
	Logger zerolog.Logger
}

// CheckBinding verifies, inside the caller's transaction, that the bound
// collaborators are free on the given date and window. It takes row locks on
// the collaborators so concurrent binds for the same resource serialize.
func (e *Engine) CheckBinding(ctx context.Context, q db.Querier, b models.ResourceBinding, team *models.Team,
	date time.Time, start, end string) error {
	if err := ValidateBinding(b, team); err != nil {
		return err
	}
	targets := BoundCollaborators(b, team)
	if len(targets) == 0 {
		return core.Invalid("binding", "binding resolves to no collaborators")
	}
	if err := db.LockCollaborators(ctx, q, targets); err != nil {
		return err
	}
	commitments, err := db.Commitments(ctx, q, targets)
	if err != nil {
		return err
	}
	conflict, err := FindConflict(commitments, targets, date, start, end)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}
	return nil
}

type CreateAllocationInput struct {
	CollaboratorID string         `json:"collaborator_id" validate:"required"`
	ClientID       string         `json:"client_id" validate:"required"`
	StartDate      time.Time      `json:"start_date" validate:"required"`
	EndDate        time.Time      `json:"end_date" validate:"required"`
	Weekdays       []time.Weekday `json:"weekdays" validate:"required,min=1,dive,gte=0,lte=6"`
	Start          string         `json:"start" validate:"required"`
	End            string         `json:"end" validate:"required"`
}

// CreateRecurringAllocation materializes a long-term staffing binding after
// checking the overlap rule across the whole recurrence. No ScheduledService
// rows are created per occurrence; the agenda expands them on read.
func (e *Engine) CreateRecurringAllocation(ctx context.Context, actor core.Actor, in CreateAllocationInput) (models.Allocation, error) {
	if !in.StartDate.Before(in.EndDate) {
		return models.Allocation{}, core.Invalid("end_date", "start date must be before end date")
	}
	if len(in.Weekdays) == 0 {
		return models.Allocation{}, core.Invalid("weekdays", "at least one weekday required")
	}
	for _, wd := range in.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return models.Allocation{}, core.Invalid("weekdays", fmt.Sprintf("weekday %d out of range", wd))
		}
	}
	if _, _, err := ParseWindow(in.Start, in.End); err != nil {
		return models.Allocation{}, err
	}
	if _, err := e.Store.GetCollaborator(ctx, in.CollaboratorID); err != nil {
		if db.IsNoRows(err) {
			return models.Allocation{}, &core.NotFoundError{Entity: "collaborator", ID: in.CollaboratorID}
		}
		return models.Allocation{}, err
	}

	alloc := models.Allocation{
		CollaboratorID: in.CollaboratorID,
		ClientID:       in.ClientID,
		StartDate:      dateOnly(in.StartDate),
		EndDate:        dateOnly(in.EndDate),
		Weekdays:       in.Weekdays,
		Start:          in.Start,
		End:            in.End,
		Status:         models.AllocationActive,
		CreatedBy:      actor.ID,
	}

	err := e.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := db.LockCollaborators(ctx, tx, []string{in.CollaboratorID}); err != nil {
			return err
		}
		commitments, err := db.Commitments(ctx, tx, []string{in.CollaboratorID})
		if err != nil {
			return err
		}
		conflict, err := FindRecurringConflict(commitments, in.CollaboratorID,
			alloc.StartDate, alloc.EndDate, in.Weekdays, in.Start, in.End)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}
		return db.InsertAllocation(ctx, tx, &alloc)
	})
	if err != nil {
		return models.Allocation{}, err
	}

	e.Logger.Info().
		Str("allocation_id", alloc.ID).
		Str("collaborator_id", alloc.CollaboratorID).
		Str("client_id", alloc.ClientID).
		Msg("recurring allocation created")
	return alloc, nil
}

// ReleaseAllocation frees the collaborator; releasing an already released
// allocation is a no-op.
func (e *Engine) ReleaseAllocation(ctx context.Context, id string) error {
	released, err := db.ReleaseAllocation(ctx, e.Store.Pool, id)
	if err != nil {
		return err
	}
	if !released {
		if _, err := db.GetAllocation(ctx, e.Store.Pool, id); err != nil {
			if db.IsNoRows(err) {
				return &core.NotFoundError{Entity: "allocation", ID: id}
			}
			return err
		}
	}
	return nil
}
