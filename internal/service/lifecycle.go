package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/notify"
)

type Action string

const (
	ActionDelegate Action = "delegate"
	ActionApprove  Action = "approve"
	ActionRefuse   Action = "refuse"
	ActionEscalate Action = "escalate"
	ActionConfirm  Action = "confirm-date"
	ActionDecline  Action = "decline-date"
	ActionComplete Action = "complete"
	ActionReject   Action = "reject"
)

// allowedFrom is the edge table of the request state machine. The urgent
// status behaves like pending (the unassigned pool at urgent priority), and
// refused-by-manager sits in the same pool awaiting redelegation.
var allowedFrom = map[Action][]models.RequestStatus{
	ActionDelegate: {models.RequestPending, models.RequestUrgent, models.RequestRefused},
	ActionApprove:  {models.RequestPending, models.RequestDelegated, models.RequestUrgent},
	ActionRefuse:   {models.RequestPending, models.RequestDelegated, models.RequestUrgent},
	ActionEscalate: {models.RequestPending, models.RequestDelegated, models.RequestUrgent},
	ActionConfirm:  {models.RequestAwaitingClient},
	ActionDecline:  {models.RequestAwaitingClient},
	ActionComplete: {models.RequestInProgress},
}

func CanTransition(status models.RequestStatus, action Action) bool {
	if action == ActionReject {
		return !status.Terminal()
	}
	for _, from := range allowedFrom[action] {
		if from == status {
			return true
		}
	}
	return false
}

// NextOnApproval decides whether approval needs client confirmation: only
// when the proposed date differs from the client's desired date.
func NextOnApproval(desired, proposed time.Time) models.RequestStatus {
	if sameDay(desired, proposed) {
		return models.RequestInProgress
	}
	return models.RequestAwaitingClient
}

type Lifecycle struct {
	Store    *db.Store
	Engine   *Engine
	Notifier notify.Notifier
	Logger   zerolog.Logger
}

type CreateRequestInput struct {
	BranchID         *string         `json:"branch_id"`
	CatalogServiceID string          `json:"catalog_service_id" validate:"required"`
	Description      string          `json:"description" validate:"required"`
	DesiredDate      time.Time       `json:"desired_date" validate:"required"`
	DesiredStart     string          `json:"desired_start" validate:"required"`
	DesiredEnd       string          `json:"desired_end" validate:"required"`
	Priority         models.Priority `json:"priority"`
}

func (l *Lifecycle) CreateRequest(ctx context.Context, actor core.Actor, in CreateRequestInput) (models.ServiceRequest, error) {
	if _, _, err := ParseWindow(in.DesiredStart, in.DesiredEnd); err != nil {
		return models.ServiceRequest{}, err
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	cs, err := l.Store.GetCatalogService(ctx, in.CatalogServiceID)
	if err != nil {
		if db.IsNoRows(err) {
			return models.ServiceRequest{}, &core.NotFoundError{Entity: "catalog service", ID: in.CatalogServiceID}
		}
		return models.ServiceRequest{}, err
	}
	if !cs.Active {
		return models.ServiceRequest{}, core.Invalid("catalog_service_id", "service is not active")
	}

	status := models.RequestPending
	if in.Priority == models.PriorityUrgent {
		status = models.RequestUrgent
	}
	req := models.ServiceRequest{
		ClientID:         actor.ID,
		BranchID:         in.BranchID,
		CatalogServiceID: in.CatalogServiceID,
		Description:      in.Description,
		DesiredDate:      dateOnly(in.DesiredDate),
		DesiredStart:     in.DesiredStart,
		DesiredEnd:       in.DesiredEnd,
		Priority:         in.Priority,
		Status:           status,
	}
	if err := l.Store.InsertRequest(ctx, &req); err != nil {
		return models.ServiceRequest{}, err
	}
	l.Logger.Info().Str("request_id", req.ID).Str("client_id", req.ClientID).Str("status", string(req.Status)).Msg("request created")
	return req, nil
}

func (l *Lifecycle) getRequest(ctx context.Context, id string) (models.ServiceRequest, error) {
	req, err := db.GetRequest(ctx, l.Store.Pool, id)
	if err != nil {
		if db.IsNoRows(err) {
			return models.ServiceRequest{}, &core.NotFoundError{Entity: "request", ID: id}
		}
		return models.ServiceRequest{}, err
	}
	return req, nil
}

func (l *Lifecycle) invalidTransition(ctx context.Context, id string, action Action) error {
	from := "unknown"
	if cur, err := db.GetRequest(ctx, l.Store.Pool, id); err == nil {
		from = string(cur.Status)
	}
	return &core.InvalidTransitionError{Entity: "request", ID: id, From: from, Action: string(action)}
}

// requireOwnership rejects a manager acting on a request delegated to someone
// else. Admins and untargeted requests pass.
func requireOwnership(actor core.Actor, req models.ServiceRequest, op core.Operation) error {
	if actor.Role != models.RoleManager || req.ManagerID == nil || *req.ManagerID == actor.ID {
		return nil
	}
	return &core.AuthorizationError{Role: actor.Role, Operation: op}
}

func (l *Lifecycle) Delegate(ctx context.Context, actor core.Actor, requestID, managerID string) (models.ServiceRequest, error) {
	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if !CanTransition(req.Status, ActionDelegate) {
		return models.ServiceRequest{}, &core.InvalidTransitionError{Entity: "request", ID: requestID, From: string(req.Status), Action: string(ActionDelegate)}
	}
	ok, err := db.DelegateRequest(ctx, l.Store.Pool, requestID, managerID, allowedFrom[ActionDelegate])
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if !ok {
		return models.ServiceRequest{}, l.invalidTransition(ctx, requestID, ActionDelegate)
	}
	l.notify(ctx, notify.Event{Kind: notify.KindDelegated, RequestID: requestID, Recipient: managerID})
	return l.getRequest(ctx, requestID)
}

type ApproveInput struct {
	Binding      models.ResourceBinding `json:"binding" validate:"required"`
	ScheduleDate time.Time              `json:"schedule_date"`
	Description  string                 `json:"description"`
}

// Approve accepts a request, binds its resource, and either starts execution
// immediately (dates match) or parks it awaiting client confirmation.
func (l *Lifecycle) Approve(ctx context.Context, actor core.Actor, requestID string, in ApproveInput) (models.ServiceRequest, error) {
	if in.ScheduleDate.IsZero() {
		return models.ServiceRequest{}, core.Invalid("schedule_date", "schedule date is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.ServiceRequest{}, core.Invalid("description", "schedule description is required")
	}

	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if err := requireOwnership(actor, req, core.OpApproveRequest); err != nil {
		return models.ServiceRequest{}, err
	}
	if !CanTransition(req.Status, ActionApprove) {
		return models.ServiceRequest{}, &core.InvalidTransitionError{Entity: "request", ID: requestID, From: string(req.Status), Action: string(ActionApprove)}
	}

	var team *models.Team
	if in.Binding.Kind == models.BindingTeam {
		t, err := l.Store.GetTeam(ctx, in.Binding.TeamID)
		if err != nil {
			if db.IsNoRows(err) {
				return models.ServiceRequest{}, &core.NotFoundError{Entity: "team", ID: in.Binding.TeamID}
			}
			return models.ServiceRequest{}, err
		}
		team = &t
	}

	scheduleDate := dateOnly(in.ScheduleDate)
	target := NextOnApproval(req.DesiredDate, scheduleDate)

	err = l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := l.Engine.CheckBinding(ctx, tx, in.Binding, team, scheduleDate, req.DesiredStart, req.DesiredEnd); err != nil {
			return err
		}
		ok, err := db.ApproveRequest(ctx, tx, requestID, allowedFrom[ActionApprove], target,
			in.Binding, actor.ID, scheduleDate, in.Description)
		if err != nil {
			return err
		}
		if !ok {
			return l.invalidTransition(ctx, requestID, ActionApprove)
		}
		if target == models.RequestInProgress {
			return l.instantiateService(ctx, tx, req, in.Binding, actor.ID, scheduleDate, in.Description)
		}
		return nil
	})
	if err != nil {
		return models.ServiceRequest{}, err
	}

	if target == models.RequestAwaitingClient {
		l.notify(ctx, notify.Event{Kind: notify.KindDateProposed, RequestID: requestID, Recipient: req.ClientID})
	}
	l.Logger.Info().Str("request_id", requestID).Str("status", string(target)).Msg("request approved")
	return l.getRequest(ctx, requestID)
}

func (l *Lifecycle) instantiateService(ctx context.Context, tx pgx.Tx, req models.ServiceRequest,
	b models.ResourceBinding, managerID string, date time.Time, notes string) error {
	svc := models.ScheduledService{
		RequestID:        &req.ID,
		ClientID:         req.ClientID,
		CatalogServiceID: req.CatalogServiceID,
		ManagerID:        &managerID,
		Date:             date,
		Start:            req.DesiredStart,
		End:              req.DesiredEnd,
		Binding:          b,
		Status:           models.ServiceScheduled,
		Notes:            notes,
	}
	return db.InsertScheduledService(ctx, tx, &svc)
}

// ConfirmDate is the client accepting the manager's proposed date. The
// binding is re-checked in the same transaction that creates the
// ScheduledService; the resource may have been taken since approval.
func (l *Lifecycle) ConfirmDate(ctx context.Context, actor core.Actor, requestID string) (models.ServiceRequest, error) {
	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ClientID != actor.ID {
		return models.ServiceRequest{}, &core.AuthorizationError{Role: actor.Role, Operation: core.OpConfirmDate}
	}
	if !CanTransition(req.Status, ActionConfirm) || req.Binding == nil || req.ProposedDate == nil {
		return models.ServiceRequest{}, &core.InvalidTransitionError{Entity: "request", ID: requestID, From: string(req.Status), Action: string(ActionConfirm)}
	}

	var team *models.Team
	if req.Binding.Kind == models.BindingTeam {
		t, err := l.Store.GetTeam(ctx, req.Binding.TeamID)
		if err != nil {
			return models.ServiceRequest{}, err
		}
		team = &t
	}

	err = l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := l.Engine.CheckBinding(ctx, tx, *req.Binding, team, *req.ProposedDate, req.DesiredStart, req.DesiredEnd); err != nil {
			return err
		}
		ok, err := db.UpdateRequestStatus(ctx, tx, requestID, allowedFrom[ActionConfirm], models.RequestInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return l.invalidTransition(ctx, requestID, ActionConfirm)
		}
		managerID := ""
		if req.ManagerID != nil {
			managerID = *req.ManagerID
		}
		return l.instantiateService(ctx, tx, req, *req.Binding, managerID, *req.ProposedDate, req.ProposedNote)
	})
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ManagerID != nil {
		l.notify(ctx, notify.Event{Kind: notify.KindDateConfirmed, RequestID: requestID, Recipient: *req.ManagerID})
	}
	l.Logger.Info().Str("request_id", requestID).Msg("proposed date confirmed")
	return l.getRequest(ctx, requestID)
}

// DeclineDate rejects the proposed date; the request terminates and the
// binding is released.
func (l *Lifecycle) DeclineDate(ctx context.Context, actor core.Actor, requestID string) (models.ServiceRequest, error) {
	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ClientID != actor.ID {
		return models.ServiceRequest{}, &core.AuthorizationError{Role: actor.Role, Operation: core.OpDeclineDate}
	}
	err = l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := db.UpdateRequestStatus(ctx, tx, requestID, allowedFrom[ActionDecline], models.RequestRejected)
		if err != nil {
			return err
		}
		if !ok {
			return l.invalidTransition(ctx, requestID, ActionDecline)
		}
		return db.ClearRequestBinding(ctx, tx, requestID)
	})
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ManagerID != nil {
		l.notify(ctx, notify.Event{Kind: notify.KindDateDeclined, RequestID: requestID, Recipient: *req.ManagerID})
	}
	l.Logger.Info().Str("request_id", requestID).Msg("proposed date declined")
	return l.getRequest(ctx, requestID)
}

// Refuse returns the request to the unassigned pool with a mandatory reason.
func (l *Lifecycle) Refuse(ctx context.Context, actor core.Actor, requestID, reason string) (models.ServiceRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return models.ServiceRequest{}, core.Invalid("reason", "refusal reason is required")
	}
	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if err := requireOwnership(actor, req, core.OpRefuseRequest); err != nil {
		return models.ServiceRequest{}, err
	}
	ok, err := db.RefuseRequest(ctx, l.Store.Pool, requestID, "refused: "+reason, allowedFrom[ActionRefuse])
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if !ok {
		return models.ServiceRequest{}, l.invalidTransition(ctx, requestID, ActionRefuse)
	}
	l.notify(ctx, notify.Event{Kind: notify.KindRefused, RequestID: requestID, Detail: reason})
	return l.getRequest(ctx, requestID)
}

// Escalate forwards the request back to admin attention with a mandatory
// reason; Elevate raises the priority to urgent.
func (l *Lifecycle) Escalate(ctx context.Context, actor core.Actor, requestID, reason string, elevate bool) (models.ServiceRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return models.ServiceRequest{}, core.Invalid("reason", "escalation reason is required")
	}
	req, err := l.getRequest(ctx, requestID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if err := requireOwnership(actor, req, core.OpEscalateRequest); err != nil {
		return models.ServiceRequest{}, err
	}
	target := models.RequestPending
	priority := req.Priority
	if elevate || req.Priority == models.PriorityUrgent {
		target = models.RequestUrgent
		priority = models.PriorityUrgent
	}
	ok, err := db.EscalateRequest(ctx, l.Store.Pool, requestID, "escalated: "+reason, allowedFrom[ActionEscalate], target, priority)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if !ok {
		return models.ServiceRequest{}, l.invalidTransition(ctx, requestID, ActionEscalate)
	}
	l.notify(ctx, notify.Event{Kind: notify.KindEscalated, RequestID: requestID, Detail: reason})
	return l.getRequest(ctx, requestID)
}

// Reject is the admin override from any non-terminal status. Any open service
// derived from the request is cancelled in the same transaction so the bound
// collaborators are released.
func (l *Lifecycle) Reject(ctx context.Context, actor core.Actor, requestID, reason string) (models.ServiceRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return models.ServiceRequest{}, core.Invalid("reason", "rejection reason is required")
	}
	if _, err := l.getRequest(ctx, requestID); err != nil {
		return models.ServiceRequest{}, err
	}
	err := l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := db.RejectRequest(ctx, tx, requestID, "rejected: "+reason)
		if err != nil {
			return err
		}
		if !ok {
			return l.invalidTransition(ctx, requestID, ActionReject)
		}
		return db.CancelServicesForRequest(ctx, tx, requestID)
	})
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return l.getRequest(ctx, requestID)
}

// StartService moves a scheduled service into execution; only a bound
// collaborator may start it.
func (l *Lifecycle) StartService(ctx context.Context, actor core.Actor, serviceID string) (models.ScheduledService, error) {
	svc, err := l.getService(ctx, serviceID)
	if err != nil {
		return models.ScheduledService{}, err
	}
	if err := l.requireBound(ctx, actor, svc, core.OpStartService); err != nil {
		return models.ScheduledService{}, err
	}
	ok, err := db.UpdateServiceStatus(ctx, l.Store.Pool, serviceID, []models.ServiceStatus{models.ServiceScheduled}, models.ServiceInProgress)
	if err != nil {
		return models.ScheduledService{}, err
	}
	if !ok {
		return models.ScheduledService{}, &core.InvalidTransitionError{Entity: "service", ID: serviceID, From: string(svc.Status), Action: "start"}
	}
	return l.getService(ctx, serviceID)
}

// CompleteService finishes execution; the originating request follows into
// its terminal completed status.
func (l *Lifecycle) CompleteService(ctx context.Context, actor core.Actor, serviceID string) (models.ScheduledService, error) {
	svc, err := l.getService(ctx, serviceID)
	if err != nil {
		return models.ScheduledService{}, err
	}
	if err := l.requireBound(ctx, actor, svc, core.OpCompleteService); err != nil {
		return models.ScheduledService{}, err
	}
	err = l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := db.UpdateServiceStatus(ctx, tx, serviceID,
			[]models.ServiceStatus{models.ServiceScheduled, models.ServiceInProgress}, models.ServiceCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return &core.InvalidTransitionError{Entity: "service", ID: serviceID, From: string(svc.Status), Action: "complete"}
		}
		if svc.RequestID != nil {
			if _, err := db.UpdateRequestStatus(ctx, tx, *svc.RequestID, allowedFrom[ActionComplete], models.RequestCompleted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.ScheduledService{}, err
	}
	l.Logger.Info().Str("service_id", serviceID).Msg("service completed")
	return l.getService(ctx, serviceID)
}

// CancelService releases the bound resource by terminating the service row;
// commitments only count scheduled and in-progress services. The originating
// request returns to the unassigned pool with its binding cleared so it can be
// re-approved with a new resource or date.
func (l *Lifecycle) CancelService(ctx context.Context, actor core.Actor, serviceID string) (models.ScheduledService, error) {
	svc, err := l.getService(ctx, serviceID)
	if err != nil {
		return models.ScheduledService{}, err
	}
	err = l.Store.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := db.UpdateServiceStatus(ctx, tx, serviceID,
			[]models.ServiceStatus{models.ServiceScheduled, models.ServiceInProgress}, models.ServiceCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return &core.InvalidTransitionError{Entity: "service", ID: serviceID, From: string(svc.Status), Action: "cancel"}
		}
		if svc.RequestID != nil {
			if _, err := db.UpdateRequestStatus(ctx, tx, *svc.RequestID,
				[]models.RequestStatus{models.RequestInProgress}, models.RequestPending); err != nil {
				return err
			}
			if err := db.ClearRequestBinding(ctx, tx, *svc.RequestID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.ScheduledService{}, err
	}
	return l.getService(ctx, serviceID)
}

func (l *Lifecycle) getService(ctx context.Context, id string) (models.ScheduledService, error) {
	svc, err := db.GetScheduledService(ctx, l.Store.Pool, id)
	if err != nil {
		if db.IsNoRows(err) {
			return models.ScheduledService{}, &core.NotFoundError{Entity: "service", ID: id}
		}
		return models.ScheduledService{}, err
	}
	return svc, nil
}

func (l *Lifecycle) requireBound(ctx context.Context, actor core.Actor, svc models.ScheduledService, op core.Operation) error {
	return requireBoundCollaborator(ctx, l.Store, actor, svc, op)
}

// requireBoundCollaborator checks that a collaborator actor is part of the
// service binding; managers and admins pass.
func requireBoundCollaborator(ctx context.Context, store *db.Store, actor core.Actor, svc models.ScheduledService, op core.Operation) error {
	if actor.Role != models.RoleCollaborator {
		return nil
	}
	if svc.Binding.CollaboratorID == actor.ID {
		return nil
	}
	members := svc.Binding.MemberIDs
	if len(members) == 0 && svc.Binding.TeamID != "" {
		team, err := store.GetTeam(ctx, svc.Binding.TeamID)
		if err != nil {
			return err
		}
		members = team.MemberIDs
	}
	for _, id := range members {
		if id == actor.ID {
			return nil
		}
	}
	return &core.AuthorizationError{Role: actor.Role, Operation: op}
}

func (l *Lifecycle) notify(ctx context.Context, ev notify.Event) {
	if l.Notifier == nil {
		return
	}
	if err := l.Notifier.Notify(ctx, ev); err != nil {
		l.Logger.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("notification failed")
	}
}
