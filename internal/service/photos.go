package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/notify"
)

// Photos gates documentation visibility: a submission stays manager-only
// while pending and becomes client-visible once sent.
type Photos struct {
	Store    *db.Store
	Notifier notify.Notifier
	Logger   zerolog.Logger
}

type SubmitPhotosInput struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
	Notes  string   `json:"notes"`
}

// Submit creates or appends to the pending submission of a service. At least
// one photo set must be non-empty.
func (p *Photos) Submit(ctx context.Context, actor core.Actor, serviceID string, in SubmitPhotosInput) (models.PhotoSubmission, error) {
	if len(in.Before) == 0 && len(in.After) == 0 {
		return models.PhotoSubmission{}, core.Invalid("photos", "at least one photo is required")
	}

	svc, err := db.GetScheduledService(ctx, p.Store.Pool, serviceID)
	if err != nil {
		if db.IsNoRows(err) {
			return models.PhotoSubmission{}, &core.NotFoundError{Entity: "service", ID: serviceID}
		}
		return models.PhotoSubmission{}, err
	}
	if err := requireBoundCollaborator(ctx, p.Store, actor, svc, core.OpSubmitPhotos); err != nil {
		return models.PhotoSubmission{}, err
	}

	var sub models.PhotoSubmission
	err = p.Store.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := db.GetSubmissionByService(ctx, tx, serviceID)
		switch {
		case err == nil:
			if existing.Status == models.SubmissionSent {
				return &core.InvalidTransitionError{Entity: "submission", ID: existing.ID, From: string(existing.Status), Action: "submit"}
			}
			sub = existing
			if strings.TrimSpace(in.Notes) != "" {
				if err := db.AppendSubmissionNotes(ctx, tx, sub.ID, in.Notes); err != nil {
					return err
				}
			}
		case db.IsNoRows(err):
			sub = models.PhotoSubmission{
				ScheduledServiceID: serviceID,
				CollaboratorNotes:  in.Notes,
				Status:             models.SubmissionPending,
			}
			if err := db.InsertSubmission(ctx, tx, &sub); err != nil {
				return err
			}
		default:
			return err
		}

		for _, ref := range in.Before {
			photo := models.Photo{SubmissionID: sub.ID, Set: models.PhotoSetBefore, Ref: ref, AddedBy: actor.ID}
			if err := db.InsertPhoto(ctx, tx, &photo); err != nil {
				return err
			}
		}
		for _, ref := range in.After {
			photo := models.Photo{SubmissionID: sub.ID, Set: models.PhotoSetAfter, Ref: ref, AddedBy: actor.ID}
			if err := db.InsertPhoto(ctx, tx, &photo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.PhotoSubmission{}, err
	}

	p.Logger.Info().Str("submission_id", sub.ID).Str("service_id", serviceID).Msg("photos submitted")
	return p.get(ctx, sub.ID)
}

func (p *Photos) get(ctx context.Context, id string) (models.PhotoSubmission, error) {
	sub, err := db.GetSubmission(ctx, p.Store.Pool, id)
	if err != nil {
		if db.IsNoRows(err) {
			return models.PhotoSubmission{}, &core.NotFoundError{Entity: "submission", ID: id}
		}
		return models.PhotoSubmission{}, err
	}
	return sub, nil
}

// EditNotes updates the manager annotations without touching the status.
func (p *Photos) EditNotes(ctx context.Context, actor core.Actor, submissionID, notes string) (models.PhotoSubmission, error) {
	if _, err := p.get(ctx, submissionID); err != nil {
		return models.PhotoSubmission{}, err
	}
	if _, err := db.UpdateManagerNotes(ctx, p.Store.Pool, submissionID, notes); err != nil {
		return models.PhotoSubmission{}, err
	}
	return p.get(ctx, submissionID)
}

// RemovePhoto drops one photo from either set. Every removal is recorded;
// removals from a sent submission are marked post-release so corrections to
// already released material stay distinguishable in the audit trail.
func (p *Photos) RemovePhoto(ctx context.Context, actor core.Actor, submissionID, ref string) (models.PhotoSubmission, error) {
	sub, err := p.get(ctx, submissionID)
	if err != nil {
		return models.PhotoSubmission{}, err
	}

	err = p.Store.WithTx(ctx, func(tx pgx.Tx) error {
		photo, found, err := db.DeletePhoto(ctx, tx, submissionID, ref)
		if err != nil {
			return err
		}
		if !found {
			return &core.NotFoundError{Entity: "photo", ID: ref}
		}
		removal := models.PhotoRemoval{
			SubmissionID: submissionID,
			PhotoRef:     ref,
			Set:          photo.Set,
			RemovedBy:    actor.ID,
			PostRelease:  sub.Status == models.SubmissionSent,
		}
		return db.InsertPhotoRemoval(ctx, tx, &removal)
	})
	if err != nil {
		return models.PhotoSubmission{}, err
	}

	if sub.Status == models.SubmissionSent {
		p.Logger.Warn().Str("submission_id", submissionID).Str("ref", ref).Msg("post-release photo removal")
	}
	return p.get(ctx, submissionID)
}

// Send releases the submission to the client. Re-sending an already sent
// submission updates the notes and re-stamps sent_at.
func (p *Photos) Send(ctx context.Context, actor core.Actor, submissionID, managerNotes string) (models.PhotoSubmission, error) {
	sub, err := p.get(ctx, submissionID)
	if err != nil {
		return models.PhotoSubmission{}, err
	}
	if _, err := db.MarkSubmissionSent(ctx, p.Store.Pool, submissionID, actor.ID, managerNotes); err != nil {
		return models.PhotoSubmission{}, err
	}

	svc, err := db.GetScheduledService(ctx, p.Store.Pool, sub.ScheduledServiceID)
	if err == nil && p.Notifier != nil {
		ev := notify.Event{Kind: notify.KindPhotosReleased, ServiceID: svc.ID, Recipient: svc.ClientID}
		if nerr := p.Notifier.Notify(ctx, ev); nerr != nil {
			p.Logger.Warn().Err(nerr).Msg("notification failed")
		}
	}
	p.Logger.Info().Str("submission_id", submissionID).Str("sent_by", actor.ID).Msg("photos released")
	return p.get(ctx, submissionID)
}

// ForService returns the submission of a service, applying visibility: a
// client only ever sees a sent submission of their own service, a
// collaborator only submissions of services they are bound to.
func (p *Photos) ForService(ctx context.Context, actor core.Actor, serviceID string) (models.PhotoSubmission, error) {
	svc, err := db.GetScheduledService(ctx, p.Store.Pool, serviceID)
	if err != nil {
		if db.IsNoRows(err) {
			return models.PhotoSubmission{}, &core.NotFoundError{Entity: "service", ID: serviceID}
		}
		return models.PhotoSubmission{}, err
	}
	if actor.Role == models.RoleClient && svc.ClientID != actor.ID {
		return models.PhotoSubmission{}, &core.AuthorizationError{Role: actor.Role, Operation: core.OpReadPhotos}
	}
	if err := requireBoundCollaborator(ctx, p.Store, actor, svc, core.OpReadPhotos); err != nil {
		return models.PhotoSubmission{}, err
	}

	sub, err := db.GetSubmissionByService(ctx, p.Store.Pool, serviceID)
	if err != nil {
		if db.IsNoRows(err) {
			return models.PhotoSubmission{}, &core.NotFoundError{Entity: "submission", ID: serviceID}
		}
		return models.PhotoSubmission{}, err
	}
	if actor.Role == models.RoleClient && sub.Status != models.SubmissionSent {
		return models.PhotoSubmission{}, &core.NotFoundError{Entity: "submission", ID: serviceID}
	}
	return sub, nil
}
