package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func GetSubmissionByService(ctx context.Context, q Querier, serviceID string) (models.PhotoSubmission, error) {
	row := q.QueryRow(ctx, `
		SELECT id, scheduled_service_id, collaborator_notes, manager_notes, status, sent_by, sent_at, created_at, updated_at
		FROM photo_submissions WHERE scheduled_service_id = $1`, serviceID)
	return scanSubmission(ctx, q, row)
}

func GetSubmission(ctx context.Context, q Querier, id string) (models.PhotoSubmission, error) {
	row := q.QueryRow(ctx, `
		SELECT id, scheduled_service_id, collaborator_notes, manager_notes, status, sent_by, sent_at, created_at, updated_at
		FROM photo_submissions WHERE id = $1`, id)
	return scanSubmission(ctx, q, row)
}

func scanSubmission(ctx context.Context, q Querier, row pgx.Row) (models.PhotoSubmission, error) {
	var sub models.PhotoSubmission
	err := row.Scan(&sub.ID, &sub.ScheduledServiceID, &sub.CollaboratorNotes, &sub.ManagerNotes,
		&sub.Status, &sub.SentBy, &sub.SentAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return models.PhotoSubmission{}, err
	}
	photos, err := listPhotos(ctx, q, sub.ID)
	if err != nil {
		return models.PhotoSubmission{}, err
	}
	sub.Photos = photos
	return sub, nil
}

func listPhotos(ctx context.Context, q Querier, submissionID string) ([]models.Photo, error) {
	rows, err := q.Query(ctx, `
		SELECT id, submission_id, set_name, ref, added_by, added_at
		FROM photos WHERE submission_id = $1 ORDER BY added_at ASC, id ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.SubmissionID, &p.Set, &p.Ref, &p.AddedBy, &p.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func InsertSubmission(ctx context.Context, q Querier, sub *models.PhotoSubmission) error {
	sub.ID = NewID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	_, err := q.Exec(ctx, `
		INSERT INTO photo_submissions
			(id, scheduled_service_id, collaborator_notes, manager_notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, $5, $6)`,
		sub.ID, sub.ScheduledServiceID, sub.CollaboratorNotes, sub.Status, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func AppendSubmissionNotes(ctx context.Context, q Querier, id, collaboratorNotes string) error {
	_, err := q.Exec(ctx, `
		UPDATE photo_submissions
		SET collaborator_notes = `+appendObservationSQL("collaborator_notes")+`, updated_at = now()
		WHERE id = $2`, collaboratorNotes, id)
	return err
}

func InsertPhoto(ctx context.Context, q Querier, p *models.Photo) error {
	p.ID = NewID()
	p.AddedAt = time.Now().UTC()
	_, err := q.Exec(ctx, `
		INSERT INTO photos (id, submission_id, set_name, ref, added_by, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.SubmissionID, p.Set, p.Ref, p.AddedBy, p.AddedAt)
	return err
}

func DeletePhoto(ctx context.Context, q Querier, submissionID, ref string) (models.Photo, bool, error) {
	row := q.QueryRow(ctx, `
		DELETE FROM photos WHERE submission_id = $1 AND ref = $2
		RETURNING id, submission_id, set_name, ref, added_by, added_at`, submissionID, ref)
	var p models.Photo
	if err := row.Scan(&p.ID, &p.SubmissionID, &p.Set, &p.Ref, &p.AddedBy, &p.AddedAt); err != nil {
		if IsNoRows(err) {
			return models.Photo{}, false, nil
		}
		return models.Photo{}, false, err
	}
	return p, true, nil
}

func InsertPhotoRemoval(ctx context.Context, q Querier, r *models.PhotoRemoval) error {
	r.ID = NewID()
	r.RemovedAt = time.Now().UTC()
	_, err := q.Exec(ctx, `
		INSERT INTO photo_removals (id, submission_id, photo_ref, set_name, removed_by, post_release, removed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.SubmissionID, r.PhotoRef, r.Set, r.RemovedBy, r.PostRelease, r.RemovedAt)
	return err
}

func UpdateManagerNotes(ctx context.Context, q Querier, id, notes string) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE photo_submissions SET manager_notes = $1, updated_at = now() WHERE id = $2`, notes, id)
	return tag.RowsAffected() > 0, err
}

// MarkSubmissionSent is idempotent: re-sending an already sent submission
// refreshes notes and sent_at rather than failing.
func MarkSubmissionSent(ctx context.Context, q Querier, id, sentBy, managerNotes string) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE photo_submissions
		SET status = $1, manager_notes = $2, sent_by = $3, sent_at = now(), updated_at = now()
		WHERE id = $4`,
		models.SubmissionSent, managerNotes, sentBy, id)
	return tag.RowsAffected() > 0, err
}
