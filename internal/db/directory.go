package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func (s *Store) InsertCatalogService(ctx context.Context, cs *models.CatalogService) error {
	cs.ID = NewID()
	cs.CreatedAt = time.Now().UTC()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO catalog_services (id, name, description, price_cents, duration_minutes, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cs.ID, cs.Name, cs.Description, cs.PriceCents, cs.DurationMinutes, cs.Active, cs.CreatedAt)
	return err
}

func (s *Store) ListCatalogServices(ctx context.Context, activeOnly bool) ([]models.CatalogService, error) {
	query := `SELECT id, name, description, price_cents, duration_minutes, active, created_at FROM catalog_services`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CatalogService
	for rows.Next() {
		var cs models.CatalogService
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.PriceCents, &cs.DurationMinutes, &cs.Active, &cs.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *Store) GetCatalogService(ctx context.Context, id string) (models.CatalogService, error) {
	var cs models.CatalogService
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, description, price_cents, duration_minutes, active, created_at
		FROM catalog_services WHERE id = $1`, id).
		Scan(&cs.ID, &cs.Name, &cs.Description, &cs.PriceCents, &cs.DurationMinutes, &cs.Active, &cs.CreatedAt)
	return cs, err
}

func (s *Store) InsertClient(ctx context.Context, cl *models.Client) error {
	cl.ID = NewID()
	cl.CreatedAt = time.Now().UTC()
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clients (id, name, email, created_at) VALUES ($1, $2, $3, $4)`,
			cl.ID, cl.Name, cl.Email, cl.CreatedAt); err != nil {
			return err
		}
		for i := range cl.Branches {
			b := &cl.Branches[i]
			b.ID = NewID()
			b.ClientID = cl.ID
			if _, err := tx.Exec(ctx, `
				INSERT INTO branches (id, client_id, label, address, city) VALUES ($1, $2, $3, $4, $5)`,
				b.ID, b.ClientID, b.Label, b.Address, b.City); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, email, created_at FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		var cl models.Client
		if err := rows.Scan(&cl.ID, &cl.Name, &cl.Email, &cl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		branches, err := s.listBranches(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Branches = branches
	}
	return out, nil
}

func (s *Store) listBranches(ctx context.Context, clientID string) ([]models.Branch, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, client_id, label, address, city FROM branches WHERE client_id = $1 ORDER BY label ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.ClientID, &b.Label, &b.Address, &b.City); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) InsertCollaborator(ctx context.Context, c *models.Collaborator) error {
	c.ID = NewID()
	c.CreatedAt = time.Now().UTC()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO collaborators (id, name, position, team_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Position, c.TeamID, c.CreatedAt)
	return err
}

// ListCollaborators computes the availability flag for the given date from
// live commitment rows; no cached flag is persisted.
func (s *Store) ListCollaborators(ctx context.Context, date time.Time) ([]models.Collaborator, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.name, c.position, c.team_id, c.created_at,
			NOT EXISTS (
				SELECT 1 FROM scheduled_services s
				WHERE s.status IN ('scheduled', 'in-progress')
					AND s.date = $1::date
					AND (s.collaborator_id = c.id OR c.id = ANY(s.member_ids))
			) AND NOT EXISTS (
				SELECT 1 FROM allocations a
				WHERE a.status = 'active'
					AND a.collaborator_id = c.id
					AND $1::date BETWEEN a.start_date AND a.end_date
					AND EXTRACT(DOW FROM $1::date)::int = ANY(a.weekdays)
			) AS available
		FROM collaborators c
		ORDER BY c.name ASC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Collaborator
	for rows.Next() {
		var c models.Collaborator
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.TeamID, &c.CreatedAt, &c.Available); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCollaborator(ctx context.Context, id string) (models.Collaborator, error) {
	var c models.Collaborator
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, position, team_id, created_at FROM collaborators WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Position, &c.TeamID, &c.CreatedAt)
	return c, err
}

func (s *Store) InsertTeam(ctx context.Context, t *models.Team) error {
	t.ID = NewID()
	t.CreatedAt = time.Now().UTC()
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO teams (id, name, manager_id, created_at) VALUES ($1, $2, $3, $4)`,
			t.ID, t.Name, t.ManagerID, t.CreatedAt); err != nil {
			return err
		}
		return setTeamMembers(ctx, tx, t.ID, t.MemberIDs)
	})
}

func (s *Store) SetTeamMembers(ctx context.Context, teamID string, memberIDs []string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		return setTeamMembers(ctx, tx, teamID, memberIDs)
	})
}

func setTeamMembers(ctx context.Context, q Querier, teamID string, memberIDs []string) error {
	if _, err := q.Exec(ctx, `UPDATE collaborators SET team_id = NULL WHERE team_id = $1`, teamID); err != nil {
		return err
	}
	for _, id := range memberIDs {
		tag, err := q.Exec(ctx, `UPDATE collaborators SET team_id = $1 WHERE id = $2`, teamID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}
	return nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	err := s.Pool.QueryRow(ctx, `SELECT id, name, manager_id, created_at FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.ManagerID, &t.CreatedAt)
	if err != nil {
		return models.Team{}, err
	}
	rows, err := s.Pool.Query(ctx, `SELECT id FROM collaborators WHERE team_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return models.Team{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return models.Team{}, err
		}
		t.MemberIDs = append(t.MemberIDs, memberID)
	}
	return t, rows.Err()
}

func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, manager_id, created_at FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ManagerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		full, err := s.GetTeam(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].MemberIDs = full.MemberIDs
	}
	return out, nil
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
