package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ListSubjects retrieves the subject catalog ordered by name
func (db *DB) ListSubjects(ctx context.Context) ([]types.Subject, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(icon, '')
		 FROM subjects ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []types.Subject
	for rows.Next() {
		var s types.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

// GetSubject retrieves a subject by its identifier
func (db *DB) GetSubject(ctx context.Context, id string) (*types.Subject, error) {
	var s types.Subject
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(icon, '')
		 FROM subjects WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.Description, &s.Icon)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &s, nil
}

// UpsertSubject inserts or updates a catalog entry. Used by seeding.
func (db *DB) UpsertSubject(ctx context.Context, s *types.Subject) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO subjects (id, name, description, icon)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = $2, description = $3, icon = $4`,
		s.ID, s.Name, s.Description, s.Icon,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subject %s: %w", s.ID, err)
	}
	return nil
}
