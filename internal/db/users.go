package db

import (
	"context"

	"OutreachLab/internal/models"
)

const userColumns = `id, email, full_name, job_title, email_signature`

func (s *Store) Me(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.JobTitle, &p.EmailSignature)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) UpdateMyUserData(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	var p models.Profile
	err := s.Pool.QueryRow(ctx,
		`UPDATE users
		 SET job_title = COALESCE($1, job_title),
		     email_signature = COALESCE($2, email_signature),
		     updated_at = NOW()
		 WHERE id = $3
		 RETURNING `+userColumns,
		patch.JobTitle,
		patch.EmailSignature,
		userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.JobTitle, &p.EmailSignature)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
