package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"OutreachLab/internal/models"
)

const leadColumns = `id, email, first_name, last_name, company, title, industry, company_size, notes,
	status, generated_email, email_subject, campaign_id, created_at, updated_at`

var leadSorts = map[string]string{
	"created_date": "created_at",
	"updated_date": "updated_at",
	"email":        "email",
	"first_name":   "first_name",
	"last_name":    "last_name",
	"company":      "company",
	"status":       "status",
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var (
		l          models.Lead
		campaignID *string
	)
	err := row.Scan(
		&l.ID, &l.Email, &l.FirstName, &l.LastName, &l.Company, &l.Title, &l.Industry,
		&l.CompanySize, &l.Notes, &l.Status, &l.GeneratedEmail, &l.EmailSubject,
		&campaignID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if campaignID != nil {
		l.CampaignID = *campaignID
	}
	return &l, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const insertLead = `INSERT INTO leads
	(id, email, first_name, last_name, company, title, industry, company_size, notes,
	 status, generated_email, email_subject, campaign_id, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	RETURNING ` + leadColumns

func leadArgs(l models.Lead) []any {
	status := l.Status
	if status == "" {
		status = models.StatusNew
	}
	return []any{
		uuid.NewString(), l.Email, l.FirstName, l.LastName, l.Company, l.Title, l.Industry,
		l.CompanySize, l.Notes, status, l.GeneratedEmail, l.EmailSubject, nullString(l.CampaignID),
	}
}

func (s *Store) ListLeads(ctx context.Context, sort string, limit int) ([]models.Lead, error) {
	sql := fmt.Sprintf("SELECT %s FROM leads %s LIMIT $1", leadColumns, orderBy(sort, leadSorts))

	rows, err := s.Pool.Query(ctx, sql, clampLimit(limit, 1000))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	return scanLead(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM leads WHERE id = $1", leadColumns), id))
}

// BulkCreateLeads inserts the batch in one transaction and returns the
// stored records in input order.
func (s *Store) BulkCreateLeads(ctx context.Context, leads []models.Lead) ([]models.Lead, error) {
	if len(leads) == 0 {
		return nil, nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range leads {
		batch.Queue(insertLead, leadArgs(l)...)
	}

	br := tx.SendBatch(ctx, batch)

	created := make([]models.Lead, 0, len(leads))
	for range leads {
		l, err := scanLead(br.QueryRow())
		if err != nil {
			br.Close()
			return nil, fmt.Errorf("insert lead: %w", err)
		}
		created = append(created, *l)
	}

	if err := br.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bulk insert: %w", err)
	}

	return created, nil
}

func (s *Store) UpdateLead(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	if patch.Empty() {
		return s.GetLead(ctx, id)
	}

	var c setClause
	if patch.GeneratedEmail != nil {
		c.add("generated_email", *patch.GeneratedEmail)
	}
	if patch.EmailSubject != nil {
		c.add("email_subject", *patch.EmailSubject)
	}
	if patch.Status != nil {
		c.add("status", *patch.Status)
	}
	if patch.CampaignID != nil {
		c.add("campaign_id", nullString(*patch.CampaignID))
	}

	sql, args := c.build("leads", id, leadColumns)
	return scanLead(s.Pool.QueryRow(ctx, sql, args...))
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
