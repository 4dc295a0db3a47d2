package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"OutreachLab/internal/models"
)

const campaignColumns = `id, name, description, email_template, status,
	total_leads, emails_sent, responses_received, created_at, updated_at`

var campaignSorts = map[string]string{
	"created_date": "created_at",
	"updated_date": "updated_at",
	"name":         "name",
	"status":       "status",
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.EmailTemplate, &c.Status,
		&c.TotalLeads, &c.EmailsSent, &c.ResponsesReceived, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) ListCampaigns(ctx context.Context, sort string, limit int) ([]models.Campaign, error) {
	sql := fmt.Sprintf("SELECT %s FROM campaigns %s LIMIT $1", campaignColumns, orderBy(sort, campaignSorts))

	rows, err := s.Pool.Query(ctx, sql, clampLimit(limit, 100))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return scanCampaign(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM campaigns WHERE id = $1", campaignColumns), id))
}

func (s *Store) CreateCampaign(ctx context.Context, c models.Campaign) (*models.Campaign, error) {
	return scanCampaign(s.Pool.QueryRow(ctx,
		`INSERT INTO campaigns
		 (id, name, description, email_template, status, total_leads, emails_sent, responses_received, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		 RETURNING `+campaignColumns,
		uuid.NewString(),
		c.Name,
		c.Description,
		c.EmailTemplate,
		c.Status,
		c.TotalLeads,
		c.EmailsSent,
		c.ResponsesReceived,
	))
}

func (s *Store) UpdateCampaign(ctx context.Context, id string, patch models.CampaignPatch) (*models.Campaign, error) {
	var c setClause
	if patch.Name != nil {
		c.add("name", *patch.Name)
	}
	if patch.Description != nil {
		c.add("description", *patch.Description)
	}
	if patch.EmailTemplate != nil {
		c.add("email_template", *patch.EmailTemplate)
	}
	if patch.Status != nil {
		c.add("status", *patch.Status)
	}
	if patch.TotalLeads != nil {
		c.add("total_leads", *patch.TotalLeads)
	}
	if patch.EmailsSent != nil {
		c.add("emails_sent", *patch.EmailsSent)
	}
	if patch.ResponsesReceived != nil {
		c.add("responses_received", *patch.ResponsesReceived)
	}

	if len(c.sets) == 0 {
		return s.GetCampaign(ctx, id)
	}

	sql, args := c.build("campaigns", id, campaignColumns)
	return scanCampaign(s.Pool.QueryRow(ctx, sql, args...))
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
