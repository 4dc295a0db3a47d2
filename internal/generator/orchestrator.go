// Package generator writes AI outreach emails for the leads of a campaign.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"OutreachLab/internal/metrics"
	"OutreachLab/internal/models"
)

type Invoker interface {
	Invoke(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

type ProfileSource interface {
	Me(ctx context.Context, userID string) (*models.Profile, error)
}

type LeadStore interface {
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	UpdateLead(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
}

// errStale marks a lead that gained an email or moved on from new after
// the run picked it.
var errStale = errors.New("lead already has an email")

type Orchestrator struct {
	LLM      Invoker
	Profiles ProfileSource
	Leads    LeadStore
	// Pacing is an optional pause between leads. Zero disables it.
	Pacing time.Duration
	Log    *zap.Logger
}

type Summary struct {
	Total     int      `json:"total"`
	Generated int      `json:"generated"`
	Failed    []string `json:"failed,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Run generates an email for every lead in targets that has none yet,
// one lead at a time. Each lead is reloaded first and left alone if it has
// since gained an email. A failure for one lead is logged and skipped. Only
// a failure to load the sender profile aborts the run.
func (o *Orchestrator) Run(
	ctx context.Context,
	userID string,
	campaign models.Campaign,
	targets []models.Lead,
	progress func(float64),
) (Summary, error) {
	if progress == nil {
		progress = func(float64) {}
	}

	var pending []models.Lead
	for _, l := range targets {
		if l.GeneratedEmail == "" {
			pending = append(pending, l)
		}
	}

	sum := Summary{Total: len(pending)}
	if len(pending) == 0 {
		return sum, nil
	}

	sender, err := o.Profiles.Me(ctx, userID)
	if err != nil {
		return sum, models.External("load sender profile", err)
	}

	log := o.Log.With(zap.String("campaign_id", campaign.ID))

	for i, lead := range pending {
		err := o.generateOne(ctx, *sender, campaign, lead.ID)
		switch {
		case errors.Is(err, errStale):
			log.Info("lead changed since the run started, skipped", zap.String("lead_id", lead.ID))
			sum.Skipped = append(sum.Skipped, lead.ID)
		case err != nil:
			log.Warn("email generation skipped",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
			sum.Failed = append(sum.Failed, lead.ID)
			metrics.GenerationFailures.Inc()
		default:
			sum.Generated++
			metrics.EmailsGenerated.Inc()
		}

		progress(float64(i+1) / float64(len(pending)) * 100)

		if o.Pacing > 0 && i < len(pending)-1 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(o.Pacing):
			}
		}
	}

	log.Info("email generation complete",
		zap.Int("generated", sum.Generated),
		zap.Int("failed", len(sum.Failed)),
		zap.Int("skipped", len(sum.Skipped)),
	)

	return sum, nil
}

// generateOne reloads the lead so an email written or approved after the
// run was queued is never overwritten.
func (o *Orchestrator) generateOne(ctx context.Context, sender models.Profile, campaign models.Campaign, leadID string) error {
	lead, err := o.Leads.GetLead(ctx, leadID)
	if err != nil {
		return models.External("reload lead", err)
	}
	if lead.GeneratedEmail != "" || lead.Status != models.StatusNew {
		return errStale
	}

	prompt := BuildPrompt(sender, *lead, campaign.EmailTemplate)

	var email Email
	if err := o.LLM.Invoke(ctx, prompt, EmailSchema, &email); err != nil {
		return models.External("generate email", err)
	}
	if email.Body == "" {
		return fmt.Errorf("generated email for %s has no body", lead.Email)
	}

	_, err = o.Leads.UpdateLead(ctx, lead.ID, models.LeadPatch{
		GeneratedEmail: models.Ptr(email.Body),
		EmailSubject:   models.Ptr(email.Subject),
		Status:         models.Ptr(models.StatusEmailGenerated),
		CampaignID:     models.Ptr(campaign.ID),
	})
	if err != nil {
		return models.External("save generated email", err)
	}
	return nil
}
