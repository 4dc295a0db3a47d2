// Package campaign holds the review and send workflow of outreach
// campaigns.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"OutreachLab/internal/metrics"
	"OutreachLab/internal/models"
)

var (
	ErrNothingToSend = errors.New("no approved emails to send, approve emails first")
	ErrInvalidInput  = errors.New("invalid campaign")
)

type Store interface {
	ListLeads(ctx context.Context, sort string, limit int) ([]models.Lead, error)
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	UpdateLead(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)

	ListCampaigns(ctx context.Context, sort string, limit int) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, c models.Campaign) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, patch models.CampaignPatch) (*models.Campaign, error)
}

type Service struct {
	Store     Store
	LeadLimit int
	Log       *zap.Logger
}

func (s *Service) leadLimit() int {
	if s.LeadLimit <= 0 {
		return 1000
	}
	return s.LeadLimit
}

// Create stores a new draft campaign, using the default template when none
// is given.
func (s *Service) Create(ctx context.Context, c models.Campaign) (*models.Campaign, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.EmailTemplate) == "" {
		c.EmailTemplate = models.DefaultEmailTemplate
	}
	if c.Status == "" {
		c.Status = models.CampaignDraft
	}
	if !c.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, c.Status)
	}
	c.TotalLeads, c.EmailsSent, c.ResponsesReceived = 0, 0, 0

	created, err := s.Store.CreateCampaign(ctx, c)
	if err != nil {
		return nil, models.External("create campaign", err)
	}
	return created, nil
}

// CampaignLeads returns the leads a campaign works on: those already
// assigned to it plus every lead still in status new.
func (s *Service) CampaignLeads(ctx context.Context, campaignID string) ([]models.Lead, error) {
	all, err := s.Store.ListLeads(ctx, "-created_date", s.leadLimit())
	if err != nil {
		return nil, models.External("list leads", err)
	}

	var out []models.Lead
	for _, l := range all {
		if l.CampaignID == campaignID || l.Status == models.StatusNew {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) transition(ctx context.Context, leadID string, next models.LeadStatus, patch models.LeadPatch) (*models.Lead, error) {
	lead, err := s.Store.GetLead(ctx, leadID)
	if err != nil {
		return nil, models.External("load lead", err)
	}
	if !lead.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, lead.Status, next)
	}

	patch.Status = models.Ptr(next)
	updated, err := s.Store.UpdateLead(ctx, leadID, patch)
	if err != nil {
		return nil, models.External("update lead", err)
	}
	return updated, nil
}

// Approve marks a generated email as reviewed.
func (s *Service) Approve(ctx context.Context, leadID string) (*models.Lead, error) {
	return s.transition(ctx, leadID, models.StatusApproved, models.LeadPatch{})
}

// EditEmail replaces the generated subject and body. An edited email counts
// as approved.
func (s *Service) EditEmail(ctx context.Context, leadID, subject, body string) (*models.Lead, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: email body is required", ErrInvalidInput)
	}
	return s.transition(ctx, leadID, models.StatusApproved, models.LeadPatch{
		GeneratedEmail: models.Ptr(body),
		EmailSubject:   models.Ptr(subject),
	})
}

// MarkResponded records a reply to a sent email and bumps the campaign's
// response counter.
func (s *Service) MarkResponded(ctx context.Context, leadID string) (*models.Lead, error) {
	lead, err := s.transition(ctx, leadID, models.StatusResponded, models.LeadPatch{})
	if err != nil {
		return nil, err
	}
	if lead.CampaignID == "" {
		return lead, nil
	}

	c, err := s.Store.GetCampaign(ctx, lead.CampaignID)
	if err != nil {
		return nil, models.External("load campaign", err)
	}
	_, err = s.Store.UpdateCampaign(ctx, c.ID, models.CampaignPatch{
		ResponsesReceived: models.Ptr(c.ResponsesReceived + 1),
	})
	if err != nil {
		return nil, models.External("update campaign", err)
	}
	return lead, nil
}

// SendApproved marks every approved lead of the campaign as sent, then
// updates the campaign counters. Delivery itself happens elsewhere.
func (s *Service) SendApproved(ctx context.Context, campaignID string) (int, error) {
	c, err := s.Store.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, models.External("load campaign", err)
	}

	leads, err := s.CampaignLeads(ctx, campaignID)
	if err != nil {
		return 0, err
	}

	var approved []models.Lead
	for _, l := range leads {
		if l.Status == models.StatusApproved {
			approved = append(approved, l)
		}
	}
	if len(approved) == 0 {
		return 0, ErrNothingToSend
	}

	sent := 0
	for _, l := range approved {
		if _, err := s.Store.UpdateLead(ctx, l.ID, models.LeadPatch{Status: models.Ptr(models.StatusSent)}); err != nil {
			return sent, models.External("mark lead sent", err)
		}
		sent++
		metrics.EmailsSent.Inc()
	}

	_, err = s.Store.UpdateCampaign(ctx, campaignID, models.CampaignPatch{
		EmailsSent: models.Ptr(c.EmailsSent + sent),
		TotalLeads: models.Ptr(len(leads)),
	})
	if err != nil {
		return sent, models.External("update campaign counters", err)
	}

	s.Log.Info("campaign emails sent",
		zap.String("campaign_id", campaignID),
		zap.Int("sent", sent),
	)

	return sent, nil
}

type Stats struct {
	TotalLeads      int     `json:"total_leads"`
	EmailsGenerated int     `json:"emails_generated"`
	EmailsSent      int     `json:"emails_sent"`
	Responses       int     `json:"responses"`
	ResponseRate    float64 `json:"response_rate"`
}

func ComputeStats(leads []models.Lead) Stats {
	var st Stats
	st.TotalLeads = len(leads)
	for _, l := range leads {
		switch l.Status {
		case models.StatusEmailGenerated, models.StatusApproved:
			st.EmailsGenerated++
		case models.StatusSent:
			st.EmailsGenerated++
			st.EmailsSent++
		case models.StatusResponded:
			st.Responses++
		}
	}
	if st.EmailsSent > 0 {
		st.ResponseRate = math.Round(float64(st.Responses)/float64(st.EmailsSent)*1000) / 10
	}
	return st
}

type Dashboard struct {
	Stats     Stats             `json:"stats"`
	Leads     []models.Lead     `json:"recent_leads"`
	Campaigns []models.Campaign `json:"recent_campaigns"`
}

// Dashboard loads the recent activity and the headline numbers.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	leads, err := s.Store.ListLeads(ctx, "-created_date", 100)
	if err != nil {
		return nil, models.External("list leads", err)
	}
	campaigns, err := s.Store.ListCampaigns(ctx, "-created_date", 20)
	if err != nil {
		return nil, models.External("list campaigns", err)
	}
	return &Dashboard{
		Stats:     ComputeStats(leads),
		Leads:     leads,
		Campaigns: campaigns,
	}, nil
}

// Search keeps the leads where any text field contains q, ignoring case.
func Search(leads []models.Lead, q string) []models.Lead {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return leads
	}

	var out []models.Lead
	for _, l := range leads {
		for _, v := range []string{
			l.Email, l.FirstName, l.LastName, l.Company, l.Title,
			l.Industry, l.CompanySize, l.Notes, string(l.Status),
		} {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}
