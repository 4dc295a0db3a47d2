package models

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

const DefaultEmailTemplate = "Hi {{first_name}},\n\nI saw you work at {{company}} and thought I'd reach out.\n\nBest regards,"

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignCompleted:
		return true
	}
	return false
}

type Campaign struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	EmailTemplate string         `json:"email_template"`
	Status        CampaignStatus `json:"status"`

	TotalLeads        int `json:"total_leads"`
	EmailsSent        int `json:"emails_sent"`
	ResponsesReceived int `json:"responses_received"`

	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"updated_date"`
}

type CampaignPatch struct {
	Name              *string         `json:"name,omitempty"`
	Description       *string         `json:"description,omitempty"`
	EmailTemplate     *string         `json:"email_template,omitempty"`
	Status            *CampaignStatus `json:"status,omitempty"`
	TotalLeads        *int            `json:"total_leads,omitempty"`
	EmailsSent        *int            `json:"emails_sent,omitempty"`
	ResponsesReceived *int            `json:"responses_received,omitempty"`
}
