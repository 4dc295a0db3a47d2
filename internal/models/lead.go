package models

import (
	"errors"
	"time"
)

type LeadStatus string

const (
	StatusNew            LeadStatus = "new"
	StatusEmailGenerated LeadStatus = "email_generated"
	StatusApproved       LeadStatus = "approved"
	StatusSent           LeadStatus = "sent"
	StatusResponded      LeadStatus = "responded"
)

var ErrInvalidTransition = errors.New("invalid lead status transition")

// allowed lists the statuses a lead may move to from a given status.
var allowed = map[LeadStatus][]LeadStatus{
	StatusNew:            {StatusEmailGenerated},
	StatusEmailGenerated: {StatusEmailGenerated, StatusApproved},
	StatusApproved:       {StatusApproved, StatusSent},
	StatusSent:           {StatusResponded},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusEmailGenerated, StatusApproved, StatusSent, StatusResponded:
		return true
	}
	return false
}

func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, st := range allowed[s] {
		if st == next {
			return true
		}
	}
	return false
}

type Lead struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Notes       string `json:"notes"`

	Status         LeadStatus `json:"status"`
	GeneratedEmail string     `json:"generated_email,omitempty"`
	EmailSubject   string     `json:"email_subject,omitempty"`
	CampaignID     string     `json:"campaign_id,omitempty"`

	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"updated_date"`
}

// LeadPatch is a partial update; nil fields are left untouched.
type LeadPatch struct {
	GeneratedEmail *string     `json:"generated_email,omitempty"`
	EmailSubject   *string     `json:"email_subject,omitempty"`
	Status         *LeadStatus `json:"status,omitempty"`
	CampaignID     *string     `json:"campaign_id,omitempty"`
}

func (p LeadPatch) Empty() bool {
	return p.GeneratedEmail == nil && p.EmailSubject == nil && p.Status == nil && p.CampaignID == nil
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
