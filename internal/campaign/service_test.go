package campaign

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"OutreachLab/internal/models"
)

var errNotFound = errors.New("not found")

// memStore keeps leads in creation order, newest last.
type memStore struct {
	leads     []models.Lead
	campaigns map[string]*models.Campaign
	failLead  string
}

func newMemStore() *memStore {
	return &memStore{campaigns: make(map[string]*models.Campaign)}
}

func (m *memStore) ListLeads(ctx context.Context, sort string, limit int) ([]models.Lead, error) {
	out := make([]models.Lead, 0, len(m.leads))
	for i := len(m.leads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.leads[i])
	}
	return out, nil
}

func (m *memStore) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	for i := range m.leads {
		if m.leads[i].ID == id {
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, errNotFound
}

func (m *memStore) UpdateLead(ctx context.Context, id string, p models.LeadPatch) (*models.Lead, error) {
	if id == m.failLead {
		return nil, errors.New("write failed")
	}
	for i := range m.leads {
		l := &m.leads[i]
		if l.ID != id {
			continue
		}
		if p.GeneratedEmail != nil {
			l.GeneratedEmail = *p.GeneratedEmail
		}
		if p.EmailSubject != nil {
			l.EmailSubject = *p.EmailSubject
		}
		if p.Status != nil {
			l.Status = *p.Status
		}
		if p.CampaignID != nil {
			l.CampaignID = *p.CampaignID
		}
		out := *l
		return &out, nil
	}
	return nil, errNotFound
}

func (m *memStore) ListCampaigns(ctx context.Context, sort string, limit int) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range m.campaigns {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, errNotFound
	}
	out := *c
	return &out, nil
}

func (m *memStore) CreateCampaign(ctx context.Context, c models.Campaign) (*models.Campaign, error) {
	c.ID = "c" + string(rune('0'+len(m.campaigns)+1))
	m.campaigns[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memStore) UpdateCampaign(ctx context.Context, id string, p models.CampaignPatch) (*models.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, errNotFound
	}
	if p.EmailsSent != nil {
		c.EmailsSent = *p.EmailsSent
	}
	if p.TotalLeads != nil {
		c.TotalLeads = *p.TotalLeads
	}
	if p.ResponsesReceived != nil {
		c.ResponsesReceived = *p.ResponsesReceived
	}
	out := *c
	return &out, nil
}

func newService(store *memStore) *Service {
	return &Service{Store: store, Log: zap.NewNop()}
}

func TestCreate_Defaults(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	c, err := svc.Create(context.Background(), models.Campaign{Name: "  Q3 push ", EmailsSent: 9})
	require.NoError(t, err)

	assert.Equal(t, "Q3 push", c.Name)
	assert.Equal(t, models.CampaignDraft, c.Status)
	assert.Equal(t, models.DefaultEmailTemplate, c.EmailTemplate)
	assert.Zero(t, c.EmailsSent)

	_, err = svc.Create(context.Background(), models.Campaign{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), models.Campaign{Name: "x", Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCampaignLeads(t *testing.T) {
	store := newMemStore()
	store.leads = []models.Lead{
		{ID: "a", Status: models.StatusNew},
		{ID: "b", Status: models.StatusApproved, CampaignID: "c1"},
		{ID: "c", Status: models.StatusApproved, CampaignID: "c2"},
		{ID: "d", Status: models.StatusSent, CampaignID: "c1"},
	}

	got, err := newService(store).CampaignLeads(context.Background(), "c1")
	require.NoError(t, err)

	var ids []string
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"d", "b", "a"}, ids)
}

func TestApproveAndEdit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.leads = []models.Lead{
		{ID: "gen", Status: models.StatusEmailGenerated, GeneratedEmail: "draft"},
		{ID: "new", Status: models.StatusNew},
	}
	svc := newService(store)

	l, err := svc.Approve(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, l.Status)

	l, err = svc.EditEmail(ctx, "gen", "New subject", "New body")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, l.Status)
	assert.Equal(t, "New body", l.GeneratedEmail)
	assert.Equal(t, "New subject", l.EmailSubject)

	_, err = svc.Approve(ctx, "new")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.EditEmail(ctx, "gen", "s", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Approve(ctx, "missing")
	var ext *models.ExternalCallError
	assert.ErrorAs(t, err, &ext)
}

func TestSendApproved(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.campaigns["c1"] = &models.Campaign{ID: "c1", EmailsSent: 2}
	store.leads = []models.Lead{
		{ID: "a", Status: models.StatusApproved, CampaignID: "c1"},
		{ID: "b", Status: models.StatusEmailGenerated, CampaignID: "c1"},
		{ID: "c", Status: models.StatusApproved, CampaignID: "c1"},
		{ID: "d", Status: models.StatusNew},
		{ID: "e", Status: models.StatusApproved, CampaignID: "c2"},
	}
	svc := newService(store)

	n, err := svc.SendApproved(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, models.StatusSent, store.leads[0].Status)
	assert.Equal(t, models.StatusEmailGenerated, store.leads[1].Status)
	assert.Equal(t, models.StatusSent, store.leads[2].Status)
	assert.Equal(t, models.StatusApproved, store.leads[4].Status)

	assert.Equal(t, 4, store.campaigns["c1"].EmailsSent)
	assert.Equal(t, 4, store.campaigns["c1"].TotalLeads)

	_, err = svc.SendApproved(ctx, "c1")
	assert.ErrorIs(t, err, ErrNothingToSend)
}

func TestSendApproved_StoreFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.campaigns["c1"] = &models.Campaign{ID: "c1"}
	store.leads = []models.Lead{
		{ID: "a", Status: models.StatusApproved, CampaignID: "c1"},
		{ID: "b", Status: models.StatusApproved, CampaignID: "c1"},
	}
	store.failLead = "a"

	n, err := newService(store).SendApproved(ctx, "c1")

	var ext *models.ExternalCallError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, 1, n)
	assert.Zero(t, store.campaigns["c1"].EmailsSent)
}

func TestMarkResponded(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.campaigns["c1"] = &models.Campaign{ID: "c1", ResponsesReceived: 1}
	store.leads = []models.Lead{
		{ID: "a", Status: models.StatusSent, CampaignID: "c1"},
		{ID: "b", Status: models.StatusApproved, CampaignID: "c1"},
	}
	svc := newService(store)

	l, err := svc.MarkResponded(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResponded, l.Status)
	assert.Equal(t, 2, store.campaigns["c1"].ResponsesReceived)

	_, err = svc.MarkResponded(ctx, "b")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats([]models.Lead{
		{Status: models.StatusNew},
		{Status: models.StatusEmailGenerated},
		{Status: models.StatusApproved},
		{Status: models.StatusSent},
		{Status: models.StatusSent},
		{Status: models.StatusSent},
		{Status: models.StatusResponded},
	})

	assert.Equal(t, Stats{
		TotalLeads:      7,
		EmailsGenerated: 5,
		EmailsSent:      3,
		Responses:       1,
		ResponseRate:    33.3,
	}, st)

	assert.Zero(t, ComputeStats(nil).ResponseRate)
}

func TestSearch(t *testing.T) {
	leads := []models.Lead{
		{ID: "1", FirstName: "Ann", Company: "Acme"},
		{ID: "2", FirstName: "Bob", Email: "bob@ACME.io"},
		{ID: "3", FirstName: "Cy", Company: "Beta"},
	}

	got := Search(leads, " acme ")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Len(t, Search(leads, ""), 3)
	assert.Empty(t, Search(leads, "zzz"))
}

func TestDashboard(t *testing.T) {
	store := newMemStore()
	store.leads = []models.Lead{
		{ID: "l1", Status: models.StatusSent},
		{ID: "l2", Status: models.StatusResponded},
		{ID: "l3", Status: models.StatusNew},
	}
	store.campaigns["c1"] = &models.Campaign{ID: "c1", Name: "Q3"}

	d, err := newService(store).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Len(t, d.Leads, 3)
	assert.Equal(t, "l3", d.Leads[0].ID)
	assert.Len(t, d.Campaigns, 1)
	assert.Equal(t, Stats{TotalLeads: 3, EmailsGenerated: 1, EmailsSent: 1, Responses: 1, ResponseRate: 100}, d.Stats)
}
