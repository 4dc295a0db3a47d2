package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"OutreachLab/internal/campaign"
	"OutreachLab/internal/models"
	"OutreachLab/internal/worker"
)

const campaignListLimit = 100

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListCampaigns(r.Context(), r.URL.Query().Get("sort"), queryLimit(r, campaignListLimit))
	if err != nil {
		h.writeError(w, r, models.External("list campaigns", err))
		return
	}
	if list == nil {
		list = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, list)
}

type campaignInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	EmailTemplate string `json:"email_template"`
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaignInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.Campaigns.Create(r.Context(), models.Campaign{
		Name:          in.Name,
		Description:   in.Description,
		EmailTemplate: in.EmailTemplate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Log.Info("campaign created", zap.String("campaign_id", c.ID))
	writeJSON(w, http.StatusCreated, c)
}

type campaignDetail struct {
	Campaign *models.Campaign `json:"campaign"`
	Leads    []models.Lead    `json:"leads"`
	Stats    campaign.Stats   `json:"stats"`
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCampaign(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, models.External("load campaign", err))
		return
	}

	leads, err := h.Campaigns.CampaignLeads(r.Context(), c.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}

	writeJSON(w, http.StatusOK, campaignDetail{
		Campaign: c,
		Leads:    leads,
		Stats:    campaign.ComputeStats(leads),
	})
}

// GenerateEmails queues a job that writes emails for every campaign lead
// that has none. The leads are picked when the job runs, not when it is
// queued.
func (h *Handler) GenerateEmails(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	c, err := h.Store.GetCampaign(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, models.External("load campaign", err))
		return
	}

	job := worker.NewJob(worker.KindGenerate, uid, func(ctx context.Context, progress func(float64)) (int, error) {
		targets, err := h.Campaigns.CampaignLeads(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		sum, err := h.Generator.Run(ctx, uid, *c, targets, progress)
		return sum.Generated, err
	})

	if err := h.enqueue(job); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// DeleteCampaign removes the campaign. Its leads stay and lose the link.
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.Store.DeleteCampaign(r.Context(), id); err != nil {
		h.writeError(w, r, models.External("delete campaign", err))
		return
	}

	h.Log.Info("campaign deleted", zap.String("campaign_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	n, err := h.Campaigns.SendApproved(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": n})
}
