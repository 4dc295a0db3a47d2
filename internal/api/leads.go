package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"OutreachLab/internal/campaign"
	"OutreachLab/internal/models"
)

// ListLeads supports ?sort=, ?limit=, ?status= and a case-insensitive ?q=
// search.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := models.LeadStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		h.writeError(w, r, errors.Join(errBadRequest, fmt.Errorf("unknown lead status %q", status)))
		return
	}

	all, err := h.Store.ListLeads(r.Context(), q.Get("sort"), queryLimit(r, h.LeadLimit))
	if err != nil {
		h.writeError(w, r, models.External("list leads", err))
		return
	}

	found := campaign.Search(all, q.Get("q"))
	if status != "" {
		found = filterStatus(found, status)
	}
	if found == nil {
		found = []models.Lead{}
	}
	writeJSON(w, http.StatusOK, found)
}

func filterStatus(leads []models.Lead, status models.LeadStatus) []models.Lead {
	var out []models.Lead
	for _, l := range leads {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.Store.DeleteLead(r.Context(), id); err != nil {
		h.writeError(w, r, models.External("delete lead", err))
		return
	}

	h.Log.Info("lead deleted", zap.String("lead_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApproveLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Campaigns.Approve(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type emailEdit struct {
	Subject string `json:"email_subject"`
	Body    string `json:"generated_email"`
}

func (h *Handler) EditLeadEmail(w http.ResponseWriter, r *http.Request) {
	var body emailEdit
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	lead, err := h.Campaigns.EditEmail(r.Context(), pathID(r), body.Subject, body.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) MarkResponded(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Campaigns.MarkResponded(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
