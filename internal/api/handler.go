package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"OutreachLab/internal/auth"
	"OutreachLab/internal/campaign"
	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/db"
	"OutreachLab/internal/generator"
	"OutreachLab/internal/importer"
	"OutreachLab/internal/leads"
	"OutreachLab/internal/mapping"
	"OutreachLab/internal/models"
	"OutreachLab/internal/worker"
)

var errBadRequest = errors.New("bad request")

type Store interface {
	campaign.Store
	Ping(ctx context.Context) error
	DeleteLead(ctx context.Context, id string) error
	DeleteCampaign(ctx context.Context, id string) error
	Me(ctx context.Context, userID string) (*models.Profile, error)
	UpdateMyUserData(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
}

type Handler struct {
	Store     Store
	Campaigns *campaign.Service
	Importer  *importer.Importer
	Generator *generator.Orchestrator
	Sessions  *importer.Sessions
	Tracker   *worker.Tracker
	Jobs      *worker.Queue

	MaxUploadBytes int64
	LeadLimit      int
	Log            *zap.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := map[string]any{"error": err.Error()}

	var (
		parseErr   *csvparser.ParseError
		mappingErr *mapping.ValidationError
		extErr     *models.ExternalCallError
	)

	switch {
	case errors.As(err, &mappingErr):
		status = http.StatusUnprocessableEntity
		body["missing"] = mappingErr.Missing
	case errors.As(err, &parseErr),
		errors.Is(err, leads.ErrNoValidLeads),
		errors.Is(err, campaign.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound),
		errors.Is(err, importer.ErrSessionNotFound),
		errors.Is(err, worker.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, campaign.ErrNothingToSend),
		errors.Is(err, importer.ErrNotConfirmed),
		errors.Is(err, importer.ErrCommitted),
		errors.Is(err, importer.ErrImportFailed):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrQueueClosed):
		status = http.StatusServiceUnavailable
	case errors.As(err, &extErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func userID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

func queryLimit(r *http.Request, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// enqueue registers the job and hands it to the worker pool without
// blocking the request.
func (h *Handler) enqueue(job worker.Job) error {
	h.Tracker.Queue(job)

	if err := h.Jobs.Submit(job); err != nil {
		h.Tracker.Finish(job.ID, 0, err)
		return err
	}

	h.Log.Info("job queued",
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
	)
	return nil
}

func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	st, err := h.Tracker.Get(userID(r), pathID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Me(r.Context(), userID(r))
	if errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, auth.ErrUnauthenticated)
		return
	}
	if err != nil {
		h.writeError(w, r, models.External("load profile", err))
		return
	}
	p.EmailSignature = p.SignatureOrDefault()
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if err := decode(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.Store.UpdateMyUserData(r.Context(), userID(r), patch)
	if errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, auth.ErrUnauthenticated)
		return
	}
	if err != nil {
		h.writeError(w, r, models.External("update profile", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Campaigns.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
