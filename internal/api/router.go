package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"OutreachLab/internal/auth"
)

// NewRouter wires every route. Only /healthz and the sample file are
// reachable without a token.
func NewRouter(h *Handler, verifier *auth.Verifier, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/imports/sample.csv", h.SampleCSV)

		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware)

			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/jobs/{id}", h.Job)

			r.Route("/imports", func(r chi.Router) {
				r.Post("/", h.CreateImport)
				r.Get("/{id}", h.GetImport)
				r.Put("/{id}/mapping", h.UpdateMapping)
				r.Post("/{id}/confirm", h.ConfirmImport)
				r.Post("/{id}/commit", h.CommitImport)
				r.Delete("/{id}", h.CancelImport)
			})

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", h.ListLeads)
				r.Delete("/{id}", h.DeleteLead)
				r.Post("/{id}/approve", h.ApproveLead)
				r.Put("/{id}/email", h.EditLeadEmail)
				r.Post("/{id}/responded", h.MarkResponded)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.ListCampaigns)
				r.Post("/", h.CreateCampaign)
				r.Get("/{id}", h.GetCampaign)
				r.Delete("/{id}", h.DeleteCampaign)
				r.Post("/{id}/generate", h.GenerateEmails)
				r.Post("/{id}/send", h.SendCampaign)
			})
		})
	})

	return r
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.Log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
