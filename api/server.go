/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (carries the request ID)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the punch UI

ROUTE GROUPS:
  /healthz              Liveness
  /api/people/*         Registration and punching
  /api/punches          Raw punch log
  /api/reports/*        Hours and balance
  /api/export/*         Spreadsheet downloads
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.Register)
			r.Get("/{id}", h.GetPerson)
			r.Get("/{id}/punches", h.GetDay)
			r.Post("/{id}/punches", h.Punch)
		})

		r.Get("/punches", h.ListPunches)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/hours", h.HoursReport)
			r.Get("/balance", h.BalanceReport)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/punches.xlsx", h.ExportXLSX)
			r.Get("/punches.csv", h.ExportCSV)
		})
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
