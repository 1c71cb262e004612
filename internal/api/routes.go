package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Rate limiter for DELETE operations: 100 deletes max, refill 1 per 100ms.
	// Allows a burst of 100 deletes, then a sustained rate of 10/second.
	deleteRateLimiter := NewDeleteRateLimiter(100, 100*time.Millisecond)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/health", h.Health)
		r.Post("/inquiries", h.CreateInquiry)

		r.Route("/inquiries/{id}", func(r chi.Router) {
			r.Use(h.InquiryCtx)
			r.Get("/", h.GetInquiry)
			r.Get("/questions/{number}", h.GetQuestion)
			r.Put("/answers/{number}", h.SubmitAnswer)
			r.Post("/projection", h.TriggerProjection)
			r.Get("/projection", h.GetProjection)
			r.Get("/status", h.GetStatus)
		})

		// Admin routes (auth required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(h.adminKey))
			r.Get("/inquiries", h.AdminListInquiries)
			r.Get("/stats", h.AdminStats)
			// DELETE has additional rate limiting to prevent abuse
			r.With(deleteRateLimiter.Middleware).Delete("/inquiries/{id}", h.AdminDeleteInquiry)
		})
	})

	return r
}
