package reportinghttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the sales dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(30, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(limiter)
		r.Get("/", h.handleDashboard)
		r.Get("/summary", h.handleSummary)
		r.Get("/top-customers", h.handleTopCustomers)
		r.Get("/target-selling", h.handleTargetSummary)
	})
}
