package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHandler(
	pollHandler *PollHandler,
	voteHandler *VoteHandler,
	receiptHandler *ReceiptHandler,
	auditHandler *AuditHandler,
	auth *AuthMiddleware,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", pollHandler.ListPolls)
			r.Get("/{id}", pollHandler.GetPoll)
			r.With(auth.OptionalAuth).Get("/{id}/results", pollHandler.GetResults)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Post("/", pollHandler.CreatePoll)
				r.Post("/{id}/votes", voteHandler.CastVote)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Delete("/{id}", pollHandler.PurgePoll)
				r.Get("/{id}/integrity", auditHandler.ValidateChain)
			})
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Get("/{code}", receiptHandler.VerifyReceipt)
		})
	})

	return r
}
