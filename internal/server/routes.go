package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cs2arb/internal/metrics"
	"cs2arb/pkg/httpx/reply"
	"cs2arb/pkg/logx"
	"cs2arb/pkg/middlewarex"
)

// NewRouter собирает chi-роутер со стандартной цепочкой middleware.
func NewRouter(s Server, log *slog.Logger, logFieldMaxLen int) http.Handler {
	r := chi.NewRouter()

	masker := logx.NewSensitiveDataMasker()

	r.Use(
		middlewarex.Recovery,
		middlewarex.TraceID,
		middlewarex.Logger(log),
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
		metrics.Middleware,
	)

	s.RegisterRoutes(r)

	return r
}

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/signals", func(r chi.Router) {
			r.Get("/", handler(s.getV1Signals))
			r.Post("/deactivate-stale", handler(s.postV1SignalsDeactivateStale))
			r.Get("/{id}", handler(s.getV1Signal))
			r.Post("/{id}/acted-on", handler(s.postV1SignalActedOn))
		})

		r.Get("/items/{name}", handler(s.getV1Item))
		r.Get("/stats", handler(s.getV1Stats))

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", handler(s.getV1Trades))
			r.Post("/", handler(s.postV1Trades))
			r.Get("/profit", handler(s.getV1TradesProfit))
			r.Get("/{id}", handler(s.getV1Trade))
			r.Patch("/{id}/sell", handler(s.patchV1TradeSell))
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", handler(s.getV1Watchlist))
			r.Post("/", handler(s.postV1Watchlist))
			r.Delete("/{name}", handler(s.deleteV1Watchlist))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, toFailure(err))
		}
	}
}
