package middlewarex

import (
	"log/slog"
	"net/http"

	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Logger кладёт в контекст логгер запроса с trace id, методом и URL.
// Ставится после TraceID.
func Logger(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			l := base.With(
				slog.String(logx.FieldHTTPMethod, r.Method),
				slog.String(logx.FieldURL, r.URL.Path),
			)
			if traceID, err := contextx.TraceIDFromContext(ctx); err == nil {
				l = l.With(slog.String(logx.FieldTraceID, traceID.String()))
			}

			next.ServeHTTP(w, r.WithContext(contextx.WithLogger(ctx, l)))
		})
	}
}
