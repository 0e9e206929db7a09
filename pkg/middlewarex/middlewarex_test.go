package middlewarex_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
	"cs2arb/pkg/middlewarex"
)

func TestLoggerCarriesRequestFields(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middlewarex.TraceID(middlewarex.Logger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextx.LoggerFromContextOrDefault(r.Context()).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("X-Trace-Id", "trace-1")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	rq.Equal(http.StatusNoContent, rec.Code)
	rq.Contains(buf.String(), `"`+logx.FieldTraceID+`":"trace-1"`)
	rq.Contains(buf.String(), `"`+logx.FieldURL+`":"/v1/stats"`)
	rq.Contains(buf.String(), `"`+logx.FieldHTTPMethod+`":"GET"`)
}

func TestRecoveryLogsPanicWithRequestLogger(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middlewarex.Logger(base)(middlewarex.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trades", nil))

	rq.Equal(http.StatusInternalServerError, rec.Code)
	rq.Contains(buf.String(), "panic in handler")
	rq.Contains(buf.String(), `"`+logx.FieldURL+`":"/v1/trades"`)
}
