package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerEmitsCloudSeverity(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(Config{Component: "billing-api", Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Warn("provider slow")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARNING", entry["severity"])
	require.Equal(t, "billing-api", entry["component"])
	require.Equal(t, "provider slow", entry["message"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(Config{Level: "chatty"})
	require.Error(t, err)
}

func TestStepTagsLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	Step(zap.New(core), StepCustomerSearch).Info("lookup failed")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, StepCustomerSearch, entries[0].ContextMap()["step"])

	// nil falls back to a no-op logger
	require.NotPanics(t, func() { Step(nil, StepWebhook).Info("ignored") })
}

func TestRequestLoggerStoresLoggerOnContext(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	var sawLogger bool
	handler := chimw.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = FromContext(r.Context())
		StepFrom(r.Context(), nil, StepUpgrade).Info("changing plan")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/change-subscription", nil))

	require.True(t, sawLogger)
	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, StepUpgrade, entries[0].ContextMap()["step"])
	require.NotEmpty(t, entries[0].ContextMap()["request_id"])
	require.Equal(t, "request completed", entries[1].Message)
	require.EqualValues(t, http.StatusTeapot, entries[1].ContextMap()["status"])
}
