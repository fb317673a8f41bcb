package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestReadyEndpointNotReady(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeStatus(t, rec)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks, "_readiness")
}

func TestReadyEndpointAfterSetReady(t *testing.T) {
	h := New()
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeStatus(t, rec).Status)
}

func TestLiveEndpointReportsFailure(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-down", time.Second, func(context.Context) error {
		return errors.New("component broken")
	})

	c := h.live[0]
	for i := 0; i < failureThreshold; i++ {
		c.run(context.Background())
	}

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeStatus(t, rec)
	assert.Equal(t, "component broken", resp.Checks["always-down"])
}

func TestFailureThresholdPreventsFlapping(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		return errors.New("blip")
	})
	c := h.live[0]

	c.healthy.Store(true)
	for i := 0; i < failureThreshold-1; i++ {
		c.run(context.Background())
		assert.True(t, c.healthy.Load(), "should stay healthy until threshold")
	}
	c.run(context.Background())
	assert.False(t, c.healthy.Load())
}

func TestCheckRecovers(t *testing.T) {
	fail := true
	h := New()
	h.AddReadinessCheck("store", time.Second, func(context.Context) error {
		if fail {
			return errors.New("unreachable")
		}
		return nil
	})
	h.SetReady(true)
	c := h.readyc[0]

	for i := 0; i < failureThreshold; i++ {
		c.run(context.Background())
	}
	assert.False(t, h.IsReady())

	fail = false
	c.run(context.Background())
	assert.True(t, h.IsReady())
}

func TestStartAndStop(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddLivenessCheck("tick", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check never ran")
	}
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
