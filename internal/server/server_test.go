package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"minebot/src/activity"
	"minebot/src/bot"
	"minebot/src/llm/action"
	"minebot/src/model"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDecider struct{}

func (staticDecider) Decide(context.Context, string, string) action.Decision {
	return action.Decision{
		Suggestion: model.ActionSuggestion{Action: model.ActionMine, Reason: "Gather resources"},
		Source:     model.SourceFallback,
	}
}

func newTestServer(t *testing.T, rps float64, burst int) (*Server, *bot.Runner) {
	t.Helper()
	runner, err := bot.NewRunner(staticDecider{}, activity.NewLog(zerolog.Nop()), activity.NewMemory(nil), bot.Options{
		Server:        "mc.example.net",
		Goal:          "Explore and survive",
		Situations:    []string{"Found a village nearby"},
		CycleInterval: time.Hour,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	srv := New(context.Background(), runner, Options{
		BotName:        "TestBot",
		Server:         "mc.example.net",
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		Logger:         zerolog.Nop(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
	})
	return srv, runner
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStartStopStatus(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)

	rec := do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "🔴 OFFLINE", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/start", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "🟢 Bot started", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/start", "")
	assert.Equal(t, "⚪ Bot already running", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "🟢 ONLINE", rec.Body.String())

	require.Eventually(t, func() bool { return runner.Memory().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec = do(t, srv, http.MethodGet, "/stop", "")
	assert.Equal(t, "🔴 Bot stopped", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "🔴 OFFLINE", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/stop", "")
	assert.Equal(t, "🔴 Bot stopped", rec.Body.String())
}

func TestGoalUpdate(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)

	rec := do(t, srv, http.MethodPost, "/goal", `{"goal": "Mine diamonds"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Goal updated", rec.Body.String())
	assert.Equal(t, "Mine diamonds", runner.Goal())

	rec = do(t, srv, http.MethodPost, "/goal", `{}`)
	assert.Equal(t, "Goal updated", rec.Body.String())
	assert.Equal(t, "Explore", runner.Goal())

	rec = do(t, srv, http.MethodPost, "/goal", `{"goal": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error updating goal", rec.Body.String())
	assert.Equal(t, "Explore", runner.Goal())
}

func TestGoalRejectsNonObjectBody(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)
	runner.SetGoal("Mine diamonds")

	for _, body := range []string{`null`, `[1]`, `"Build"`} {
		rec := do(t, srv, http.MethodPost, "/goal", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Error updating goal", rec.Body.String(), body)
	}
	assert.Equal(t, "Mine diamonds", runner.Goal())
}

func TestGetLogsEscapesAndClears(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)

	rec := do(t, srv, http.MethodGet, "/get_logs", "")
	assert.Contains(t, rec.Body.String(), "No logs yet")

	for i := 0; i < 25; i++ {
		runner.Log().Success(fmt.Sprintf("entry %d", i))
	}
	runner.Log().Info("<script>alert(1)</script>")

	rec = do(t, srv, http.MethodGet, "/get_logs", "")
	body := rec.Body.String()
	assert.Equal(t, 20, strings.Count(body, `class="log-entry"`))
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "entry 5<")
	assert.Contains(t, body, "entry 6<")
	assert.Contains(t, body, "entry 24")
	assert.Contains(t, body, `class="log-success"`)

	rec = do(t, srv, http.MethodGet, "/clear_logs", "")
	assert.Equal(t, "Logs cleared", rec.Body.String())
	assert.Equal(t, 0, runner.Log().Len())
}

func TestDashboard(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)
	runner.Log().Warning("careful <b>now</b>")

	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "TestBot")
	assert.Contains(t, body, "mc.example.net")
	assert.Contains(t, body, "Explore and survive")
	assert.Contains(t, body, "🔴 OFFLINE")
	assert.Contains(t, body, "careful &lt;b&gt;now&lt;/b&gt;")
}

func TestHealth(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)
	require.NoError(t, runner.RunCycle(context.Background()))

	rec := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "stopped", h["status"])
	assert.EqualValues(t, 1, h["memory_entries"])
	assert.EqualValues(t, runner.Log().Len(), h["logs_count"])
	assert.NotEmpty(t, h["timestamp"])
}

func TestAPIStatusAndMemory(t *testing.T) {
	srv, runner := newTestServer(t, 100, 50)
	for i := 0; i < 3; i++ {
		require.NoError(t, runner.RunCycle(context.Background()))
	}

	rec := do(t, srv, http.MethodGet, "/api/status", "")
	var st model.Status
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Active)
	assert.Equal(t, int64(3), st.Cycle)

	rec = do(t, srv, http.MethodGet, "/api/memory?limit=2", "")
	var records []model.MemoryRecord
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].Cycle)
	assert.Equal(t, model.ActionMine, records[1].Action.Action)

	rec = do(t, srv, http.MethodGet, "/api/memory?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestControlEndpointsAreThrottled(t *testing.T) {
	srv, _ := newTestServer(t, 0.001, 2)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/clear_logs", "").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/clear_logs", "").Code)

	rec := do(t, srv, http.MethodGet, "/clear_logs", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", rec.Body.String())

	// read-only routes are not throttled
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/status", "").Code)
}

// stubMirror stands in for the Redis memory mirror.
type stubMirror struct {
	pingErr   error
	recentErr error
	records   []model.MemoryRecord
	session   string
}

func (m *stubMirror) Ping(context.Context) error { return m.pingErr }

func (m *stubMirror) Recent(_ context.Context, session string, _ int) ([]model.MemoryRecord, error) {
	m.session = session
	return m.records, m.recentErr
}

func newMirroredServer(t *testing.T, mirror Mirror) (*Server, *bot.Runner) {
	t.Helper()
	_, runner := newTestServer(t, 100, 50)
	return New(context.Background(), runner, Options{
		BotName:        "TestBot",
		Server:         "mc.example.net",
		RateLimitRPS:   100,
		RateLimitBurst: 50,
		Mirror:         mirror,
		Logger:         zerolog.Nop(),
	}), runner
}

func healthOf(t *testing.T, srv *Server) map[string]any {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var h map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &h))
	return h
}

func TestHealthReportsMirror(t *testing.T) {
	srv, _ := newTestServer(t, 100, 50)
	assert.NotContains(t, healthOf(t, srv), "redis")

	srv, _ = newMirroredServer(t, &stubMirror{})
	assert.Equal(t, "ok", healthOf(t, srv)["redis"])

	srv, _ = newMirroredServer(t, &stubMirror{pingErr: errors.New("connection refused")})
	h := healthOf(t, srv)
	assert.Equal(t, "unavailable", h["redis"])
	assert.Equal(t, "stopped", h["status"])
}

func TestAPIMemoryReadsMirrorForActiveSession(t *testing.T) {
	mirror := &stubMirror{records: []model.MemoryRecord{{Cycle: 42, Situation: "from redis"}}}
	srv, runner := newMirroredServer(t, mirror)

	// idle: no session, local memory is served
	require.NoError(t, runner.RunCycle(context.Background()))
	rec := do(t, srv, http.MethodGet, "/api/memory", "")
	var records []model.MemoryRecord
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].Cycle)

	require.NoError(t, runner.Start(context.Background()))
	session := runner.Status().Session
	require.NotEmpty(t, session)

	rec = do(t, srv, http.MethodGet, "/api/memory?limit=5", "")
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].Cycle)
	assert.Equal(t, session, mirror.session)
}

func TestAPIMemoryFallsBackWhenMirrorFails(t *testing.T) {
	srv, runner := newMirroredServer(t, &stubMirror{recentErr: errors.New("timeout")})
	require.NoError(t, runner.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.Memory().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec := do(t, srv, http.MethodGet, "/api/memory", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []model.MemoryRecord
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Found a village nearby", records[0].Situation)
}
