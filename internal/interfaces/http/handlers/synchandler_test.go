package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "opsdesk/internal/application/sync"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockSyncService struct {
	triggerSyncFn   func(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error)
	getSyncStatusFn func(ctx context.Context) (appsync.Status, error)
	listRunsFn      func(ctx context.Context, limit int) ([]*syncrun.SyncRun, error)
	forceStopFn     func() bool
}

func (m *mockSyncService) TriggerSync(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error) {
	if m.triggerSyncFn != nil {
		return m.triggerSyncFn(ctx, kind, opts)
	}
	return appsync.RunSummary{}, nil
}

func (m *mockSyncService) GetSyncStatus(ctx context.Context) (appsync.Status, error) {
	if m.getSyncStatusFn != nil {
		return m.getSyncStatusFn(ctx)
	}
	return appsync.Status{}, nil
}

func (m *mockSyncService) ListRuns(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockSyncService) ForceStop() bool {
	if m.forceStopFn != nil {
		return m.forceStopFn()
	}
	return false
}

func setupHandler(service *mockSyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSyncHandler(service, testLogger())

	engine := gin.New()
	engine.POST("/api/sync", handler.TriggerSync)
	engine.GET("/api/sync/status", handler.GetStatus)
	engine.GET("/api/sync/runs", handler.ListRuns)
	engine.POST("/api/sync/stop", handler.StopSync)
	return engine
}

func performJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func completedRun(t *testing.T) *syncrun.SyncRun {
	t.Helper()

	started := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	completed := started.Add(10 * time.Minute)
	run, err := syncrun.Reconstruct(
		1, "run-uid-1", syncrun.KindIncremental, syncrun.StatusCompleted,
		started, &completed,
		syncrun.Counts{Technicians: 3, Tickets: 42, Requesters: 5, Satisfaction: 2, Enriched: 7, Failed: 1},
		"",
	)
	require.NoError(t, err)
	return run
}

func TestTriggerSync_Accepted(t *testing.T) {
	triggered := make(chan syncrun.Kind, 1)
	service := &mockSyncService{
		triggerSyncFn: func(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error) {
			triggered <- kind
			return appsync.RunSummary{Kind: kind}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{"kind": "full"})

	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case kind := <-triggered:
		assert.Equal(t, syncrun.KindFull, kind)
	case <-time.After(2 * time.Second):
		t.Fatal("sync was never triggered")
	}
}

func TestTriggerSync_DefaultsToIncremental(t *testing.T) {
	triggered := make(chan syncrun.Kind, 1)
	service := &mockSyncService{
		triggerSyncFn: func(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error) {
			triggered <- kind
			return appsync.RunSummary{Kind: kind}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{})

	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case kind := <-triggered:
		assert.Equal(t, syncrun.KindIncremental, kind)
	case <-time.After(2 * time.Second):
		t.Fatal("sync was never triggered")
	}
}

func TestTriggerSync_ConflictWhenRunning(t *testing.T) {
	service := &mockSyncService{
		getSyncStatusFn: func(ctx context.Context) (appsync.Status, error) {
			return appsync.Status{IsRunning: true}, nil
		},
		triggerSyncFn: func(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error) {
			t.Error("trigger should not be called while a run is in flight")
			return appsync.RunSummary{}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{"kind": "incremental"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTriggerSync_RangeRequiresBounds(t *testing.T) {
	engine := setupHandler(&mockSyncService{})

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{
		"kind":        "range",
		"range_start": "2025-06-01T00:00:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerSync_RangePassesBounds(t *testing.T) {
	captured := make(chan appsync.TriggerOptions, 1)
	service := &mockSyncService{
		triggerSyncFn: func(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error) {
			captured <- opts
			return appsync.RunSummary{Kind: kind}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{
		"kind":           "range",
		"range_start":    "2025-06-01T00:00:00Z",
		"range_end":      "2025-06-10T00:00:00Z",
		"force_reenrich": true,
	})

	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case opts := <-captured:
		require.NotNil(t, opts.RangeStart)
		require.NotNil(t, opts.RangeEnd)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *opts.RangeStart)
		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), *opts.RangeEnd)
		assert.True(t, opts.ForceReenrich)
	case <-time.After(2 * time.Second):
		t.Fatal("sync was never triggered")
	}
}

func TestTriggerSync_InvalidTimestamp(t *testing.T) {
	engine := setupHandler(&mockSyncService{})

	w := performJSON(t, engine, http.MethodPost, "/api/sync", map[string]any{
		"kind":        "range",
		"range_start": "not-a-timestamp",
		"range_end":   "2025-06-10T00:00:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus(t *testing.T) {
	last := time.Date(2025, 6, 15, 11, 10, 0, 0, time.UTC)
	service := &mockSyncService{
		getSyncStatusFn: func(ctx context.Context) (appsync.Status, error) {
			return appsync.Status{
				IsRunning:    true,
				LastSyncTime: &last,
				Progress: &appsync.Progress{
					CurrentStep: "tickets",
					StepNumber:  2,
					TotalSteps:  5,
					Percent:     20,
				},
			}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodGet, "/api/sync/status", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			IsRunning    bool    `json:"is_running"`
			LastSyncTime *string `json:"last_sync_time"`
			Progress     *struct {
				CurrentStep string `json:"current_step"`
				Percent     int    `json:"percent"`
			} `json:"progress"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Data.IsRunning)
	require.NotNil(t, body.Data.LastSyncTime)
	assert.Equal(t, "2025-06-15T11:10:00Z", *body.Data.LastSyncTime)
	require.NotNil(t, body.Data.Progress)
	assert.Equal(t, "tickets", body.Data.Progress.CurrentStep)
	assert.Equal(t, 20, body.Data.Progress.Percent)
}

func TestListRuns(t *testing.T) {
	var gotLimit int
	service := &mockSyncService{
		listRunsFn: func(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
			gotLimit = limit
			return []*syncrun.SyncRun{completedRun(t)}, nil
		},
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodGet, "/api/sync/runs?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)

	var body struct {
		Data []struct {
			RunUID      string `json:"run_uid"`
			Status      string `json:"status"`
			TicketCount int    `json:"ticket_count"`
			FailedCount int    `json:"failed_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "run-uid-1", body.Data[0].RunUID)
	assert.Equal(t, "completed", body.Data[0].Status)
	assert.Equal(t, 42, body.Data[0].TicketCount)
	assert.Equal(t, 1, body.Data[0].FailedCount)
}

func TestListRuns_InvalidLimit(t *testing.T) {
	engine := setupHandler(&mockSyncService{})

	w := performJSON(t, engine, http.MethodGet, "/api/sync/runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, engine, http.MethodGet, "/api/sync/runs?limit=101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStopSync(t *testing.T) {
	service := &mockSyncService{
		forceStopFn: func() bool { return true },
	}
	engine := setupHandler(service)

	w := performJSON(t, engine, http.MethodPost, "/api/sync/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStopSync_NothingRunning(t *testing.T) {
	engine := setupHandler(&mockSyncService{})

	w := performJSON(t, engine, http.MethodPost, "/api/sync/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
