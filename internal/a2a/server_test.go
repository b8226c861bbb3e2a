package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(handler Handler) (*Server, *httptest.Server) {
	s := NewServer(ServerConfig{
		Name:               "path-computer",
		Version:            "1.0.0",
		Description:        "computes protection paths",
		DefaultTaskTimeout:  time.Second,
	}, nil, nil)
	s.Register("compute_path", handler, Capability{Name: "compute_path", Description: "compute a protection path"})
	ts := httptest.NewServer(s)
	return s, ts
}

func TestSyncTaskCompletes(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return map[string]any{"path_found": true}, nil
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-1", TaskType: "compute_path", Payload: map[string]any{}}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var taskResp TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&taskResp))
	assert.Equal(t, TaskCompleted, taskResp.Status)
	assert.Equal(t, true, taskResp.Result["path_found"])
}

func TestSyncTaskUnsupportedTaskType(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, nil
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-2", TaskType: "unknown_task", Payload: map[string]any{}}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSyncTaskTimeout(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-3", TaskType: "compute_path", Payload: map[string]any{}, TimeoutSeconds: 0}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestSyncTaskHandlerErrorReturns500(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, context.DeadlineExceeded
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-err", TaskType: "compute_path", Payload: map[string]any{}}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var taskResp TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&taskResp))
	assert.Equal(t, TaskFailed, taskResp.Status)
}

func TestSyncTaskHandlerPanicRecoveredAs500(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		panic("boom")
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-panic", TaskType: "compute_path", Payload: map[string]any{}}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var taskResp TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&taskResp))
	assert.Equal(t, TaskFailed, taskResp.Status)
	assert.Contains(t, taskResp.Error, "handler panic")
}

func TestSyncTaskIdempotentReplay(t *testing.T) {
	calls := 0
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"calls": calls}, nil
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-4", TaskType: "compute_path", Payload: map[string]any{}}
	body, _ := json.Marshal(req)

	resp1, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var r1 TaskResponse
	require.NoError(t, json.NewDecoder(resp1.Body).Decode(&r1))
	resp1.Body.Close()

	resp2, err := http.Post(ts.URL+"/a2a/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var r2 TaskResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&r2))
	resp2.Body.Close()

	assert.Equal(t, 1, calls)
	assert.Equal(t, r1.Result["calls"], r2.Result["calls"])
}

func TestAsyncTaskAcceptedThenStatusQueryable(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return map[string]any{"done": true}, nil
	})
	defer ts.Close()

	req := TaskRequest{TaskID: "t-5", TaskType: "compute_path", Payload: map[string]any{}}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/a2a/tasks/async", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		statusResp, err := http.Get(ts.URL + "/a2a/tasks/t-5/status")
		if err != nil {
			return false
		}
		defer statusResp.Body.Close()
		var status struct {
			Status TaskState `json:"status"`
		}
		_ = json.NewDecoder(statusResp.Body).Decode(&status)
		return status.Status == TaskCompleted
	}, time.Second, 10*time.Millisecond)
}

func TestTaskStatusNotFound(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, nil
	})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/a2a/tasks/does-not-exist/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndReady(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, nil
	})
	defer ts.Close()

	healthResp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer healthResp.Body.Close()
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)

	readyResp, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	defer readyResp.Body.Close()
	assert.Equal(t, http.StatusOK, readyResp.StatusCode)
}

func TestAgentCard(t *testing.T) {
	_, ts := newTestServer(func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, nil
	})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/.well-known/agent.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	var card AgentCard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, "path-computer", card.Name)
	assert.Contains(t, card.SupportedTaskTypes, "compute_path")
}
