package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/config"
)

func TestClientSendTaskSuccess(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := TaskResponse{TaskID: req.TaskID, TaskType: req.TaskType, Status: TaskCompleted, Result: map[string]any{"ok": true}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer backend.Close()

	client := NewClient(config.Registry{"service-impact": backend.URL})
	resp, err := client.SendTask(context.Background(), "service-impact", TaskRequest{TaskID: "t-1", TaskType: "assess_impact"})
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, resp.Status)
	assert.Equal(t, true, resp.Result["ok"])
}

func TestClientSendTaskRetriesTransientFailures(t *testing.T) {
	attempts := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req TaskRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := TaskResponse{TaskID: req.TaskID, Status: TaskCompleted}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer backend.Close()

	client := NewClient(config.Registry{"tunnel-provisioner": backend.URL}, WithRetryConfig(Config{
		MaxAttempts: 5, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, BackoffMultiplier: 2,
	}))
	resp, err := client.SendTask(context.Background(), "tunnel-provisioner", TaskRequest{TaskID: "t-2"})
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, resp.Status)
	assert.Equal(t, 3, attempts)
}

func TestClientSendTaskUnknownAgent(t *testing.T) {
	client := NewClient(config.Registry{})
	_, err := client.SendTask(context.Background(), "nonexistent", TaskRequest{TaskID: "t-3"})
	assert.Error(t, err)
}

func TestClientAgentCardIsCached(t *testing.T) {
	requests := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		card := AgentCard{Name: "path-computer", SupportedTaskTypes: []string{"compute_path"}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(card)
	}))
	defer backend.Close()

	client := NewClient(config.Registry{"path-computer": backend.URL})

	card1, err := client.AgentCard(context.Background(), "path-computer")
	require.NoError(t, err)
	card2, err := client.AgentCard(context.Background(), "path-computer")
	require.NoError(t, err)

	assert.Equal(t, card1, card2)
	assert.Equal(t, 1, requests)
}
