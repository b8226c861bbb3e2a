package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/netguard/fabric/internal/ferrors"
	"github.com/netguard/fabric/internal/telemetry"
)

// Handler executes one task-type. It returns the result payload on success;
// a non-nil error is recorded as the task's failure string (status=failed),
// never as an HTTP-level error, so downstream-failure and contract-violation
// kinds stay distinguishable to the caller per the error taxonomy.
type Handler func(ctx context.Context, payload map[string]any) (map[string]any, error)

// ServerConfig names the agent advertised in health checks, capability
// cards, and task responses.
type ServerConfig struct {
	Name               string
	Version            string
	Description        string
	URL                string
	Tags               []string
	DefaultTaskTimeout time.Duration
}

// Server implements the A2A HTTP surface: task submission (sync and async),
// status/result lookup, capability discovery, health, and readiness.
//
// Idempotency is kept in-process only: a completed task-ID's response is
// served from taskStore on a repeat POST, but the store does not survive a
// restart. A durable keyed cache is the correct production answer and is an
// explicit open question, not a gap introduced here.
type Server struct {
	cfg      ServerConfig
	handlers map[string]Handler
	logger   telemetry.Logger

	capabilities []Capability

	mu    sync.Mutex
	tasks map[string]*TaskResponse

	ready func() error
	mux   *http.ServeMux
}

// NewServer constructs a Server. ready, when non-nil, is consulted by
// GET /ready; a non-nil return marks the agent not ready (503).
func NewServer(cfg ServerConfig, logger telemetry.Logger, ready func() error) *Server {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	s := &Server{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		logger:   logger,
		tasks:    make(map[string]*TaskResponse),
		ready:    ready,
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /a2a/tasks", s.handleSyncTask)
	s.mux.HandleFunc("POST /a2a/tasks/async", s.handleAsyncTask)
	s.mux.HandleFunc("GET /a2a/tasks/{id}/status", s.handleTaskStatus)
	s.mux.HandleFunc("GET /a2a/tasks/{id}", s.handleTaskResult)
	s.mux.HandleFunc("GET /.well-known/agent.json", s.handleAgentCard)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	return s
}

// Register binds a task-type to the handler that executes it and publishes
// a capability entry for it on the agent card.
func (s *Server) Register(taskType string, handler Handler, cap Capability) {
	s.handlers[taskType] = handler
	s.capabilities = append(s.capabilities, cap)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleSyncTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	handler, ok := s.handlers[req.TaskType]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(&ferrors.ContractViolationError{
			TaskType: req.TaskType, Reason: "unsupported task-type",
		}))
		return
	}

	if existing, done := s.completedResponse(req.TaskID); done {
		writeTaskResponse(w, existing)
		return
	}

	resp := s.runTask(r.Context(), req, handler)
	writeTaskResponse(w, resp)
}

func (s *Server) handleAsyncTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	handler, ok := s.handlers[req.TaskType]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(&ferrors.ContractViolationError{
			TaskType: req.TaskType, Reason: "unsupported task-type",
		}))
		return
	}

	if _, done := s.completedResponse(req.TaskID); done {
		writeJSON(w, http.StatusAccepted, AsyncAccepted{TaskID: req.TaskID, Status: "accepted"})
		return
	}

	s.recordPending(req)
	go func() {
		// Detached from the request context deliberately: the HTTP response
		// has already been written by the time this runs.
		ctx := context.Background()
		resp := s.runTask(ctx, req, handler)
		if req.CallbackURL != "" {
			s.deliverCallback(req.CallbackURL, resp)
		}
	}()

	writeJSON(w, http.StatusAccepted, AsyncAccepted{TaskID: req.TaskID, Status: "accepted"})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, ok := s.lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	status, _ := taskResponseStatus(resp)
	writeJSON(w, status, struct {
		TaskID   string    `json:"task_id"`
		Status   TaskState `json:"status"`
		Progress int       `json:"progress,omitempty"`
	}{resp.TaskID, resp.Status, resp.Progress})
}

func (s *Server) handleTaskResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, ok := s.lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeTaskResponse(w, resp)
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	taskTypes := make([]string, 0, len(s.handlers))
	for t := range s.handlers {
		taskTypes = append(taskTypes, t)
	}
	card := AgentCard{
		Name:               s.cfg.Name,
		Version:            s.cfg.Version,
		Description:        s.cfg.Description,
		URL:                s.cfg.URL,
		Protocol:           "a2a",
		Capabilities:       s.capabilities,
		SupportedTaskTypes: taskTypes,
		Tags:               s.cfg.Tags,
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		AgentName: s.cfg.Name,
		Version:   s.cfg.Version,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "reason": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

const timeoutMarker = "__a2a_timeout__"

func (s *Server) runTask(ctx context.Context, req TaskRequest, handler Handler) *TaskResponse {
	timeout := s.cfg.DefaultTaskTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	type outcome struct {
		result map[string]any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{nil, fmt.Errorf("handler panic: %v", r)}
			}
		}()
		result, err := handler(taskCtx, req.Payload)
		done <- outcome{result, err}
	}()

	resp := &TaskResponse{
		TaskID:       req.TaskID,
		TaskType:     req.TaskType,
		AgentName:    s.cfg.Name,
		AgentVersion: s.cfg.Version,
		StartedAt:    started,
	}

	select {
	case <-taskCtx.Done():
		resp.Status = TaskFailed
		resp.Error = timeoutMarker
	case o := <-done:
		completed := time.Now()
		resp.CompletedAt = &completed
		if o.err != nil {
			resp.Status = TaskFailed
			resp.Error = o.err.Error()
		} else {
			resp.Status = TaskCompleted
			resp.Result = o.result
			resp.Progress = 100
		}
	}

	s.store(resp)
	return resp
}

func (s *Server) recordPending(req TaskRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[req.TaskID] = &TaskResponse{
		TaskID:       req.TaskID,
		TaskType:     req.TaskType,
		Status:       TaskPending,
		AgentName:    s.cfg.Name,
		AgentVersion: s.cfg.Version,
		StartedAt:    time.Now(),
	}
}

func (s *Server) store(resp *TaskResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[resp.TaskID] = resp
}

func (s *Server) lookup(id string) (*TaskResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.tasks[id]
	return resp, ok
}

// completedResponse returns the cached response for taskID if it already
// reached a terminal state, implementing the idempotency contract: a
// repeat submission of the same task-ID returns the cached result rather
// than re-executing the handler.
func (s *Server) completedResponse(taskID string) (*TaskResponse, bool) {
	resp, ok := s.lookup(taskID)
	if !ok {
		return nil, false
	}
	switch resp.Status {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return resp, true
	default:
		return nil, false
	}
}

func (s *Server) deliverCallback(url string, resp *TaskResponse) {
	_, displayErr := taskResponseStatus(resp)
	out := *resp
	out.Error = displayErr

	body, err := json.Marshal(&out)
	if err != nil {
		s.logger.Error(context.Background(), "marshal callback body", "task_id", resp.TaskID, "error", err)
		return
	}
	httpResp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Warn(context.Background(), "callback delivery failed", "task_id", resp.TaskID, "url", url, "error", err)
		return
	}
	httpResp.Body.Close()
}

func decodeRequest(w http.ResponseWriter, r *http.Request, req *TaskRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(&ferrors.ContractViolationError{
			TaskType: "", Reason: "malformed request body: " + err.Error(),
		}))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// taskResponseStatus maps a task's terminal state to the HTTP status it is
// reported under, and the human-readable error string (the internal timeout
// marker is never written to the wire): 504 on timeout, 500 on any other
// failure (including a recovered handler panic), 200 on completion.
func taskResponseStatus(resp *TaskResponse) (int, string) {
	if resp.Status != TaskFailed {
		return http.StatusOK, resp.Error
	}
	if resp.Error == timeoutMarker {
		return http.StatusGatewayTimeout, "task timeout"
	}
	return http.StatusInternalServerError, resp.Error
}

// writeTaskResponse writes resp with the status taskResponseStatus assigns
// it, substituting the display error without mutating the cached record.
func writeTaskResponse(w http.ResponseWriter, resp *TaskResponse) {
	status, displayErr := taskResponseStatus(resp)
	out := *resp
	out.Error = displayErr
	writeJSON(w, status, &out)
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
