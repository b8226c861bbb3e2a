package a2a

import "time"

// TaskState is the lifecycle state of an A2A task.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
	TaskCancelled TaskState = "cancelled"
)

// TaskRequest is the body of POST /a2a/tasks and /a2a/tasks/async.
type TaskRequest struct {
	TaskID        string          `json:"task_id"`
	TaskType      string          `json:"task_type"`
	IncidentID    string          `json:"incident_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       map[string]any  `json:"payload"`
	Priority      int             `json:"priority,omitempty"`
	TimeoutSeconds int            `json:"timeout_seconds,omitempty"`
	CallbackURL   string          `json:"callback_url,omitempty"`
}

// TaskResponse is returned by the synchronous endpoint, by the status and
// result lookups, and POSTed to a callback URL for async tasks.
type TaskResponse struct {
	TaskID      string         `json:"task_id"`
	TaskType    string         `json:"task_type"`
	Status      TaskState      `json:"status"`
	Progress    int            `json:"progress,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	AgentName   string         `json:"agent_name"`
	AgentVersion string        `json:"agent_version"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// AsyncAccepted is the 202 body returned by /a2a/tasks/async.
type AsyncAccepted struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// Capability describes one task-type an agent can execute.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
}

// AgentCard is the capability document served at /.well-known/agent.json.
type AgentCard struct {
	Name               string       `json:"name"`
	Version            string       `json:"version"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Protocol           string       `json:"protocol"`
	Capabilities       []Capability `json:"capabilities"`
	SupportedTaskTypes []string     `json:"supported_task_types"`
	Tags               []string     `json:"tags,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	AgentName string    `json:"agent_name"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
