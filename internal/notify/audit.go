package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/netguard/fabric/internal/store"
)

// auditLogCap bounds how many events are retained per incident; older
// entries fall off the end of the list.
const auditLogCap = 500

// AuditEventType enumerates the activities tracked across the fabric for
// compliance and timeline reconstruction.
type AuditEventType string

const (
	AuditIncidentCreated       AuditEventType = "incident_created"
	AuditAlertCorrelated       AuditEventType = "alert_correlated"
	AuditServiceImpactAssessed AuditEventType = "service_impact_assessed"
	AuditPathComputed          AuditEventType = "path_computed"
	AuditTunnelProvisioned     AuditEventType = "tunnel_provisioned"
	AuditTrafficSteered        AuditEventType = "traffic_steered"
	AuditSLARecovered          AuditEventType = "sla_recovered"
	AuditRestorationComplete   AuditEventType = "restoration_complete"
	AuditEscalation            AuditEventType = "escalation"
	AuditNotificationSent      AuditEventType = "notification_sent"
	AuditError                 AuditEventType = "error"
	AuditStateChange           AuditEventType = "state_change"
)

// DecisionType records how a logged action was decided, for compliance
// reporting on how much automation acted without human input.
type DecisionType string

const (
	DecisionRuleBased   DecisionType = "rule_based"
	DecisionLLMAssisted DecisionType = "llm_assisted"
	DecisionHuman       DecisionType = "human"
)

// AuditEvent is one entry in an incident's audit trail.
type AuditEvent struct {
	EventID           string         `json:"event_id"`
	Timestamp         time.Time      `json:"timestamp"`
	IncidentID        string         `json:"incident_id"`
	AgentName         string         `json:"agent_name"`
	NodeName          string         `json:"node_name,omitempty"`
	EventType         AuditEventType `json:"event_type"`
	Payload           map[string]any `json:"payload,omitempty"`
	PreviousState     string         `json:"previous_state,omitempty"`
	NewState          string         `json:"new_state,omitempty"`
	DecisionType      DecisionType   `json:"decision_type,omitempty"`
	DecisionReasoning string         `json:"decision_reasoning,omitempty"`
	Actor             string         `json:"actor"`
}

// AuditLog appends and retrieves an incident's event trail.
type AuditLog struct {
	Store store.Store
}

// NewAuditLog constructs an AuditLog over st.
func NewAuditLog(st store.Store) *AuditLog {
	return &AuditLog{Store: st}
}

// Record appends ev to its incident's audit trail, assigning an event ID
// and timestamp if not already set.
func (l *AuditLog) Record(ctx context.Context, ev AuditEvent) (AuditEvent, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Actor == "" {
		ev.Actor = "system"
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return AuditEvent{}, err
	}

	key := store.AuditLogKey(ev.IncidentID)
	if err := l.Store.PushFront(ctx, key, string(data), auditLogCap, 0); err != nil {
		return AuditEvent{}, err
	}
	return ev, nil
}

// Timeline returns an incident's events, newest first.
func (l *AuditLog) Timeline(ctx context.Context, incidentID string) ([]AuditEvent, error) {
	raw, err := l.Store.ListRange(ctx, store.AuditLogKey(incidentID), 0, -1)
	if err != nil {
		return nil, err
	}

	events := make([]AuditEvent, 0, len(raw))
	for _, r := range raw {
		var ev AuditEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// IncidentSummary summarizes one incident's audit trail for a compliance
// report.
type IncidentSummary struct {
	IncidentID           string
	CreatedAt            time.Time
	ClosedAt             time.Time
	FinalOutcome         string
	TotalDurationSeconds int64
	LLMDecisionCount     int
	ErrorCount           int
}

// ComplianceReport aggregates incident summaries over a date range.
type ComplianceReport struct {
	StartDate                time.Time
	EndDate                  time.Time
	IncidentCount            int
	AvgResolutionTimeSeconds float64
	LLMDecisionsCount        int
	ErrorCount               int
	Incidents                []IncidentSummary
}

// Summarize derives an IncidentSummary from an incident's recorded events.
func Summarize(incidentID string, events []AuditEvent) IncidentSummary {
	summary := IncidentSummary{IncidentID: incidentID}

	// events arrive newest-first; walk in reverse for chronological order.
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if summary.CreatedAt.IsZero() {
			summary.CreatedAt = ev.Timestamp
		}
		if ev.DecisionType == DecisionLLMAssisted {
			summary.LLMDecisionCount++
		}
		if ev.EventType == AuditError {
			summary.ErrorCount++
		}
		if ev.EventType == AuditRestorationComplete || ev.EventType == AuditEscalation {
			summary.ClosedAt = ev.Timestamp
			summary.FinalOutcome = string(ev.EventType)
		}
	}

	if !summary.ClosedAt.IsZero() && !summary.CreatedAt.IsZero() {
		summary.TotalDurationSeconds = int64(summary.ClosedAt.Sub(summary.CreatedAt).Seconds())
	}
	return summary
}
