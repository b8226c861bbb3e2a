package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/netguard/fabric/internal/incident"
)

// Handler adapts Service/AuditLog to the Notifier+Audit agent's A2A task
// types: send_notification, log_event, get_timeline, generate_report.
type Handler struct {
	Notify *Service
	Audit  *AuditLog
}

// NewHandler constructs a Handler over svc and log.
func NewHandler(svc *Service, log *AuditLog) *Handler {
	return &Handler{Notify: svc, Audit: log}
}

// Dispatch routes payload to the handler matching taskType.
func (h *Handler) Dispatch(ctx context.Context, taskType string, payload map[string]any) (map[string]any, error) {
	switch taskType {
	case "send_notification":
		return h.SendNotification(ctx, payload)
	case "log_event":
		return h.LogEvent(ctx, payload)
	case "get_timeline":
		return h.GetTimeline(ctx, payload)
	case "generate_report":
		return h.GenerateReport(ctx, payload)
	default:
		return nil, fmt.Errorf("notify: unknown task type %q", taskType)
	}
}

// SendNotification decodes a send_notification payload, fans the message
// out across the selected channels, and logs a notification_sent audit
// event alongside the delivery result.
func (h *Handler) SendNotification(ctx context.Context, payload map[string]any) (map[string]any, error) {
	req := Request{
		IncidentID: asString(payload["incident_id"]),
		EventType:  EventType(asString(payload["event_type"])),
		Severity:   Severity(asString(payload["severity"])),
		SLATier:    incident.SLATier(asString(payload["sla_tier"])),
		Data:       asMap(payload["data"]),
	}

	resp := h.Notify.SendNotification(ctx, req)

	if h.Audit != nil {
		_, _ = h.Audit.Record(ctx, AuditEvent{
			IncidentID: req.IncidentID,
			AgentName:  "notifier",
			EventType:  AuditNotificationSent,
			Payload: map[string]any{
				"event_type":         string(req.EventType),
				"channels_attempted": resp.ChannelsAttempted,
				"channels_succeeded": resp.ChannelsSucceeded,
				"channels_failed":    resp.ChannelsFailed,
			},
		})
	}

	return map[string]any{
		"incident_id":        resp.IncidentID,
		"event_type":         string(resp.EventType),
		"channels_attempted": resp.ChannelsAttempted,
		"channels_succeeded": resp.ChannelsSucceeded,
		"channels_failed":    resp.ChannelsFailed,
		"servicenow_ticket":  resp.ServiceNowTicket,
		"webex_message_id":   resp.WebexMessageID,
		"email_recipients":   resp.EmailRecipients,
	}, nil
}

// LogEvent records a generic audit event reported by any agent.
func (h *Handler) LogEvent(ctx context.Context, payload map[string]any) (map[string]any, error) {
	data := asMap(payload["data"])
	ev := AuditEvent{
		IncidentID:        asString(payload["incident_id"]),
		AgentName:         orDefault(asString(payload["agent_name"]), "unknown"),
		NodeName:          asString(payload["node_name"]),
		EventType:         AuditEventType(orDefault(asString(payload["event_type"]), string(AuditStateChange))),
		Payload:           data,
		PreviousState:     asString(payload["previous_state"]),
		NewState:          asString(payload["new_state"]),
		DecisionType:      DecisionType(asString(payload["decision_type"])),
		DecisionReasoning: asString(payload["decision_reasoning"]),
		Actor:             orDefault(asString(payload["actor"]), "system"),
	}

	recorded, err := h.Audit.Record(ctx, ev)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"event_id":  recorded.EventID,
		"timestamp": recorded.Timestamp.Format(time.RFC3339),
	}, nil
}

// GetTimeline returns an incident's audit trail, newest first.
func (h *Handler) GetTimeline(ctx context.Context, payload map[string]any) (map[string]any, error) {
	incidentID := asString(payload["incident_id"])
	events, err := h.Audit.Timeline(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, map[string]any{
			"event_id":   ev.EventID,
			"timestamp":  ev.Timestamp.Format(time.RFC3339),
			"event_type": string(ev.EventType),
			"agent_name": ev.AgentName,
			"actor":      ev.Actor,
			"payload":    ev.Payload,
		})
	}

	return map[string]any{
		"incident_id": incidentID,
		"events":      out,
	}, nil
}

// GenerateReport builds a compliance report for one incident's audit trail.
// A fleet-wide report spanning many incidents is an orchestrator-level
// aggregation over repeated single-incident calls, not done here.
func (h *Handler) GenerateReport(ctx context.Context, payload map[string]any) (map[string]any, error) {
	incidentID := asString(payload["incident_id"])
	events, err := h.Audit.Timeline(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(incidentID, events)
	return map[string]any{
		"incident_id":            summary.IncidentID,
		"created_at":             formatTimeOrEmpty(summary.CreatedAt),
		"closed_at":              formatTimeOrEmpty(summary.ClosedAt),
		"final_outcome":          summary.FinalOutcome,
		"total_duration_seconds": summary.TotalDurationSeconds,
		"llm_decision_count":     summary.LLMDecisionCount,
		"error_count":            summary.ErrorCount,
	}, nil
}

func formatTimeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
