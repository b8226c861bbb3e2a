package orchestrator

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
)

// TaskHandler adapts Engine.HandleAlert to the handle_alert A2A task type:
// the correlator's correlate_alert result, forwarded once an alert
// resolves to an incident.
func (e *Engine) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	in := AlertInput{
		IncidentID:    asString(payload["incident_id"]),
		DegradedLinks: toStringSlice(payload["degraded_links"]),
		Severity:      incident.Severity(asString(payload["severity"])),
		AlertType:     incident.AlertType(asString(payload["alert_type"])),
		CorrelationID: asString(payload["correlation_id"]),
		IsFlapping:    asBool(payload["is_flapping"]),
		FlapCount:     int(asFloat(payload["flap_count"])),
		DampenSeconds: int(asFloat(payload["dampen_seconds"])),
	}

	inc, err := e.HandleAlert(ctx, in)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"incident_id":          inc.ID,
		"status":               string(inc.Status),
		"close_reason":         inc.CloseReason,
		"escalation_reason":    inc.EscalationReason,
		"protection_tunnel_id": inc.ProtectionTunnelID,
		"retry_count":          inc.RetryCount,
		"nodes_visited":        inc.NodesVisited,
	}, nil
}

// ProactiveAlertTaskHandler adapts Engine.HandleAlert to the proactive_alert
// task type emitted by Traffic Analytics' AlertEmitter, so a predicted
// congestion event runs through the same state machine as a reactive alert.
func (e *Engine) ProactiveAlertTaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	in := AlertInput{
		IncidentID:    asString(payload["alert_id"]),
		DegradedLinks: toStringSlice(payload["at_risk_links"]),
		Severity:      incident.SeverityWarning,
		AlertType:     incident.AlertTypeProactivePred,
	}

	inc, err := e.HandleAlert(ctx, in)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"incident_id":          inc.ID,
		"status":               string(inc.Status),
		"close_reason":         inc.CloseReason,
		"escalation_reason":    inc.EscalationReason,
		"protection_tunnel_id": inc.ProtectionTunnelID,
	}, nil
}

func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
