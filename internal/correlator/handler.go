package correlator

import (
	"context"
	"time"

	"github.com/netguard/fabric/internal/ferrors"
)

// TaskHandler adapts Service.CorrelateAlert to the A2A Handler signature for
// registration on the correlate_alert task-type.
func (s *Service) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	raw, err := decodeRawAlert(payload)
	if err != nil {
		return nil, err
	}

	result, err := s.CorrelateAlert(ctx, raw)
	if err != nil {
		return nil, err
	}

	s.forwardToOrchestrator(ctx, result)

	return map[string]any{
		"outcome":            string(result.Outcome),
		"incident_id":        result.IncidentID,
		"degraded_links":     result.DegradedLinks,
		"severity":           string(result.Severity),
		"alert_count":        result.AlertCount,
		"is_flapping":        result.IsFlapping,
		"dampen_seconds":     result.DampenSeconds,
		"flap_count":         result.FlapCount,
		"correlated_alerts":  result.CorrelatedAlerts,
		"correlation_rule":   result.CorrelationRule,
		"correlation_reason": result.CorrelationReason,
		"original_alert_id":  result.OriginalAlertID,
	}, nil
}

func decodeRawAlert(payload map[string]any) (RawAlert, error) {
	source, _ := payload["source"].(string)
	if source == "" {
		return RawAlert{}, &ferrors.ContractViolationError{TaskType: "correlate_alert", Reason: "missing source"}
	}

	raw := RawAlert{
		Source:         Source(source),
		SourceIP:       asString(payload["source_ip"]),
		DestIP:         asString(payload["dest_ip"]),
		LinkID:         asString(payload["link_id"]),
		Metric:         asString(payload["metric"]),
		CurrentValue:   asFloat(payload["current_value"]),
		ThresholdValue: asFloat(payload["threshold_value"]),
		SeverityHint:   asString(payload["severity"]),
		Timestamp:      time.Now(),
	}

	if thresholds, ok := payload["violated_thresholds"].([]any); ok {
		for _, t := range thresholds {
			if s, ok := t.(string); ok {
				raw.ViolatedThresholds = append(raw.ViolatedThresholds, s)
			}
		}
	}
	if rawPayload, ok := payload["raw_payload"].(map[string]any); ok {
		raw.RawPayload = rawPayload
	}

	return raw, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
