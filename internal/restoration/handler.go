package restoration

import (
	"context"
	"fmt"

	"github.com/netguard/fabric/internal/incident"
)

// TaskHandler adapts Monitor.Run to the monitor_restoration A2A task type.
func (m *Monitor) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	req := Request{
		IncidentID:         asString(payload["incident_id"]),
		ProtectionTunnelID: asString(payload["protection_tunnel_id"]),
		OriginalPathID:     asString(payload["original_path_id"]),
		SLATier:            incident.SLATier(asString(payload["sla_tier"])),
		CutoverMode:        incident.CutoverMode(asString(payload["cutover_mode"])),
		HeadEnd:            asString(payload["head_end"]),
		EndPoint:           asString(payload["end_point"]),
		TEType:             incident.TEType(asString(payload["te_type"])),
		Thresholds: Thresholds{
			MaxLatencyMS: asFloat(payload["max_latency_ms"]),
			MaxJitterMS:  asFloat(payload["max_jitter_ms"]),
			MaxLossPct:   asFloat(payload["max_loss_pct"]),
		},
	}
	if req.CutoverMode == "" {
		req.CutoverMode = incident.CutoverGradual
	}

	result, err := m.Run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("monitor restoration: %w", err)
	}

	return map[string]any{
		"restored":                      result.Restored,
		"hold_timer_seconds":            result.HoldTimerSeconds,
		"cutover_mode":                  string(result.CutoverMode),
		"tunnel_deleted":                result.TunnelDeleted,
		"total_protection_duration_sec": result.TotalProtectionDurationSec,
		"timed_out":                     result.TimedOut,
	}, nil
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
