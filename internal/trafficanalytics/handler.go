package trafficanalytics

import (
	"context"
	"time"
)

// TaskHandler adapts Service.Analyze to the analyze_traffic A2A task type:
// decodes a raw telemetry payload, runs the pipeline, and encodes the
// result for the caller.
func (s *Service) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	window := decodeTelemetry(payload)

	result, err := s.Analyze(ctx, window)
	if err != nil {
		return nil, err
	}

	riskLinks := make([]string, 0, len(result.Risks))
	for _, r := range result.Risks {
		riskLinks = append(riskLinks, r.LinkID)
	}

	return map[string]any{
		"pe_count":             result.PECount,
		"total_demand_gbps":    result.TotalDemandGbps,
		"high_risk_count":      countAtLevel(result.Risks, RiskHigh),
		"medium_risk_count":    countAtLevel(result.Risks, RiskMedium),
		"at_risk_links":        riskLinks,
		"overall_risk_level":   string(result.Analysis.OverallRiskLevel),
		"recommended_action":   string(result.Analysis.RecommendedAction),
		"proactive_alert_sent": result.ProactiveAlertSent,
		"alert_id":             result.AlertID,
	}, nil
}

func countAtLevel(risks []CongestionRisk, level RiskLevel) int {
	n := 0
	for _, r := range risks {
		if r.RiskLevel == level {
			n++
		}
	}
	return n
}

func decodeTelemetry(payload map[string]any) TelemetryData {
	window := TelemetryData{
		CollectionTimestamp: time.Now(),
		WindowMinutes:       int(asFloat(payload["window_minutes"])),
	}

	for _, raw := range toMapSlice(payload["sr_pm"]) {
		window.SRPM = append(window.SRPM, SRPMMetric{
			MetricID:      asString(raw["metric_id"]),
			HeadEnd:       asString(raw["headend"]),
			EndPoint:      asString(raw["endpoint"]),
			SRPolicyBSID:  int(asFloat(raw["sr_policy_bsid"])),
			SRv6Locator:   asString(raw["srv6_locator"]),
			SourceLocator: asString(raw["source_locator"]),
			DestLocator:   asString(raw["dest_locator"]),
			TrafficGbps:   asFloat(raw["traffic_gbps"]),
			LatencyMS:     asFloat(raw["latency_ms"]),
			JitterMS:      asFloat(raw["jitter_ms"]),
			PacketLossPct: asFloat(raw["packet_loss_pct"]),
		})
	}

	for _, raw := range toMapSlice(payload["netflow"]) {
		window.NetFlow = append(window.NetFlow, FlowRecord{
			FlowID:      asString(raw["flow_id"]),
			SrcIP:       asString(raw["src_ip"]),
			DstIP:       asString(raw["dst_ip"]),
			SrcPE:       asString(raw["src_pe"]),
			DstPE:       asString(raw["dst_pe"]),
			Bytes:       int64(asFloat(raw["bytes"])),
			SRv6SID:     asString(raw["srv6_sid"]),
			SRv6Locator: asString(raw["srv6_locator"]),
		})
	}

	return window
}

func toMapSlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
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
