package pathcompute

import (
	"context"
)

// TaskHandler adapts Computer.Compute to the A2A Handler signature for
// registration on the compute_path task-type.
func (c *Computer) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	req := Request{
		Source:           asString(payload["source"]),
		Destination:      asString(payload["destination"]),
		DegradedLinks:    toStringSlice(payload["degraded_links"]),
		AvoidNodes:       toStringSlice(payload["avoid_nodes"]),
		AvoidSRLGs:       toStringSlice(payload["avoid_srlgs"]),
		ExistingPolicies: toStringSlice(payload["existing_policies"]),
		CurrentTEType:    asString(payload["current_te_type"]),
	}
	if sla, ok := payload["required_sla"].(map[string]any); ok {
		req.RequiredSLA = &RequiredSLA{
			MaxDelayMS:       asFloat(sla["max_delay_ms"]),
			MinBandwidthGbps: asFloat(sla["min_bandwidth_gbps"]),
		}
	}

	result := c.Compute(ctx, req)

	out := map[string]any{
		"path_found":          result.PathFound,
		"constraints_relaxed": result.ConstraintsRelaxed,
		"relaxation_level":    result.RelaxationLevel,
		"query_errors":        result.QueryErrors,
	}
	if result.Path != nil {
		out["path"] = map[string]any{
			"nodes":                  result.Path.Nodes,
			"segments":               result.Path.Segments,
			"hop_count":              result.Path.HopCount,
			"aggregated_delay":       result.Path.AggregatedDelay,
			"aggregated_metric":      result.Path.AggregatedMetric,
			"min_available_bandwidth": result.Path.MinAvailableBW,
			"recommended_te_type":    result.Path.RecommendedTEType,
		}
	}
	return out, nil
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
