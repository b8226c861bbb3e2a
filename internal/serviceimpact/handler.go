package serviceimpact

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
)

// TaskHandler adapts Assess to the A2A Handler signature for registration
// on the assess_impact task-type. It has no store dependency: impact
// assessment is a pure function of the services and degraded-link payload
// the orchestrator supplies.
func TaskHandler(_ context.Context, payload map[string]any) (map[string]any, error) {
	degradedLinks := toStringSlice(payload["degraded_links"])
	services := decodeServices(payload["services"])

	return assessResultPayload(Assess(services, degradedLinks)), nil
}

// assessResultPayload encodes a Result into the assess_impact task-type's
// response map, shared by the package-level TaskHandler and Assessor's
// inventory-backed one.
func assessResultPayload(result Result) map[string]any {
	byTier := make(map[string]int, len(result.ServicesByTier))
	for tier, count := range result.ServicesByTier {
		byTier[string(tier)] = count
	}
	byImpact := make(map[string]int, len(result.ServicesByImpact))
	for level, count := range result.ServicesByImpact {
		byImpact[string(level)] = count
	}

	affected := make([]map[string]any, 0, len(result.AffectedServices))
	for _, svc := range result.AffectedServices {
		affected = append(affected, map[string]any{
			"service_id":           svc.ServiceID,
			"service_name":         svc.ServiceName,
			"service_type":         svc.ServiceType,
			"customer_id":          svc.CustomerID,
			"customer_name":        svc.CustomerName,
			"sla_tier":             string(svc.SLATier),
			"current_te_type":      svc.CurrentTEType,
			"impact_level":         string(svc.ImpactLevel),
			"redundancy_available": svc.RedundancyAvailable,
			"affected_by_link":     svc.AffectedByLink,
			"priority_score":       svc.PriorityScore,
			"auto_protect":         svc.AutoProtect,
		})
	}

	return map[string]any{
		"total_affected":     result.TotalAffected,
		"primary_service":    result.PrimaryService,
		"affected_services":  affected,
		"services_by_tier":   byTier,
		"services_by_impact": byImpact,
		"auto_protect":       result.AutoProtect,
	}
}

func decodeServices(v any) []Service {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	services := make([]Service, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		services = append(services, Service{
			ServiceID:           asString(m["service_id"]),
			ServiceName:         asString(m["service_name"]),
			ServiceType:         asString(m["service_type"]),
			EndpointA:           asString(m["endpoint_a"]),
			EndpointZ:           asString(m["endpoint_z"]),
			CustomerID:          asString(m["customer_id"]),
			CustomerName:        asString(m["customer_name"]),
			SLATier:             incident.SLATier(asString(m["sla_tier"])),
			CurrentTEType:       asString(m["current_te_type"]),
			CurrentPath:         toStringSlice(m["current_path"]),
			RedundancyAvailable: asBool(m["redundancy_available"]),
		})
	}
	return services
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

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
