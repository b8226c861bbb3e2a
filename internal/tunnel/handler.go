package tunnel

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
)

// ProvisionTaskHandler adapts Provisioner.Provision to the A2A Handler
// signature for registration on the provision_tunnel task-type.
func (p *Provisioner) ProvisionTaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	req := ProvisionRequest{
		IncidentID:  asString(payload["incident_id"]),
		ServiceID:   asString(payload["service_id"]),
		RequestedTE: incident.TEType(asString(payload["te_type"])),
		HeadEnd:     asString(payload["head_end"]),
		EndPoint:    asString(payload["end_point"]),
		PathType:    PathType(asString(payload["path_type"])),
	}
	if pathMap, ok := payload["computed_path"].(map[string]any); ok {
		req.ComputedPath = &incident.ProtectionPath{
			Nodes: toStringSlice(pathMap["nodes"]),
		}
	}

	result, err := p.Provision(ctx, req)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"success":            result.Success,
		"tunnel_id":          result.TunnelID,
		"binding_sid":        result.BindingSID,
		"te_type":            string(result.TEType),
		"operational_status": string(result.OperationalStatus),
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	return out, nil
}

// DeleteTaskHandler adapts Provisioner.Delete to the A2A Handler signature
// for registration on the delete_tunnel task-type.
func (p *Provisioner) DeleteTaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	err := p.Delete(ctx,
		asString(payload["incident_id"]),
		asString(payload["head_end"]),
		asString(payload["end_point"]),
		asString(payload["tunnel_id"]),
		incident.TEType(asString(payload["te_type"])),
	)
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
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
