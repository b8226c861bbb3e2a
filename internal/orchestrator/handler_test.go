package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/incident"
)

func TestProactiveAlertTaskHandlerRunsStateMachineAndClosesOnNoImpact(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(0)})

	e := newTestEngine(t, caller)

	result, err := e.ProactiveAlertTaskHandler(context.Background(), map[string]any{
		"alert_id":      "INC-PRED-1",
		"at_risk_links": []any{"link-X"},
	})
	require.NoError(t, err)
	assert.Equal(t, "INC-PRED-1", result["incident_id"])
	assert.Equal(t, string(incident.StatusClosed), result["status"])
	assert.Equal(t, "no_services_affected", result["close_reason"])
	assert.Contains(t, caller.calls, "service-impact:assess_impact")
}

func TestProactiveAlertTaskHandlerDrivesProvisioningPath(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{
		"total_affected":  float64(1),
		"primary_service": "svc-1",
		"affected_services": []any{
			map[string]any{"service_id": "svc-1", "sla_tier": "gold", "auto_protect": true},
		},
	})
	caller.on("path-computer", "compute_path", map[string]any{"path_found": true, "path_id": "path-2"})
	caller.on("tunnel-provisioner", "provision_tunnel", map[string]any{
		"success": true, "tunnel_id": "tun-1", "operational_status": "up",
	})
	caller.on("restoration-monitor", "monitor_restoration", map[string]any{
		"restored": true, "cutover_mode": "immediate",
	})

	e := newTestEngine(t, caller)

	result, err := e.ProactiveAlertTaskHandler(context.Background(), map[string]any{
		"alert_id":      "INC-PRED-2",
		"at_risk_links": []any{"link-Y"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(incident.StatusClosed), result["status"])
	assert.Equal(t, "sla_recovered", result["close_reason"])

	monitorCall := caller.calls[len(caller.calls)-3]
	assert.Equal(t, "restoration-monitor:monitor_restoration", monitorCall)
}
