package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewRedisStoreFromClient(client)
}

// fakeCaller scripts a response (or error) per (agent, task_type) pair and
// records every call it receives, so tests can assert both the resulting
// transition and the collaborators actually invoked.
type fakeCaller struct {
	responses map[string]*a2a.TaskResponse
	errors    map[string]error
	calls     []string
}

func callKey(agent, taskType string) string { return agent + ":" + taskType }

func (f *fakeCaller) on(agent, taskType string, result map[string]any) {
	if f.responses == nil {
		f.responses = make(map[string]*a2a.TaskResponse)
	}
	f.responses[callKey(agent, taskType)] = &a2a.TaskResponse{Status: a2a.TaskCompleted, Result: result}
}

func (f *fakeCaller) onFailure(agent, taskType, errMsg string) {
	if f.responses == nil {
		f.responses = make(map[string]*a2a.TaskResponse)
	}
	f.responses[callKey(agent, taskType)] = &a2a.TaskResponse{Status: a2a.TaskFailed, Error: errMsg}
}

func (f *fakeCaller) SendTask(ctx context.Context, agent string, req a2a.TaskRequest) (*a2a.TaskResponse, error) {
	key := callKey(agent, req.TaskType)
	f.calls = append(f.calls, key)
	if err, ok := f.errors[key]; ok {
		return nil, err
	}
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	return &a2a.TaskResponse{Status: a2a.TaskCompleted, Result: map[string]any{}}, nil
}

func newTestEngine(t *testing.T, caller Caller) *Engine {
	e := NewEngine(newTestStore(t), caller, nil, nil)
	e.Sleep = func(d time.Duration) {}
	return e
}

func TestHandleAlertClosesWithNoImpact(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(0)})

	e := newTestEngine(t, caller)
	inc, err := e.HandleAlert(context.Background(), AlertInput{
		IncidentID:    "INC-1",
		DegradedLinks: []string{"link-B"},
		Severity:      incident.SeverityMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, incident.StatusClosed, inc.Status)
	assert.Equal(t, "no_services_affected", inc.CloseReason)
	assert.Contains(t, caller.calls, "notifier:send_notification")
	assert.Contains(t, caller.calls, "audit:log_event")
}

func TestHandleAlertDampensOnFlapThenProceeds(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(0)})

	e := newTestEngine(t, caller)
	var slept []time.Duration
	e.Sleep = func(d time.Duration) { slept = append(slept, d) }

	inc, err := e.HandleAlert(context.Background(), AlertInput{
		IncidentID:    "INC-2",
		DegradedLinks: []string{"link-A"},
		IsFlapping:    true,
		FlapCount:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, incident.StatusClosed, inc.Status)
	require.Len(t, slept, 1)
	assert.Equal(t, incident.DampenDuration(1), slept[0])
	assert.Contains(t, inc.NodesVisited, "dampen")
}

func TestHandleAlertFullHappyPathReachesClosedViaRestoration(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{
		"total_affected":  float64(1),
		"primary_service": "svc-1",
		"services_by_tier": map[string]any{"gold": float64(1)},
	})
	caller.on("path-computer", "compute_path", map[string]any{"path_found": true})
	caller.on("tunnel-provisioner", "provision_tunnel", map[string]any{"success": true, "tunnel_id": "tun-1"})
	caller.on("restoration-monitor", "monitor_restoration", map[string]any{"restored": true, "cutover_mode": "gradual"})

	e := newTestEngine(t, caller)
	inc, err := e.HandleAlert(context.Background(), AlertInput{
		IncidentID:    "INC-3",
		DegradedLinks: []string{"link-C"},
		Severity:      incident.SeverityMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, incident.StatusClosed, inc.Status)
	assert.Equal(t, "sla_recovered", inc.CloseReason)
	assert.Equal(t, "tun-1", inc.ProtectionTunnelID)
	assert.Equal(t, incident.TierGold, inc.HighestSLATier)
	assert.Contains(t, caller.calls, "restoration-monitor:monitor_restoration")
}

func TestHandleAlertEscalatesAfterThreeProvisionFailures(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(1), "primary_service": "svc-1"})
	caller.on("path-computer", "compute_path", map[string]any{"path_found": true})
	caller.on("tunnel-provisioner", "provision_tunnel", map[string]any{"success": false})

	e := newTestEngine(t, caller)
	inc, err := e.HandleAlert(context.Background(), AlertInput{IncidentID: "INC-4", DegradedLinks: []string{"link-D"}})
	require.NoError(t, err)

	assert.Equal(t, incident.StatusClosed, inc.Status)
	assert.Equal(t, "tunnel-provision-failed-3x", inc.CloseReason)
	provisionCalls := 0
	for _, c := range caller.calls {
		if c == "tunnel-provisioner:provision_tunnel" {
			provisionCalls++
		}
	}
	assert.Equal(t, 3, provisionCalls)
}

func TestHandleAlertEscalatesWhenNoPathFound(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(1), "primary_service": "svc-1"})
	caller.on("path-computer", "compute_path", map[string]any{"path_found": false})

	e := newTestEngine(t, caller)
	inc, err := e.HandleAlert(context.Background(), AlertInput{IncidentID: "INC-5", DegradedLinks: []string{"link-E"}})
	require.NoError(t, err)

	assert.Equal(t, "no-alternate-path", inc.EscalationReason)
	assert.Equal(t, incident.StatusClosed, inc.Status)
}

func TestHandleAlertResumesFromStoredIncidentStatus(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("path-computer", "compute_path", map[string]any{"path_found": true})
	caller.on("tunnel-provisioner", "provision_tunnel", map[string]any{"success": true, "tunnel_id": "tun-9"})
	caller.on("restoration-monitor", "monitor_restoration", map[string]any{"restored": true})

	e := newTestEngine(t, caller)
	ctx := context.Background()

	existing := &incident.Incident{ID: "INC-6", Status: incident.StatusComputing, PrimaryService: "svc-9"}
	data, err := encodeIncident(existing)
	require.NoError(t, err)
	require.NoError(t, e.Store.SetJSON(ctx, store.IncidentKey("INC-6"), data, 0))

	inc, err := e.HandleAlert(ctx, AlertInput{IncidentID: "INC-6"})
	require.NoError(t, err)
	assert.Equal(t, incident.StatusClosed, inc.Status)
	assert.NotContains(t, caller.calls, "service-impact:assess_impact", "resumed incident must not re-run assess")
}

func TestEscalatorIsConsultedOnTriggerReasonsOnly(t *testing.T) {
	caller := &fakeCaller{}
	caller.on("service-impact", "assess_impact", map[string]any{"total_affected": float64(1), "primary_service": "svc-1"})
	caller.on("path-computer", "compute_path", map[string]any{"path_found": false})

	advisor := &recordingEscalator{}
	e := NewEngine(newTestStore(t), caller, advisor, nil)
	e.Sleep = func(time.Duration) {}

	_, err := e.HandleAlert(context.Background(), AlertInput{IncidentID: "INC-7", DegradedLinks: []string{"link-F"}})
	require.NoError(t, err)
	assert.Equal(t, 1, advisor.calls)
}

type recordingEscalator struct{ calls int }

func (r *recordingEscalator) Advise(ctx context.Context, ec EscalationContext) (EscalationAdvice, error) {
	r.calls++
	return EscalationAdvice{RecommendedAction: "MANUAL_INTERVENTION"}, nil
}

func TestHighestTierPicksMostStringentPresentTier(t *testing.T) {
	assert.Equal(t, incident.TierPlatinum, highestTier(map[string]any{"platinum": float64(1), "bronze": float64(5)}))
	assert.Equal(t, incident.TierSilver, highestTier(map[string]any{}))
}
