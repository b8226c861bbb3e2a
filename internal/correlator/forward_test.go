package correlator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/incident"
)

type fakeForwarder struct {
	calls []a2a.TaskRequest
	resp  *a2a.TaskResponse
	err   error
}

func (f *fakeForwarder) SendTask(_ context.Context, agent string, req a2a.TaskRequest) (*a2a.TaskResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &a2a.TaskResponse{Status: a2a.TaskCompleted}, nil
}

func TestForwardToOrchestratorSendsHandleAlertOnEmitted(t *testing.T) {
	fwd := &fakeForwarder{}
	svc := NewService(newTestStore(t), nil).WithForwarder(fwd)

	svc.forwardToOrchestrator(context.Background(), Result{
		Outcome:       OutcomeEmitted,
		IncidentID:    "inc-1",
		DegradedLinks: []string{"link-1"},
		Severity:      incident.SeverityCritical,
	})

	require.Len(t, fwd.calls, 1)
	req := fwd.calls[0]
	assert.Equal(t, "handle_alert", req.TaskType)
	assert.Equal(t, "inc-1:handle_alert", req.TaskID)
	assert.Equal(t, "inc-1", req.Payload["incident_id"])
	assert.Equal(t, []string{"link-1"}, req.Payload["degraded_links"])
}

func TestForwardToOrchestratorSendsOnSuppressed(t *testing.T) {
	fwd := &fakeForwarder{}
	svc := NewService(newTestStore(t), nil).WithForwarder(fwd)

	svc.forwardToOrchestrator(context.Background(), Result{
		Outcome:    OutcomeSuppressed,
		IncidentID: "inc-2",
	})

	assert.Len(t, fwd.calls, 1)
}

func TestForwardToOrchestratorSkipsDiscarded(t *testing.T) {
	fwd := &fakeForwarder{}
	svc := NewService(newTestStore(t), nil).WithForwarder(fwd)

	svc.forwardToOrchestrator(context.Background(), Result{Outcome: OutcomeDiscarded})

	assert.Empty(t, fwd.calls)
}

func TestForwardToOrchestratorNoopsWithoutForwarder(t *testing.T) {
	svc := NewService(newTestStore(t), nil)

	assert.NotPanics(t, func() {
		svc.forwardToOrchestrator(context.Background(), Result{Outcome: OutcomeEmitted, IncidentID: "inc-3"})
	})
}

func TestForwardToOrchestratorSwallowsSendError(t *testing.T) {
	fwd := &fakeForwarder{err: assertErr("orchestrator unreachable")}
	svc := NewService(newTestStore(t), nil).WithForwarder(fwd)

	assert.NotPanics(t, func() {
		svc.forwardToOrchestrator(context.Background(), Result{Outcome: OutcomeEmitted, IncidentID: "inc-4"})
	})
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
