package correlator

import (
	"context"

	"github.com/netguard/fabric/internal/a2a"
)

// Forwarder delivers a correlation result to the orchestrator as a
// handle_alert task. *a2a.Client satisfies this directly.
type Forwarder interface {
	SendTask(ctx context.Context, agent string, req a2a.TaskRequest) (*a2a.TaskResponse, error)
}

// forwardToOrchestrator hands an emitted-or-suppressed correlation result to
// the orchestrator, mirroring traffic analytics' AlertEmitter. A discarded
// (duplicate) outcome is never forwarded: no incident exists yet to drive.
// Forwarding failures are logged, not returned: the correlator's own
// correlate_alert task has already completed successfully by this point.
func (s *Service) forwardToOrchestrator(ctx context.Context, result Result) {
	if s.forwarder == nil {
		return
	}
	if result.Outcome != OutcomeEmitted && result.Outcome != OutcomeSuppressed {
		return
	}

	resp, err := s.forwarder.SendTask(ctx, "orchestrator", a2a.TaskRequest{
		TaskID:     result.IncidentID + ":handle_alert",
		TaskType:   "handle_alert",
		IncidentID: result.IncidentID,
		Payload: map[string]any{
			"incident_id":    result.IncidentID,
			"degraded_links": result.DegradedLinks,
			"severity":       string(result.Severity),
			"is_flapping":    result.IsFlapping,
			"flap_count":     result.FlapCount,
			"dampen_seconds": result.DampenSeconds,
		},
	})
	if err != nil {
		s.logger.Warn(ctx, "failed to forward correlation result to orchestrator", "incident_id", result.IncidentID, "error", err.Error())
		return
	}
	if resp.Status == a2a.TaskFailed {
		s.logger.Warn(ctx, "orchestrator rejected handle_alert", "incident_id", result.IncidentID, "error", resp.Error)
	}
}
