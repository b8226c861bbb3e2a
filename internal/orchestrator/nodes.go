package orchestrator

import (
	"context"

	"github.com/netguard/fabric/internal/ferrors"
	"github.com/netguard/fabric/internal/incident"
)

// monitorRestoreTimeoutSeconds bounds the single synchronous call to the
// restoration monitor, which internally runs the poll loop, the hold timer,
// the stability checks, and the cutover before returning. One complete pass
// at the slowest tier takes about 720s (300s hold + 2*120s stability spacing
// + 3*60s gradual stage intervals), so 2400s leaves room for a run of 30s
// poll waits before it. It does not cover every run the monitor's 100-poll
// bound allows: a run that keeps failing verification can take longer, and
// the call then ends in a task timeout.
const monitorRestoreTimeoutSeconds = 2400

// runDetect decides between dampening (flap detected) and assessing
// (stable), per the detect -> dampen | assess transition.
func (e *Engine) runDetect(ctx context.Context, inc *incident.Incident, in AlertInput) error {
	inc.VisitNode("detect")

	if in.IsFlapping {
		e.Logger.Warn(ctx, "incident flapping, dampening", "incident_id", inc.ID, "flap_count", in.FlapCount)
		inc.Status = incident.StatusDampening
	} else {
		inc.Status = incident.StatusAssessing
	}
	return e.save(ctx, inc)
}

// runDampen sleeps for the correlator-reported dampen duration, then
// returns to detecting with the flap flag cleared for recheck, per
// dampen -> detect.
func (e *Engine) runDampen(ctx context.Context, inc *incident.Incident, in AlertInput) error {
	inc.VisitNode("dampen")
	inc.RetryCount++

	if err := e.save(ctx, inc); err != nil {
		return err
	}

	dampenFor := incident.DampenDuration(in.FlapCount)
	if in.DampenSeconds > 0 {
		dampenFor = secondsToDuration(in.DampenSeconds)
	}
	e.sleep(dampenFor)

	inc.Status = incident.StatusDetecting
	return e.save(ctx, inc)
}

// runAssess calls Service Impact; zero affected services closes the
// incident with no tunnel ever provisioned, per assess -> compute | close.
func (e *Engine) runAssess(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("assess")

	result, err := e.call(ctx, AgentServiceImpact, "assess_impact", inc, map[string]any{
		"degraded_links": inc.DegradedLinks,
	})
	if err != nil {
		return e.escalate(ctx, inc, ferrors.ReasonCascadingFailure, err)
	}

	if byTier, ok := result["services_by_tier"].(map[string]any); ok {
		inc.HighestSLATier = highestTier(byTier)
	}

	totalAffected := int(asFloat(result["total_affected"]))
	if totalAffected == 0 {
		inc.Close("no_services_affected")
		if err := e.save(ctx, inc); err != nil {
			return err
		}
		e.notifyClose(ctx, inc, "incident_detected")
		return nil
	}

	inc.PrimaryService = asString(result["primary_service"])
	inc.Status = incident.StatusComputing
	return e.save(ctx, inc)
}

// runCompute calls the path computer; no path found after max relaxation
// escalates, per compute -> provision | escalate.
func (e *Engine) runCompute(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("compute")

	result, err := e.call(ctx, AgentPathComputer, "compute_path", inc, map[string]any{
		"degraded_links": inc.DegradedLinks,
	})
	if err != nil {
		return e.escalate(ctx, inc, ferrors.ReasonCascadingFailure, err)
	}

	if !asBool(result["path_found"]) {
		return e.escalate(ctx, inc, ferrors.ReasonNoAlternatePath, nil)
	}

	inc.Status = incident.StatusProvisioning
	return e.save(ctx, inc)
}

// runProvision calls the tunnel provisioner. On success moves to steering;
// on failure retries the same node up to maxProvisionAttempts, then
// escalates, per provision -> steer | provision | escalate.
func (e *Engine) runProvision(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("provision")

	result, err := e.call(ctx, AgentTunnelProvisioner, "provision_tunnel", inc, map[string]any{
		"service_id": inc.PrimaryService,
	})

	success := err == nil && asBool(result["success"])
	if success {
		inc.ProtectionTunnelID = asString(result["tunnel_id"])
		inc.RetryCount = 0
		inc.Status = incident.StatusSteering
		return e.save(ctx, inc)
	}

	inc.RetryCount++
	if err != nil {
		inc.ErrorMessage = err.Error()
	}
	if inc.RetryCount >= maxProvisionAttempts {
		return e.escalate(ctx, inc, ferrors.ReasonTunnelProvisionFailed, err)
	}
	return e.save(ctx, inc)
}

// runSteer calls the tunnel provisioner to activate traffic steering onto
// the protection path. Activation failure retries provisioning, per
// steer -> monitor | provision.
func (e *Engine) runSteer(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("steer")

	result, err := e.call(ctx, AgentTunnelProvisioner, "provision_tunnel", inc, map[string]any{
		"service_id": inc.PrimaryService,
		"action":     "activate",
	})

	if err != nil || !asBool(result["success"]) {
		inc.Status = incident.StatusProvisioning
		return e.save(ctx, inc)
	}

	inc.Status = incident.StatusMonitoring
	return e.save(ctx, inc)
}

// runMonitorAndRestore makes the single long synchronous call to the
// restoration monitor, which owns the full hold-timer/verify/cutover poll
// loop internally and returns only once restored or timed out, per the
// resolved open question on poll-loop ownership.
func (e *Engine) runMonitorAndRestore(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("monitor")

	result, err := e.callWithTimeout(ctx, AgentRestorationMonitor, "monitor_restoration", inc, map[string]any{
		"protection_tunnel_id": inc.ProtectionTunnelID,
	}, monitorRestoreTimeoutSeconds)
	if err != nil {
		return e.escalate(ctx, inc, ferrors.ReasonCascadingFailure, err)
	}

	if !asBool(result["restored"]) {
		return e.escalate(ctx, inc, ferrors.ReasonCascadingFailure, nil)
	}

	inc.CutoverMode = incident.CutoverMode(asString(result["cutover_mode"]))
	inc.Close("sla_recovered")
	if err := e.save(ctx, inc); err != nil {
		return err
	}
	e.notifyClose(ctx, inc, "restoration_complete")
	return nil
}

// notifyClose sends the single closure notification and audit event for a
// terminal incident outcome that is not itself an escalation (those are
// notified from runEscalateNotify instead). Send failures are logged, not
// propagated: the incident has already closed successfully in the store.
func (e *Engine) notifyClose(ctx context.Context, inc *incident.Incident, eventType string) {
	severity := "low"
	if inc.Severity != "" {
		severity = string(inc.Severity)
	}

	if _, err := e.call(ctx, AgentNotifier, "send_notification", inc, map[string]any{
		"event_type": eventType,
		"severity":   severity,
		"sla_tier":   string(inc.HighestSLATier),
		"data": map[string]any{
			"close_reason": inc.CloseReason,
		},
	}); err != nil {
		e.Logger.Warn(ctx, "closure notification failed", "incident_id", inc.ID, "error", err.Error())
	}

	if _, err := e.call(ctx, AgentAudit, "log_event", inc, map[string]any{
		"event_type": eventType,
		"data": map[string]any{
			"close_reason": inc.CloseReason,
		},
	}); err != nil {
		e.Logger.Warn(ctx, "closure audit event failed", "incident_id", inc.ID, "error", err.Error())
	}
}

// escalate records reason on inc, optionally consulting the Escalator for
// advisory context, and transitions to the escalated state. The
// Escalator's recommendation is never used to choose the transition
// itself.
func (e *Engine) escalate(ctx context.Context, inc *incident.Incident, reason string, cause error) error {
	inc.Escalate(reason)
	if cause != nil {
		inc.ErrorMessage = cause.Error()
	}

	if escalatorTriggerReasons[reason] {
		advice, err := e.Escalator.Advise(ctx, EscalationContext{
			IncidentID:       inc.ID,
			EscalationReason: reason,
			DegradedLinks:    inc.DegradedLinks,
			Severity:         string(inc.Severity),
			RetryCount:       inc.RetryCount,
			ErrorMessage:     inc.ErrorMessage,
		})
		if err == nil {
			e.Logger.Info(ctx, "escalation advice received",
				"incident_id", inc.ID,
				"reason", reason,
				"recommended_action", advice.RecommendedAction,
				"confidence", advice.Confidence,
			)
		}
	}

	return e.save(ctx, inc)
}

// runEscalateNotify sends the one-time closure notification and audit
// event for an escalated incident, then closes it, per
// escalated -> closed (after notify + audit).
func (e *Engine) runEscalateNotify(ctx context.Context, inc *incident.Incident) error {
	inc.VisitNode("escalate-notify")

	_, _ = e.call(ctx, AgentNotifier, "send_notification", inc, map[string]any{
		"event_type": "escalation",
		"severity":   "critical",
		"data": map[string]any{
			"reason": inc.EscalationReason,
		},
	})
	_, _ = e.call(ctx, AgentAudit, "log_event", inc, map[string]any{
		"event_type": "escalation",
		"data": map[string]any{
			"reason": inc.EscalationReason,
		},
	})

	inc.Close(inc.EscalationReason)
	return e.save(ctx, inc)
}
