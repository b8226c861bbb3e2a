// Package orchestrator drives an incident through its lifecycle: the
// detecting -> assessing -> computing -> provisioning -> steering ->
// monitoring -> restoring -> closed state machine, with dampening and
// escalated branches, per the fabric's state-machine design. Each node
// calls one collaborating agent over A2A and writes the transition to the
// Incident Store before deciding the next node, so a crash between a node
// finishing and its store write never commits a transition it didn't
// finish (write-last policy).
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/ferrors"
	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
	"github.com/netguard/fabric/internal/telemetry"
)

// Caller delivers a task to a named collaborating agent. *a2a.Client
// satisfies this directly; tests substitute a fake.
type Caller interface {
	SendTask(ctx context.Context, agent string, req a2a.TaskRequest) (*a2a.TaskResponse, error)
}

// Agent name constants, matching the config.Registry entries each process
// is deployed under.
const (
	AgentServiceImpact      = "service-impact"
	AgentPathComputer       = "path-computer"
	AgentTunnelProvisioner  = "tunnel-provisioner"
	AgentRestorationMonitor = "restoration-monitor"
	AgentNotifier           = "notifier"
	AgentAudit              = "audit"
)

// maxProvisionAttempts bounds the provisioning retry loop before escalating.
const maxProvisionAttempts = 3

// Engine runs incidents through the state machine. Sleep is injectable so
// dampen backoffs do not block tests; Now is injectable for the same
// reason.
type Engine struct {
	Store     store.Store
	Caller    Caller
	Escalator Escalator
	Logger    telemetry.Logger
	Sleep     func(time.Duration)
	Now       func() time.Time
}

// NewEngine constructs an Engine. A nil Escalator defaults to
// NoopEscalator, a nil logger to a no-op logger.
func NewEngine(st store.Store, caller Caller, escalator Escalator, logger telemetry.Logger) *Engine {
	if escalator == nil {
		escalator = NoopEscalator{}
	}
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &Engine{
		Store:     st,
		Caller:    caller,
		Escalator: escalator,
		Logger:    logger,
		Sleep:     time.Sleep,
		Now:       time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) sleep(d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}

// AlertInput is the handle_alert task payload: the correlator's own
// correlate_alert result, forwarded to the orchestrator once an alert
// resolves to a (possibly new) incident.
type AlertInput struct {
	IncidentID    string
	DegradedLinks []string
	Severity      incident.Severity
	AlertType     incident.AlertType
	CorrelationID string
	IsFlapping    bool
	FlapCount     int
	DampenSeconds int
}

// HandleAlert loads or creates the named incident, then drives it through
// the state machine starting at detecting. It returns once the incident
// reaches a terminal state (closed).
func (e *Engine) HandleAlert(ctx context.Context, in AlertInput) (*incident.Incident, error) {
	inc, err := e.loadOrCreate(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, inc, in)
}

func (e *Engine) loadOrCreate(ctx context.Context, in AlertInput) (*incident.Incident, error) {
	data, ok, err := e.Store.GetJSON(ctx, store.IncidentKey(in.IncidentID))
	if err != nil {
		return nil, &ferrors.StoreUnavailableError{Op: "GetJSON", Key: store.IncidentKey(in.IncidentID), Err: err}
	}
	if ok {
		inc, decodeErr := decodeIncident(data)
		if decodeErr == nil {
			return inc, nil
		}
	}

	now := e.now()
	inc := &incident.Incident{
		ID:            in.IncidentID,
		DegradedLinks: in.DegradedLinks,
		Severity:      in.Severity,
		AlertType:     in.AlertType,
		Status:        incident.StatusDetecting,
		CorrelationID: in.CorrelationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.save(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// Run drives inc through the state machine from its current status to a
// terminal state. in carries the latest correlator signal (is_flapping,
// dampen_seconds) consumed only by the detecting/dampening nodes.
func (e *Engine) Run(ctx context.Context, inc *incident.Incident, in AlertInput) (*incident.Incident, error) {
	for {
		if ctx.Err() != nil {
			return inc, ctx.Err()
		}

		var err error
		switch inc.Status {
		case incident.StatusDetecting:
			err = e.runDetect(ctx, inc, in)
		case incident.StatusDampening:
			err = e.runDampen(ctx, inc, in)
			in.IsFlapping = false
		case incident.StatusAssessing:
			err = e.runAssess(ctx, inc)
		case incident.StatusComputing:
			err = e.runCompute(ctx, inc)
		case incident.StatusProvisioning:
			err = e.runProvision(ctx, inc)
		case incident.StatusSteering:
			err = e.runSteer(ctx, inc)
		case incident.StatusMonitoring:
			err = e.runMonitorAndRestore(ctx, inc)
		case incident.StatusEscalated:
			err = e.runEscalateNotify(ctx, inc)
		case incident.StatusClosed:
			return inc, nil
		default:
			return inc, fmt.Errorf("orchestrator: unknown incident status %q", inc.Status)
		}
		if err != nil {
			return inc, err
		}
	}
}

func (e *Engine) save(ctx context.Context, inc *incident.Incident) error {
	data, err := encodeIncident(inc)
	if err != nil {
		return err
	}
	ttl := time.Duration(0)
	if inc.Status == incident.StatusClosed {
		ttl = incident.Retention
	}
	if err := e.Store.SetJSON(ctx, store.IncidentKey(inc.ID), data, ttl); err != nil {
		return &ferrors.StoreUnavailableError{Op: "SetJSON", Key: store.IncidentKey(inc.ID), Err: err}
	}
	return nil
}

// call dispatches a task to a collaborator and returns its decoded result
// map, treating a completed-but-failed response as a DownstreamError.
func (e *Engine) call(ctx context.Context, agent, taskType string, inc *incident.Incident, payload map[string]any) (map[string]any, error) {
	return e.callWithTimeout(ctx, agent, taskType, inc, payload, 0)
}

// callWithTimeout is call with an explicit per-task timeout override, in
// seconds (0 uses the collaborator's own default). The restoration monitor
// node uses this: its single synchronous call runs the full hold/verify/
// cutover loop and needs far longer than the fabric's default task timeout.
func (e *Engine) callWithTimeout(ctx context.Context, agent, taskType string, inc *incident.Incident, payload map[string]any, timeoutSeconds int) (map[string]any, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["incident_id"] = inc.ID

	resp, err := e.Caller.SendTask(ctx, agent, a2a.TaskRequest{
		TaskID:         inc.ID + ":" + taskType,
		TaskType:       taskType,
		IncidentID:     inc.ID,
		CorrelationID:  inc.CorrelationID,
		Payload:        payload,
		TimeoutSeconds: timeoutSeconds,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == a2a.TaskFailed {
		return nil, &ferrors.DownstreamError{Agent: agent, TaskType: taskType, Message: resp.Error}
	}
	return resp.Result, nil
}
