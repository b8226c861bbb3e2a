package correlator

import (
	"context"
	"time"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
	"github.com/netguard/fabric/internal/telemetry"
)

// Outcome classifies what happened to an alert during correlation.
type Outcome string

const (
	OutcomeEmitted   Outcome = "emitted"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeSuppressed Outcome = "suppressed"
)

// Result is the return value of correlate_alert: everything the
// orchestrator needs to decide whether an incident exists and how to
// proceed.
type Result struct {
	Outcome           Outcome
	IncidentID        string
	DegradedLinks     []string
	Severity          incident.Severity
	AlertCount        int
	IsFlapping        bool
	DampenSeconds     int
	FlapCount         int
	CorrelatedAlerts  []string
	CorrelationRule   string
	CorrelationReason string
	OriginalAlertID   string
}

// Service runs the single-pass correlation algorithm: normalize, dedupe,
// correlate, flap-detect, emit.
type Service struct {
	store     store.Store
	logger    telemetry.Logger
	forwarder Forwarder
}

// NewService constructs a Service backed by the given Incident Store.
func NewService(st store.Store, logger telemetry.Logger) *Service {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &Service{store: st, logger: logger}
}

// WithForwarder configures the orchestrator client an emitted or suppressed
// correlation result is forwarded to as a handle_alert task. Returns s for
// chaining at construction time.
func (s *Service) WithForwarder(f Forwarder) *Service {
	s.forwarder = f
	return s
}

// CorrelateAlert runs the full single-pass algorithm described in
// normalize.go, dedup.go, correlate.go, and flap.go, in that order. A store
// outage during correlation fails the call outright: incident state would
// be incoherent if correlation proceeded without a durable record.
func (s *Service) CorrelateAlert(ctx context.Context, raw RawAlert) (Result, error) {
	alert := Normalize(raw)
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	dedup, err := Dedup(ctx, s.store, alert)
	if err != nil {
		return Result{}, err
	}
	if dedup.Duplicate {
		s.logger.Debug(ctx, "alert discarded as duplicate", "link_id", alert.LinkID, "hash", dedup.Hash)
		return Result{
			Outcome:         OutcomeDiscarded,
			OriginalAlertID: dedup.OriginalAlertID,
		}, nil
	}

	correlation, err := Correlate(ctx, s.store, alert)
	if err != nil {
		return Result{}, err
	}

	flap, err := CheckFlap(ctx, s.store, alert.LinkID, alert.Timestamp)
	if err != nil {
		return Result{}, err
	}
	if flap.Flapping {
		s.logger.Info(ctx, "link suppressed as flapping", "link_id", alert.LinkID, "dampen_seconds", int(flap.DampenFor.Seconds()))
		return Result{
			Outcome:       OutcomeSuppressed,
			IncidentID:    correlation.IncidentID,
			DegradedLinks: []string{alert.LinkID},
			Severity:      alert.Severity,
			IsFlapping:    true,
			DampenSeconds: int(flap.DampenFor.Seconds()),
			FlapCount:     flap.FlapCount,
		}, nil
	}

	return Result{
		Outcome:           OutcomeEmitted,
		IncidentID:        correlation.IncidentID,
		DegradedLinks:     []string{alert.LinkID},
		Severity:          alert.Severity,
		AlertCount:        len(correlation.CorrelatedAlerts) + 1,
		CorrelatedAlerts:  correlation.CorrelatedAlerts,
		CorrelationRule:   correlation.CorrelationRule,
		CorrelationReason: correlation.CorrelationReason,
	}, nil
}
