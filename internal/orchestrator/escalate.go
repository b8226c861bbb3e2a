package orchestrator

import "context"

// EscalationContext is what an Escalator is shown when an incident reaches
// a hard-failure escalation reason.
type EscalationContext struct {
	IncidentID       string
	EscalationReason string
	DegradedLinks    []string
	AffectedServices int
	Severity         string
	RetryCount       int
	ErrorMessage     string
}

// EscalationAdvice is an Escalator's recommendation. It is advisory only:
// the orchestrator always transitions to escalated regardless of what an
// Escalator returns: this is a record of the suggestion for operators and
// audit, not a branch in the state machine.
type EscalationAdvice struct {
	RecommendedAction string
	Reasoning         string
	Confidence        string
}

// reasons that optionally consult an Escalator before recording the
// escalation, mirroring the LLM trigger set.
var escalatorTriggerReasons = map[string]bool{
	"no-alternate-path":          true,
	"cascading-failure":          true,
	"tunnel-provision-failed-3x": true,
	"conflicting-constraints":    true,
	"unknown-te-type":            true,
}

// Escalator is consulted on specific hard-failure escalation reasons to
// suggest an operator action. Implementations wrap an LLM call or any
// other advisory source; the interface carries no SDK-specific type so the
// orchestrator never depends on a concrete model client.
type Escalator interface {
	Advise(ctx context.Context, ec EscalationContext) (EscalationAdvice, error)
}

// NoopEscalator always recommends manual intervention without consulting
// anything. It is the default when no Escalator is configured.
type NoopEscalator struct{}

// Advise implements Escalator.
func (NoopEscalator) Advise(context.Context, EscalationContext) (EscalationAdvice, error) {
	return EscalationAdvice{RecommendedAction: "MANUAL_INTERVENTION", Confidence: "medium"}, nil
}
