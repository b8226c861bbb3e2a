// Package ferrors defines the error taxonomy shared by every agent: the
// kinds an A2A client or an orchestrator node needs to distinguish in order
// to decide between retry, escalate, and fail-fast.
package ferrors

import "fmt"

// TransportError reports an unreachable peer, a reset connection, or a DNS
// failure encountered while delivering a task. Callers retry it with backoff.
type TransportError struct {
	Agent string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.Agent, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TaskTimeoutError reports a deadline exceeded at either end of an A2A call.
// It is never retried by the client; the caller's state machine decides.
type TaskTimeoutError struct {
	TaskID   string
	TaskType string
	Timeout  string
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s (%s) timed out after %s", e.TaskID, e.TaskType, e.Timeout)
}

// ContractViolationError reports an unsupported task-type or a malformed
// payload. It maps to HTTP 4xx and is never retried.
type ContractViolationError struct {
	TaskType string
	Reason   string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation for task-type %q: %s", e.TaskType, e.Reason)
}

// DownstreamError wraps a failed task response from a collaborating agent.
// The error string is opaque to the caller; retry is a policy decision made
// by the calling node, not by this type.
type DownstreamError struct {
	Agent    string
	TaskType string
	Message  string
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s rejected %s: %s", e.Agent, e.TaskType, e.Message)
}

// StoreUnavailableError reports that an authoritative read or write against
// the Incident Store failed. Incident transitions halt; the orchestrator
// escalates with cause "store-unavailable".
type StoreUnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// ResourceExhaustionError reports that a finite operational resource (the
// BSID pool at a head-end) has nothing left to allocate.
type ResourceExhaustionError struct {
	Resource string
	HeadEnd  string
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("%s exhausted at head-end %s", e.Resource, e.HeadEnd)
}

// LogicExhaustionError reports that a bounded loop (path relaxation, node
// retry, poll attempts) reached its cap without succeeding. EscalationReason
// names the specific cause the orchestrator records on the incident.
type LogicExhaustionError struct {
	EscalationReason string
	Attempts         int
}

func (e *LogicExhaustionError) Error() string {
	return fmt.Sprintf("logic exhausted after %d attempts: %s", e.Attempts, e.EscalationReason)
}

// Escalation reasons recorded on an incident when it transitions to
// "escalated". These are stable strings consumed by notification and audit.
const (
	ReasonNoAlternatePath       = "no-alternate-path"
	ReasonCascadingFailure      = "cascading-failure"
	ReasonTunnelProvisionFailed = "tunnel-provision-failed-3x"
	ReasonConflictingConstraint = "conflicting-constraints"
	ReasonUnknownTEType         = "unknown-te-type"
	ReasonStoreUnavailable      = "store-unavailable"
)
