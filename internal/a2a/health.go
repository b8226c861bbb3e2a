package a2a

import (
	"context"
	"fmt"
	"time"
)

// HealthMap is the minimal replicated-map contract CollaboratorHealth needs.
//
// HealthMap is satisfied by *rmap.Map from goa.design/pulse/rmap. It is
// defined here, rather than depending on the concrete Pulse type directly,
// to keep CollaboratorHealth unit-testable without Redis and to avoid
// coupling every caller to one Pulse implementation.
type HealthMap interface {
	Get(key string) (string, bool)
	Set(ctx context.Context, key, value string) (string, error)
	Delete(ctx context.Context, key string) (string, error)
}

// CollaboratorHealth tracks the last time each collaborating agent
// answered a call, shared across every fabric process via a Pulse
// replicated map so a health observation made on one node is visible to
// every other node's Client before it dispatches the next task. This
// mirrors the registry's own two-tier health tracking (a shared map of
// last-pong timestamps, consulted to fail fast instead of waiting out a
// task timeout against a collaborator that is already known down), scoped
// down to the single map this client-side use needs.
type CollaboratorHealth struct {
	m         HealthMap
	staleness time.Duration
}

// DefaultHealthStaleness is how long a recorded health observation is
// trusted before IsHealthy treats the collaborator as unknown again.
const DefaultHealthStaleness = 2 * time.Minute

// NewCollaboratorHealth wraps m. staleness <= 0 uses DefaultHealthStaleness.
func NewCollaboratorHealth(m HealthMap, staleness time.Duration) *CollaboratorHealth {
	if staleness <= 0 {
		staleness = DefaultHealthStaleness
	}
	return &CollaboratorHealth{m: m, staleness: staleness}
}

// RecordHealthy marks agent as having answered a call just now.
func (h *CollaboratorHealth) RecordHealthy(ctx context.Context, agent string) error {
	if h == nil {
		return nil
	}
	if _, err := h.m.Set(ctx, agent, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("record collaborator health for %q: %w", agent, err)
	}
	return nil
}

// IsHealthy reports whether agent has answered within the staleness
// window. An agent with no recorded observation is treated as unknown,
// not unhealthy, so a collaborator never pinged yet is still dispatched to.
func (h *CollaboratorHealth) IsHealthy(agent string) bool {
	if h == nil {
		return true
	}
	v, ok := h.m.Get(agent)
	if !ok {
		return true
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return true
	}
	return time.Since(ts) <= h.staleness
}

// Forget removes agent's recorded health, e.g. when it is deregistered.
func (h *CollaboratorHealth) Forget(ctx context.Context, agent string) error {
	if h == nil {
		return nil
	}
	_, err := h.m.Delete(ctx, agent)
	return err
}
