package tunnel

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
)

// CreateConfig is the northbound payload for a single tunnel creation call.
type CreateConfig struct {
	TEType             incident.TEType
	HeadEnd            string
	EndPoint           string
	Color              int
	PathName           string
	BindingSID         string
	ExplicitHops       []string
	OptimizationObjective string
	Protected          bool
}

// CreateResult is the northbound controller's response to a create call.
type CreateResult struct {
	Success           bool
	TunnelID          string
	OperationalStatus incident.OperationalStatus
	Message           string
}

// Controller is the northbound tunnel-provisioning API: create, verify,
// steer (confirm activation), and delete. Implementations talk to the
// carrier's SDN controller; tests use an in-memory fake.
type Controller interface {
	Create(ctx context.Context, cfg CreateConfig) (CreateResult, error)
	Verify(ctx context.Context, tunnelID string, teType incident.TEType) (incident.OperationalStatus, error)
	Steer(ctx context.Context, tunnelID string) error
	Delete(ctx context.Context, tunnelID string, teType incident.TEType) error
}
