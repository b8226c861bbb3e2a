package pathcompute

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
)

// Request is the compute_path task payload.
type Request struct {
	Source           string
	Destination      string
	DegradedLinks    []string
	AvoidNodes       []string
	AvoidSRLGs       []string
	ExistingPolicies []string
	RequiredSLA      *RequiredSLA
	CurrentTEType    string
}

// Result is the compute_path task response: either a usable protection
// path or an exhaustion signal for the orchestrator to escalate on.
type Result struct {
	PathFound          bool
	Path               *incident.ProtectionPath
	ConstraintsRelaxed bool
	RelaxationLevel    int
	QueryErrors        []string
}

// Computer runs the BUILD_CONSTRAINTS -> QUERY -> VALIDATE -> (RETURN |
// RELAX -> QUERY ...) state machine, bounded by incident.MaxRelaxationLevel.
type Computer struct {
	Graph GraphClient
}

// NewComputer constructs a Computer backed by the given topology client.
func NewComputer(graph GraphClient) *Computer {
	return &Computer{Graph: graph}
}

// Compute runs the full state machine for one request. A candidate path
// that fails SLA validation feeds back into the relax loop at the next
// level; the loop terminates, with path_found=false, once relaxation level
// incident.MaxRelaxationLevel is exhausted without a valid path.
func (c *Computer) Compute(ctx context.Context, req Request) Result {
	base := BuildConstraints(req.DegradedLinks, req.AvoidNodes, req.AvoidSRLGs, req.ExistingPolicies, req.RequiredSLA, req.CurrentTEType)

	var queryErrors []string

	for level := 0; level <= incident.MaxRelaxationLevel; level++ {
		cons := base
		if level > 0 {
			cons = Relax(base, level)
		}

		path, ok, err := c.Graph.ComputePath(ctx, req.Source, req.Destination, cons)
		if err != nil {
			queryErrors = append(queryErrors, err.Error())
			continue
		}
		if !ok {
			continue
		}

		validation := Validate(path, req.RequiredSLA, cons.MaxHops)
		if !validation.Valid {
			queryErrors = append(queryErrors, validation.Violations...)
			continue
		}

		return Result{
			PathFound:          true,
			ConstraintsRelaxed: level > 0,
			RelaxationLevel:    level,
			QueryErrors:        queryErrors,
			Path: &incident.ProtectionPath{
				Nodes:              path.Nodes,
				Segments:           path.Segments,
				HopCount:           path.TotalHops,
				AggregatedDelay:    path.TotalDelayMS,
				AggregatedMetric:   path.TotalMetric,
				MinAvailableBW:     path.MinAvailableBandwidth,
				RecommendedTEType:  firstNonEmpty(path.RecommendedTEType, cons.OptimizationMetric),
				ConstraintsRelaxed: level > 0,
				RelaxationLevel:    level,
			},
		}
	}

	return Result{PathFound: false, QueryErrors: queryErrors}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
