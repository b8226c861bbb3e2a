// Package pathcompute implements the Path Computer: given a set of
// degraded links, it queries the topology for an alternate route, relaxing
// constraints progressively when no valid path is found, and validates any
// candidate against the requesting service's SLA.
package pathcompute

import "github.com/netguard/fabric/internal/incident"

// RequiredSLA is the subset of a service's SLA the path computer must
// honor when selecting and validating a path.
type RequiredSLA struct {
	MaxDelayMS       float64
	MinBandwidthGbps float64
}

// Constraints is the mutable state threaded through BUILD_CONSTRAINTS,
// QUERY, VALIDATE, and RELAX. AvoidLinks is never touched by relaxation:
// a path that reuses a degraded link is a contract violation regardless of
// relaxation level.
type Constraints struct {
	AvoidLinks         []string
	AvoidNodes         []string
	AvoidSRLGs         []string
	OptimizationMetric string
	MaxHops            int
	MaxDelayMS         *float64
	MinBandwidthGbps   *float64
	DisjointFromPath   string
	DisjointnessType   string
}

const (
	defaultMaxHops     = 10
	defaultMetric      = "delay"
	hopIncreasePerLevel = 5
)

// BuildConstraints constructs the initial, strictest constraint set for an
// incident's degraded links. The optimization metric favors the SLA's delay
// requirement when present, falls back to the TE metric for an RSVP-TE
// tunnel, and defaults to delay otherwise.
func BuildConstraints(degradedLinks, avoidNodes, avoidSRLGs []string, existingPolicies []string, sla *RequiredSLA, currentTEType string) Constraints {
	metric := defaultMetric
	switch {
	case sla != nil && sla.MaxDelayMS > 0:
		metric = "delay"
	case currentTEType == string(incident.TERSVPTE):
		metric = "te"
	}

	c := Constraints{
		AvoidLinks:         append([]string(nil), degradedLinks...),
		AvoidNodes:         append([]string(nil), avoidNodes...),
		AvoidSRLGs:         append([]string(nil), avoidSRLGs...),
		OptimizationMetric: metric,
		MaxHops:            defaultMaxHops,
	}
	if sla != nil {
		if sla.MaxDelayMS > 0 {
			v := sla.MaxDelayMS
			c.MaxDelayMS = &v
		}
		if sla.MinBandwidthGbps > 0 {
			v := sla.MinBandwidthGbps
			c.MinBandwidthGbps = &v
		}
	}
	if len(existingPolicies) > 0 {
		c.DisjointFromPath = existingPolicies[0]
		c.DisjointnessType = "link"
	}
	return c
}

// Relax applies every relaxation up to and including level, cumulatively,
// to a copy of base. AvoidLinks is copied through untouched at every level.
func Relax(base Constraints, level int) Constraints {
	relaxed := base
	relaxed.AvoidLinks = append([]string(nil), base.AvoidLinks...)
	relaxed.AvoidNodes = append([]string(nil), base.AvoidNodes...)
	relaxed.AvoidSRLGs = append([]string(nil), base.AvoidSRLGs...)

	if level >= 1 {
		relaxed.AvoidSRLGs = nil
	}
	if level >= 2 {
		relaxed.MaxHops = base.MaxHops + hopIncreasePerLevel
	}
	if level >= 3 {
		relaxed.OptimizationMetric = "igp"
		relaxed.MaxDelayMS = nil
	}
	if level >= 4 {
		relaxed.AvoidNodes = nil
	}
	return relaxed
}
