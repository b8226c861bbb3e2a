package pathcompute

import "fmt"

const (
	maxDelayMultiplier  = 2.0
	minBandwidthFactor  = 0.8
)

// ValidationResult is the outcome of checking a computed path against the
// requesting service's SLA and the constraint set's max-hops.
type ValidationResult struct {
	Valid        bool
	Violations   []string
	DelayOK      bool
	BandwidthOK  bool
	HopCountOK   bool
}

// Validate checks path against the required SLA (delay within 2x, bandwidth
// at least 80% of requested) and the constraint set's hop ceiling.
func Validate(path ComputedPath, sla *RequiredSLA, maxHops int) ValidationResult {
	result := ValidationResult{DelayOK: true, BandwidthOK: true, HopCountOK: true}

	if sla != nil && sla.MaxDelayMS > 0 && path.TotalDelayMS > 0 {
		allowed := sla.MaxDelayMS * maxDelayMultiplier
		if path.TotalDelayMS > allowed {
			result.DelayOK = false
			result.Violations = append(result.Violations, fmt.Sprintf("delay %.1fms exceeds allowed %.1fms", path.TotalDelayMS, allowed))
		}
	}

	if sla != nil && sla.MinBandwidthGbps > 0 && path.MinAvailableBandwidth > 0 {
		required := sla.MinBandwidthGbps * minBandwidthFactor
		if path.MinAvailableBandwidth < required {
			result.BandwidthOK = false
			result.Violations = append(result.Violations, fmt.Sprintf("bandwidth %.1fGbps below required %.1fGbps", path.MinAvailableBandwidth, required))
		}
	}

	if maxHops > 0 && path.TotalHops > maxHops {
		result.HopCountOK = false
		result.Violations = append(result.Violations, fmt.Sprintf("hop count %d exceeds max %d", path.TotalHops, maxHops))
	}

	result.Valid = result.DelayOK && result.BandwidthOK && result.HopCountOK
	return result
}
