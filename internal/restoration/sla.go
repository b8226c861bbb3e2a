// Package restoration implements the Restoration Monitor: polls the
// original path's SLA after a protection tunnel goes live, holds for the
// tier's stability window once it recovers, verifies stability, cuts
// traffic back (immediate or gradual), and cleans up the protection tunnel.
package restoration

import "context"

// Sample is one windowed SLA measurement against the original path.
type Sample struct {
	LatencyMS float64
	JitterMS  float64
	LossPct   float64
}

// Thresholds bounds what counts as "within tier" for a sample.
type Thresholds struct {
	MaxLatencyMS float64
	MaxJitterMS  float64
	MaxLossPct   float64
}

// WithinTier reports whether a sample meets every bound in t. A zero bound
// is treated as "no constraint on this metric".
func (s Sample) WithinTier(t Thresholds) bool {
	if t.MaxLatencyMS > 0 && s.LatencyMS > t.MaxLatencyMS {
		return false
	}
	if t.MaxJitterMS > 0 && s.JitterMS > t.MaxJitterMS {
		return false
	}
	if t.MaxLossPct > 0 && s.LossPct > t.MaxLossPct {
		return false
	}
	return true
}

// Sampler queries the measurement collector for a windowed SLA sample on a
// given path. Implementations talk to the carrier's PCA/telemetry
// collector; tests use an in-memory fake.
type Sampler interface {
	Sample(ctx context.Context, originalPathID string) (Sample, error)
}
