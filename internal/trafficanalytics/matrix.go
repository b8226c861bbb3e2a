package trafficanalytics

import (
	"strconv"
	"strings"
	"time"
)

// DemandMatrix is a PE-to-PE traffic demand estimate: matrix[src][dst] is
// gbps flowing from src to dst over the collection window.
type DemandMatrix struct {
	Matrix    map[string]map[string]float64
	Timestamp time.Time
}

// Demand returns the estimated traffic between two PEs, or zero if unknown.
func (m DemandMatrix) Demand(src, dst string) float64 {
	if m.Matrix == nil {
		return 0
	}
	return m.Matrix[src][dst]
}

// TotalDemand sums traffic across every PE pair.
func (m DemandMatrix) TotalDemand() float64 {
	var total float64
	for _, dests := range m.Matrix {
		for _, gbps := range dests {
			total += gbps
		}
	}
	return total
}

// PECount returns the number of distinct PEs appearing as either a source
// or a destination.
func (m DemandMatrix) PECount() int {
	pes := map[string]struct{}{}
	for src, dests := range m.Matrix {
		pes[src] = struct{}{}
		for dst := range dests {
			pes[dst] = struct{}{}
		}
	}
	return len(pes)
}

const netflowWindowSeconds = 300

// MatrixBuilder aggregates telemetry into a PE-to-PE demand matrix, across
// SRv6 locator pairs, SR-MPLS BSID-identified paths, and NetFlow records.
// Locator/IP-to-PE resolution is cached since the same mappings recur
// across every collection window.
type MatrixBuilder struct {
	locatorCache map[string]string
	ipCache      map[string]string
}

// NewMatrixBuilder constructs an empty MatrixBuilder.
func NewMatrixBuilder() *MatrixBuilder {
	return &MatrixBuilder{
		locatorCache: make(map[string]string),
		ipCache:      make(map[string]string),
	}
}

// RegisterLocatorMapping records a known SRv6 locator to PE-name mapping,
// bypassing the fc00:<pe>:: heuristic for that locator.
func (b *MatrixBuilder) RegisterLocatorMapping(locator, pe string) {
	b.locatorCache[locator] = pe
}

// RegisterIPMapping records a known IP to PE-name mapping, bypassing the
// octet heuristic for that address.
func (b *MatrixBuilder) RegisterIPMapping(ip, pe string) {
	b.ipCache[ip] = pe
}

// Build aggregates one telemetry window into a demand matrix.
func (b *MatrixBuilder) Build(telemetry TelemetryData) DemandMatrix {
	matrix := map[string]map[string]float64{}
	add := func(src, dst string, gbps float64) {
		if src == "" || dst == "" {
			return
		}
		if matrix[src] == nil {
			matrix[src] = map[string]float64{}
		}
		matrix[src][dst] += gbps
	}

	for _, metric := range telemetry.SRPM {
		switch {
		case metric.SRv6Locator != "" && metric.SourceLocator != "" && metric.DestLocator != "":
			src := b.locatorToPE(metric.SourceLocator)
			dst := b.locatorToPE(metric.DestLocator)
			add(src, dst, metric.TrafficGbps)
		case metric.SRPolicyBSID != 0:
			add(metric.HeadEnd, metric.EndPoint, metric.TrafficGbps)
		case metric.HeadEnd != "" && metric.EndPoint != "":
			add(metric.HeadEnd, metric.EndPoint, metric.TrafficGbps)
		}
	}

	for _, flow := range telemetry.NetFlow {
		gbps := bytesToGbps(flow.Bytes)
		switch {
		case flow.SrcPE != "" && flow.DstPE != "":
			add(flow.SrcPE, flow.DstPE, gbps)
		case flow.SrcIP != "" && flow.DstIP != "":
			src := b.ipToPEOf(flow.SrcIP)
			dst := b.ipToPEOf(flow.DstIP)
			if src != "" && dst != "" && src != dst {
				add(src, dst, gbps)
			}
		}
	}

	return DemandMatrix{Matrix: matrix, Timestamp: telemetry.CollectionTimestamp}
}

func bytesToGbps(bytes int64) float64 {
	return float64(bytes) * 8 / 1e9 / netflowWindowSeconds
}

// locatorToPE maps an SRv6 locator (fc00:<pe>::...) to a PE name.
func (b *MatrixBuilder) locatorToPE(locator string) string {
	if pe, ok := b.locatorCache[locator]; ok {
		return pe
	}
	if !strings.HasPrefix(locator, "fc00:") {
		return ""
	}
	parts := strings.Split(locator, ":")
	if len(parts) < 2 || parts[1] == "" {
		return ""
	}
	pe := strings.ToUpper(parts[1])
	b.locatorCache[locator] = pe
	return pe
}

// ipToPEOf maps 10.X.Y.Z to PE(X%4 + 1), the same coarse heuristic the
// collector falls back to when no explicit PE tag is available on a flow.
func (b *MatrixBuilder) ipToPEOf(ip string) string {
	if pe, ok := b.ipCache[ip]; ok {
		return pe
	}
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ""
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	pe := "PE" + strconv.Itoa(x%4+1)
	b.ipCache[ip] = pe
	return pe
}
