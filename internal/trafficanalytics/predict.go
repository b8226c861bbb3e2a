package trafficanalytics

import "context"

// RiskLevel classifies a link's projected congestion.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	utilizationThreshold = 0.70
	criticalThreshold    = 0.85
)

// Link is one link's capacity and current load, as reported by the
// topology service.
type Link struct {
	LinkID            string
	EndpointA         string
	EndpointZ         string
	CapacityGbps      float64
	CurrentTrafficGbps float64
}

// TopologyClient resolves link capacities/current load and the paths PE
// pairs take across them. Implementations query the knowledge-graph
// topology service; tests use an in-memory fake.
type TopologyClient interface {
	Links(ctx context.Context) ([]Link, error)
	PathLinks(ctx context.Context, srcPE, dstPE string) ([]string, error)
}

// CongestionRisk is the risk assessment for one link under a given demand
// matrix.
type CongestionRisk struct {
	LinkID                string
	EndpointA             string
	EndpointZ             string
	CurrentUtilization    float64
	ProjectedUtilization  float64
	CapacityGbps          float64
	CurrentTrafficGbps    float64
	ProjectedTrafficGbps  float64
	RiskLevel             RiskLevel
	AffectedPEPairs       [][2]string
	AffectedServices      []string
}

// Predictor analyzes a demand matrix against link capacities to find links
// projected to breach SLA-relevant utilization thresholds.
type Predictor struct {
	Topology TopologyClient
}

// NewPredictor constructs a Predictor backed by the given topology client.
func NewPredictor(topology TopologyClient) *Predictor {
	return &Predictor{Topology: topology}
}

// Predict analyzes every link for congestion risk given the projected
// demand matrix, returning only medium/high risk links sorted by projected
// utilization descending.
func (p *Predictor) Predict(ctx context.Context, demand DemandMatrix) ([]CongestionRisk, error) {
	links, err := p.Topology.Links(ctx)
	if err != nil {
		return nil, err
	}

	var risks []CongestionRisk
	for _, link := range links {
		currentUtil := ratio(link.CurrentTrafficGbps, link.CapacityGbps)
		projectedDemand, pairs, err := p.demandThroughLink(ctx, link.LinkID, demand)
		if err != nil {
			return nil, err
		}
		projectedUtil := ratio(projectedDemand, link.CapacityGbps)

		level := classify(projectedUtil)
		if level == RiskLow {
			continue
		}

		risks = append(risks, CongestionRisk{
			LinkID:               link.LinkID,
			EndpointA:             link.EndpointA,
			EndpointZ:             link.EndpointZ,
			CurrentUtilization:    currentUtil,
			ProjectedUtilization:  projectedUtil,
			CapacityGbps:          link.CapacityGbps,
			CurrentTrafficGbps:    link.CurrentTrafficGbps,
			ProjectedTrafficGbps:  projectedDemand,
			RiskLevel:             level,
			AffectedPEPairs:       pairs,
		})
	}

	sortRisksDescending(risks)
	return risks, nil
}

func (p *Predictor) demandThroughLink(ctx context.Context, linkID string, demand DemandMatrix) (float64, [][2]string, error) {
	var total float64
	var pairs [][2]string

	for src, dests := range demand.Matrix {
		for dst, gbps := range dests {
			if gbps <= 0 {
				continue
			}
			links, err := p.Topology.PathLinks(ctx, src, dst)
			if err != nil {
				return 0, nil, err
			}
			if !contains(links, linkID) {
				continue
			}
			total += gbps
			pairs = append(pairs, [2]string{src, dst})
		}
	}
	return total, pairs, nil
}

func classify(projectedUtil float64) RiskLevel {
	switch {
	case projectedUtil >= criticalThreshold:
		return RiskHigh
	case projectedUtil >= utilizationThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func ratio(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

func contains(vals []string, target string) bool {
	for _, v := range vals {
		if v == target {
			return true
		}
	}
	return false
}

func sortRisksDescending(risks []CongestionRisk) {
	for i := 1; i < len(risks); i++ {
		for j := i; j > 0 && risks[j].ProjectedUtilization > risks[j-1].ProjectedUtilization; j-- {
			risks[j], risks[j-1] = risks[j-1], risks[j]
		}
	}
}
