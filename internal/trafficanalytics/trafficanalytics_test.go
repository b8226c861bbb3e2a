package trafficanalytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/incident"
)

func TestMatrixBuilderAggregatesSRPolicyMetrics(t *testing.T) {
	b := NewMatrixBuilder()
	window := TelemetryData{
		SRPM: []SRPMMetric{
			{HeadEnd: "PE1", EndPoint: "PE2", SRPolicyBSID: 24001, TrafficGbps: 3},
			{HeadEnd: "PE1", EndPoint: "PE2", SRPolicyBSID: 24002, TrafficGbps: 2},
		},
	}

	matrix := b.Build(window)
	assert.Equal(t, 5.0, matrix.Demand("PE1", "PE2"))
	assert.Equal(t, 2, matrix.PECount())
}

func TestMatrixBuilderResolvesSRv6LocatorPairs(t *testing.T) {
	b := NewMatrixBuilder()
	window := TelemetryData{
		SRPM: []SRPMMetric{
			{SRv6Locator: "yes", SourceLocator: "fc00:pe1::", DestLocator: "fc00:pe2::", TrafficGbps: 4},
		},
	}

	matrix := b.Build(window)
	assert.Equal(t, 4.0, matrix.Demand("PE1", "PE2"))
}

func TestMatrixBuilderConvertsNetflowBytesToGbps(t *testing.T) {
	b := NewMatrixBuilder()
	window := TelemetryData{
		NetFlow: []FlowRecord{
			{SrcPE: "PE1", DstPE: "PE3", Bytes: 900_000_000_000},
		},
	}

	matrix := b.Build(window)
	assert.InDelta(t, 24.0, matrix.Demand("PE1", "PE3"), 0.01)
}

func TestMatrixBuilderFallsBackToIPHeuristic(t *testing.T) {
	b := NewMatrixBuilder()
	window := TelemetryData{
		NetFlow: []FlowRecord{
			{SrcIP: "10.1.0.5", DstIP: "10.2.0.5", Bytes: 300_000_000_000},
		},
	}

	matrix := b.Build(window)
	assert.Equal(t, 8.0, matrix.Demand("PE2", "PE3"))
}

type fakeTopology struct {
	links []Link
	paths map[[2]string][]string
}

func (f *fakeTopology) Links(ctx context.Context) ([]Link, error) {
	return f.links, nil
}

func (f *fakeTopology) PathLinks(ctx context.Context, srcPE, dstPE string) ([]string, error) {
	return f.paths[[2]string{srcPE, dstPE}], nil
}

func TestPredictClassifiesRiskByProjectedUtilization(t *testing.T) {
	topo := &fakeTopology{
		links: []Link{
			{LinkID: "link-PE1-PE2", CapacityGbps: 10, CurrentTrafficGbps: 5},
			{LinkID: "link-PE2-PE3", CapacityGbps: 10, CurrentTrafficGbps: 5},
		},
		paths: map[[2]string][]string{
			{"PE1", "PE2"}: {"link-PE1-PE2"},
			{"PE2", "PE3"}: {"link-PE2-PE3"},
		},
	}
	p := NewPredictor(topo)

	demand := DemandMatrix{Matrix: map[string]map[string]float64{
		"PE1": {"PE2": 9},
		"PE2": {"PE3": 1},
	}}

	risks, err := p.Predict(context.Background(), demand)
	require.NoError(t, err)
	require.Len(t, risks, 1, "only the 70%+ link should be reported")
	assert.Equal(t, "link-PE1-PE2", risks[0].LinkID)
	assert.Equal(t, RiskHigh, risks[0].RiskLevel)
}

func TestPredictSortsRisksByProjectedUtilizationDescending(t *testing.T) {
	topo := &fakeTopology{
		links: []Link{
			{LinkID: "link-a", CapacityGbps: 10, CurrentTrafficGbps: 0},
			{LinkID: "link-b", CapacityGbps: 10, CurrentTrafficGbps: 0},
		},
		paths: map[[2]string][]string{
			{"X", "A"}: {"link-a"},
			{"X", "B"}: {"link-b"},
		},
	}
	p := NewPredictor(topo)

	demand := DemandMatrix{Matrix: map[string]map[string]float64{
		"X": {"A": 7.5, "B": 9.0},
	}}

	risks, err := p.Predict(context.Background(), demand)
	require.NoError(t, err)
	require.Len(t, risks, 2)
	assert.Equal(t, "link-b", risks[0].LinkID, "higher projected utilization sorts first")
}

func TestAnalyzeRiskEscalatesToPreProvisionOnHighRisk(t *testing.T) {
	risks := []CongestionRisk{{LinkID: "link-a", RiskLevel: RiskHigh}}
	analysis := AnalyzeRisk(risks, []string{"vpn-pe1-pe2"}, incident.TierGold)

	assert.Equal(t, RiskHigh, analysis.OverallRiskLevel)
	assert.Equal(t, ActionPreProvisionTunnel, analysis.RecommendedAction)
	assert.Equal(t, 15, analysis.TimeToCongestionMinutes)
}

func TestAnalyzeRiskRecommendsLoadBalanceOnMediumRisk(t *testing.T) {
	risks := []CongestionRisk{{LinkID: "link-a", RiskLevel: RiskMedium}}
	analysis := AnalyzeRisk(risks, nil, incident.TierSilver)

	assert.Equal(t, RiskMedium, analysis.OverallRiskLevel)
	assert.Equal(t, ActionLoadBalance, analysis.RecommendedAction)
}

type fakeLookup struct {
	services []string
	tier     incident.SLATier
}

func (f *fakeLookup) ServicesOverLinks(ctx context.Context, linkIDs []string) ([]string, incident.SLATier, error) {
	return f.services, f.tier, nil
}

func TestServiceAnalyzeSkipsAlertWhenNoRiskFound(t *testing.T) {
	topo := &fakeTopology{
		links: []Link{{LinkID: "link-a", CapacityGbps: 10, CurrentTrafficGbps: 1}},
		paths: map[[2]string][]string{{"PE1", "PE2"}: {"link-a"}},
	}
	svc := NewService(NewPredictor(topo), &fakeLookup{}, nil, nil)

	result, err := svc.Analyze(context.Background(), TelemetryData{
		CollectionTimestamp: time.Now(),
		SRPM:                []SRPMMetric{{HeadEnd: "PE1", EndPoint: "PE2", SRPolicyBSID: 1, TrafficGbps: 0.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, RiskLow, result.Analysis.OverallRiskLevel)
	assert.False(t, result.ProactiveAlertSent)
}

func TestServiceAnalyzeReportsRiskWithoutEmitterConfigured(t *testing.T) {
	topo := &fakeTopology{
		links: []Link{{LinkID: "link-a", CapacityGbps: 10, CurrentTrafficGbps: 0}},
		paths: map[[2]string][]string{{"PE1", "PE2"}: {"link-a"}},
	}
	svc := NewService(NewPredictor(topo), &fakeLookup{services: []string{"vpn-1"}, tier: incident.TierGold}, nil, nil)

	result, err := svc.Analyze(context.Background(), TelemetryData{
		SRPM: []SRPMMetric{{HeadEnd: "PE1", EndPoint: "PE2", SRPolicyBSID: 1, TrafficGbps: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.Analysis.OverallRiskLevel)
	assert.False(t, result.ProactiveAlertSent, "no emitter configured means no dispatch attempted")
}

func TestTaskHandlerDecodesPayloadAndReturnsSummary(t *testing.T) {
	topo := &fakeTopology{
		links: []Link{{LinkID: "link-a", CapacityGbps: 10, CurrentTrafficGbps: 0}},
		paths: map[[2]string][]string{{"PE1", "PE2"}: {"link-a"}},
	}
	svc := NewService(NewPredictor(topo), &fakeLookup{}, nil, nil)

	out, err := svc.TaskHandler(context.Background(), map[string]any{
		"window_minutes": float64(5),
		"sr_pm": []any{
			map[string]any{"headend": "PE1", "endpoint": "PE2", "sr_policy_bsid": float64(1), "traffic_gbps": float64(9)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(RiskHigh), out["overall_risk_level"])
	assert.Equal(t, 1, out["high_risk_count"])
}
