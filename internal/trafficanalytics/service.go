package trafficanalytics

import (
	"context"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/telemetry"
)

// ServiceLookup resolves which services run over a set of at-risk links,
// the same cross-check Service Impact performs for reactive alerts.
type ServiceLookup interface {
	ServicesOverLinks(ctx context.Context, linkIDs []string) (serviceIDs []string, highestTier incident.SLATier, err error)
}

// AnalyzeResult is the predict_congestion/analyze_traffic task outcome.
type AnalyzeResult struct {
	PECount             int
	TotalDemandGbps     float64
	Risks               []CongestionRisk
	Analysis            RiskAnalysis
	ProactiveAlertSent  bool
	AlertID             string
}

// Service runs the full collect -> build_matrix -> predict_congestion ->
// analyze_risk -> (alert | warn | log) pipeline.
type Service struct {
	Builder   *MatrixBuilder
	Predictor *Predictor
	Lookup    ServiceLookup
	Emitter   *AlertEmitter
	Logger    telemetry.Logger
}

// NewService constructs a Service wiring the matrix builder, congestion
// predictor, service lookup, and alert emitter together.
func NewService(predictor *Predictor, lookup ServiceLookup, emitter *AlertEmitter, logger telemetry.Logger) *Service {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &Service{
		Builder:   NewMatrixBuilder(),
		Predictor: predictor,
		Lookup:    lookup,
		Emitter:   emitter,
		Logger:    logger,
	}
}

// Analyze runs one collection window through the full pipeline. A
// high-or-medium risk link triggers a proactive alert to the orchestrator;
// a low-risk window is reported without dispatch, mirroring
// check_congestion_level's >=70% branch into analyze_risk versus the
// store-metrics-only branch below it.
func (s *Service) Analyze(ctx context.Context, window TelemetryData) (AnalyzeResult, error) {
	demand := s.Builder.Build(window)

	risks, err := s.Predictor.Predict(ctx, demand)
	if err != nil {
		return AnalyzeResult{}, err
	}

	result := AnalyzeResult{
		PECount:         demand.PECount(),
		TotalDemandGbps: demand.TotalDemand(),
		Risks:           risks,
	}

	if len(risks) == 0 {
		result.Analysis = RiskAnalysis{OverallRiskLevel: RiskLow, RecommendedAction: ActionAlertOnly}
		s.Logger.Debug(ctx, "no congestion risk detected", "pe_count", result.PECount)
		return result, nil
	}

	var atRiskLinks []string
	for _, r := range risks {
		atRiskLinks = append(atRiskLinks, r.LinkID)
	}

	var atRiskServices []string
	highestTier := incident.TierBronze
	if s.Lookup != nil {
		atRiskServices, highestTier, err = s.Lookup.ServicesOverLinks(ctx, atRiskLinks)
		if err != nil {
			return AnalyzeResult{}, err
		}
	}

	analysis := AnalyzeRisk(risks, atRiskServices, highestTier)
	result.Analysis = analysis

	s.Logger.Info(ctx, "traffic risk analysis complete",
		"overall_risk_level", string(analysis.OverallRiskLevel),
		"at_risk_links", len(analysis.AtRiskLinks),
		"recommended_action", string(analysis.RecommendedAction),
	)

	if analysis.OverallRiskLevel == RiskLow || s.Emitter == nil {
		return result, nil
	}

	alert, err := s.Emitter.Emit(ctx, risks, analysis)
	if err != nil {
		return result, nil
	}
	result.ProactiveAlertSent = true
	result.AlertID = alert.AlertID
	return result, nil
}
