package trafficanalytics

import "github.com/netguard/fabric/internal/incident"

// RecommendedAction is what the orchestrator should do about a risk
// analysis, escalating with the severity of the projected congestion.
type RecommendedAction string

const (
	ActionPreProvisionTunnel RecommendedAction = "pre_provision_tunnel"
	ActionLoadBalance        RecommendedAction = "load_balance"
	ActionAlertOnly          RecommendedAction = "alert_only"
)

// RiskAnalysis summarizes a Predict call's output for the orchestrator:
// overall severity, which links and services are at risk, and what to do
// about it.
type RiskAnalysis struct {
	OverallRiskLevel        RiskLevel
	AtRiskLinks             []string
	AtRiskServices          []string
	HighestSLATier          incident.SLATier
	TimeToCongestionMinutes int
	RecommendedAction       RecommendedAction
}

// AnalyzeRisk rolls a set of per-link risks into one overall assessment and
// recommendation, per the same high/medium/low -> alert/warn/log routing
// predict_congestion's threshold check feeds.
func AnalyzeRisk(risks []CongestionRisk, atRiskServices []string, highestSLATier incident.SLATier) RiskAnalysis {
	overall := RiskLow
	for _, r := range risks {
		if r.RiskLevel == RiskHigh {
			overall = RiskHigh
			break
		}
		if r.RiskLevel == RiskMedium {
			overall = RiskMedium
		}
	}

	var atRiskLinks []string
	for _, r := range risks {
		if r.RiskLevel == RiskHigh || r.RiskLevel == RiskMedium {
			atRiskLinks = append(atRiskLinks, r.LinkID)
		}
	}

	action, eta := recommend(overall)

	return RiskAnalysis{
		OverallRiskLevel:        overall,
		AtRiskLinks:             atRiskLinks,
		AtRiskServices:          atRiskServices,
		HighestSLATier:          highestSLATier,
		TimeToCongestionMinutes: eta,
		RecommendedAction:       action,
	}
}

func recommend(level RiskLevel) (RecommendedAction, int) {
	switch level {
	case RiskHigh:
		return ActionPreProvisionTunnel, 15
	case RiskMedium:
		return ActionLoadBalance, 30
	default:
		return ActionAlertOnly, 0
	}
}
