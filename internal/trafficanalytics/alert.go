package trafficanalytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/telemetry"
)

// ProactiveAlert is emitted before an SLA breach actually occurs; the
// orchestrator runs it through the same state machine as a reactive alert.
type ProactiveAlert struct {
	AlertID                 string
	Timestamp               time.Time
	AtRiskLinks             []string
	PredictedUtilization    float64
	TimeToCongestionMinutes int
	AtRiskServices          []string
	HighestSLATier          incident.SLATier
	RecommendedAction       RecommendedAction
}

// AlertEmitter sends a proactive alert to the orchestrator as an A2A task,
// the same transport correlate_alert's reactive path uses.
type AlertEmitter struct {
	Client *a2a.Client
	Logger telemetry.Logger
}

// NewAlertEmitter constructs an AlertEmitter backed by the given A2A
// client.
func NewAlertEmitter(client *a2a.Client, logger telemetry.Logger) *AlertEmitter {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &AlertEmitter{Client: client, Logger: logger}
}

// Emit builds a ProactiveAlert from a risk analysis and dispatches it to
// the orchestrator agent. The alert is returned even if dispatch fails so
// callers can still record what would have been sent.
func (e *AlertEmitter) Emit(ctx context.Context, risks []CongestionRisk, analysis RiskAnalysis) (ProactiveAlert, error) {
	var maxUtil float64
	for _, r := range risks {
		if r.ProjectedUtilization > maxUtil {
			maxUtil = r.ProjectedUtilization
		}
	}

	alert := ProactiveAlert{
		AlertID:                 "PROACTIVE-" + uuid.NewString(),
		Timestamp:               time.Now(),
		AtRiskLinks:             analysis.AtRiskLinks,
		PredictedUtilization:    maxUtil,
		TimeToCongestionMinutes: analysis.TimeToCongestionMinutes,
		AtRiskServices:          analysis.AtRiskServices,
		HighestSLATier:          analysis.HighestSLATier,
		RecommendedAction:       analysis.RecommendedAction,
	}

	e.Logger.Info(ctx, "emitting proactive alert",
		"alert_id", alert.AlertID,
		"risk_links", len(alert.AtRiskLinks),
		"recommended_action", string(alert.RecommendedAction),
	)

	resp, err := e.Client.SendTask(ctx, "orchestrator", a2a.TaskRequest{
		TaskID:   alert.AlertID,
		TaskType: "proactive_alert",
		Payload: map[string]any{
			"alert_id":                   alert.AlertID,
			"alert_type":                 "proactive",
			"at_risk_links":              alert.AtRiskLinks,
			"predicted_utilization":      alert.PredictedUtilization,
			"time_to_congestion_minutes": alert.TimeToCongestionMinutes,
			"at_risk_services":           alert.AtRiskServices,
			"highest_sla_tier":           string(alert.HighestSLATier),
			"recommended_action":         string(alert.RecommendedAction),
		},
	})
	if err != nil {
		e.Logger.Warn(ctx, "failed to send proactive alert to orchestrator", "alert_id", alert.AlertID, "error", err.Error())
		return alert, err
	}
	if resp.Status == a2a.TaskFailed {
		e.Logger.Warn(ctx, "orchestrator rejected proactive alert", "alert_id", alert.AlertID, "error", resp.Error)
	}

	return alert, nil
}
