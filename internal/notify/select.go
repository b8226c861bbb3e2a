package notify

import "github.com/netguard/fabric/internal/incident"

// TierConfig names the channels and destinations a given SLA tier notifies
// through.
type TierConfig struct {
	Channels             []string
	EmailRecipients      []string
	WebexSpace           string
	ServiceNowAssignment string
}

var tierConfigs = map[incident.SLATier]TierConfig{
	incident.TierPlatinum: {
		Channels:             []string{"webex", "servicenow", "email"},
		EmailRecipients:      []string{"noc-critical@example.com", "sre-oncall@example.com"},
		WebexSpace:           "platinum-alerts",
		ServiceNowAssignment: "Network Operations - Critical",
	},
	incident.TierGold: {
		Channels:             []string{"webex", "servicenow", "email"},
		EmailRecipients:      []string{"noc@example.com"},
		WebexSpace:           "gold-alerts",
		ServiceNowAssignment: "Network Operations",
	},
	incident.TierSilver: {
		Channels:             []string{"webex", "email"},
		EmailRecipients:      []string{"network-alerts@example.com"},
		WebexSpace:           "silver-alerts",
		ServiceNowAssignment: "Network Operations",
	},
	incident.TierBronze: {
		Channels:        []string{"email"},
		EmailRecipients: []string{"network-alerts@example.com"},
	},
}

// SelectChannels returns the channel set and destinations for an SLA tier
// and event type. incident_detected and escalation always include
// ServiceNow regardless of tier, since both require a ticket for
// compliance tracking.
func SelectChannels(tier incident.SLATier, eventType EventType) TierConfig {
	cfg, ok := tierConfigs[tier]
	if !ok {
		cfg = tierConfigs[incident.TierSilver]
	}

	channels := append([]string(nil), cfg.Channels...)
	if eventType == EventIncidentDetected || eventType == EventEscalation {
		if !containsChannel(channels, "servicenow") {
			channels = append(channels, "servicenow")
		}
	}
	cfg.Channels = channels
	return cfg
}

func containsChannel(channels []string, target string) bool {
	for _, c := range channels {
		if c == target {
			return true
		}
	}
	return false
}
