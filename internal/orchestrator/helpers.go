package orchestrator

import (
	"time"

	"github.com/netguard/fabric/internal/incident"
)

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// tierRank orders SLA tiers from most to least stringent, for picking the
// highest tier present among a set of affected services.
var tierRank = []incident.SLATier{incident.TierPlatinum, incident.TierGold, incident.TierSilver, incident.TierBronze}

// highestTier returns the most stringent tier with a nonzero count in
// byTier (as decoded from service_impact's services_by_tier map), defaulting
// to Silver when none are present.
func highestTier(byTier map[string]any) incident.SLATier {
	for _, tier := range tierRank {
		if int(asFloat(byTier[string(tier)])) > 0 {
			return tier
		}
	}
	return incident.TierSilver
}
