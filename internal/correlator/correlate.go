package correlator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// Rule is a correlation rule: alerts that share the same group-value
// within Window of each other are folded into the same incident.
type Rule struct {
	Name   string
	Window time.Duration
	// GroupBy extracts the grouping value for an alert under this rule.
	// A rule whose grouping key cannot be derived (e.g. no shared-node
	// data available) returns ok=false and is skipped for that alert.
	GroupBy func(alert incident.Alert) (group string, ok bool)
}

// Rules is the declared, priority-ordered rule list: first match wins.
// Evaluated in this order because same-link correlation is the narrowest
// and most specific signal; path-correlation is the widest and should only
// apply once the tighter rules have had a chance to match.
func Rules() []Rule {
	return []Rule{
		{
			Name:   "same-link-multiple-metrics",
			Window: 60 * time.Second,
			GroupBy: func(a incident.Alert) (string, bool) {
				if a.LinkID == "" {
					return "", false
				}
				return a.LinkID, true
			},
		},
		{
			Name:   "adjacent-link-failures",
			Window: 30 * time.Second,
			GroupBy: func(a incident.Alert) (string, bool) {
				if a.SourceEndpoint == "" {
					return "", false
				}
				return a.SourceEndpoint, true
			},
		},
		{
			Name:   "path-correlation",
			Window: 120 * time.Second,
			GroupBy: func(a incident.Alert) (string, bool) {
				policyPath, ok := a.RawPayload["policy_path"].(string)
				if !ok || policyPath == "" {
					return "", false
				}
				return policyPath, true
			},
		},
	}
}

// CorrelateResult is the outcome of correlating one alert.
type CorrelateResult struct {
	IncidentID        string
	CorrelationRule    string
	CorrelationReason  string
	CorrelatedAlerts   []string
}

// Correlate evaluates the rule list in declared order against alert,
// inheriting an existing incident ID on the first match or minting a new
// one otherwise, then records the alert's incident ID in every applicable
// rule's time-ordered set so future alerts can find it regardless of which
// rule eventually fires for them.
func Correlate(ctx context.Context, st store.Store, alert incident.Alert) (CorrelateResult, error) {
	now := alert.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	type applicable struct {
		rule  Rule
		group string
	}
	var groups []applicable

	var result CorrelateResult
	for _, rule := range Rules() {
		group, ok := rule.GroupBy(alert)
		if !ok {
			continue
		}
		groups = append(groups, applicable{rule, group})

		if result.IncidentID == "" {
			key := store.CorrelationGroupKey(rule.Name, group)
			members, err := st.ZRangeByScore(ctx, key, float64(now.Add(-rule.Window).Unix()), float64(now.Unix()))
			if err != nil {
				return CorrelateResult{}, err
			}
			if len(members) > 0 {
				result.IncidentID = members[len(members)-1]
				result.CorrelationRule = rule.Name
				result.CorrelationReason = fmt.Sprintf("matched rule %q within %s window", rule.Name, rule.Window)
				result.CorrelatedAlerts = members
			}
		}
	}

	if result.IncidentID == "" {
		result.IncidentID = newIncidentID(now)
		result.CorrelationReason = "no matching rule; new incident minted"
	}

	for _, a := range groups {
		key := store.CorrelationGroupKey(a.rule.Name, a.group)
		if err := st.ZAdd(ctx, key, float64(now.Unix()), result.IncidentID, 2*a.rule.Window); err != nil {
			return CorrelateResult{}, err
		}
	}

	return result, nil
}

// newIncidentID mints a time-ordered incident identifier:
// INC-{yyyymmddHHMMSS}-{6hex}.
func newIncidentID(now time.Time) string {
	return fmt.Sprintf("INC-%s-%s", now.UTC().Format("20060102150405"), uuid.NewString()[:6])
}
