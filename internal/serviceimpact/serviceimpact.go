// Package serviceimpact implements the Service Impact assessor: given a set
// of degraded links, it ranks the customer services riding those links by
// SLA tier and impact level, and reports the single highest-priority
// service for the orchestrator to carry as the incident's primary service.
package serviceimpact

import (
	"sort"
	"strings"

	"github.com/netguard/fabric/internal/incident"
)

// ImpactLevel classifies how badly a service is affected by the current
// set of degraded links.
type ImpactLevel string

const (
	ImpactFullOutage ImpactLevel = "full_outage"
	ImpactDegraded   ImpactLevel = "degraded"
	ImpactAtRisk     ImpactLevel = "at_risk"
)

// impactMultiplier weighs impact level into the priority score; higher
// multiplier sorts ahead of lower within the same SLA tier.
var impactMultiplier = map[ImpactLevel]int{
	ImpactFullOutage: 100,
	ImpactDegraded:   50,
	ImpactAtRisk:     10,
}

// tierPriority ranks SLA tiers for sorting: lower number, higher priority.
var tierPriority = map[incident.SLATier]int{
	incident.TierPlatinum: 1,
	incident.TierGold:     2,
	incident.TierSilver:   3,
	incident.TierBronze:   4,
}

// Service is the upstream service-inventory record as reported by the
// network controller, before impact/SLA enrichment.
type Service struct {
	ServiceID            string
	ServiceName          string
	ServiceType          string
	EndpointA            string
	EndpointZ            string
	CustomerID           string
	CustomerName         string
	SLATier              incident.SLATier
	CurrentTEType        string
	CurrentPath          []string
	RedundancyAvailable  bool
}

// AffectedService is a Service enriched with its impact assessment and SLA
// tier config, ready for orchestrator consumption and ranking.
type AffectedService struct {
	ServiceID             string
	ServiceName           string
	ServiceType           string
	EndpointA             string
	EndpointZ             string
	CustomerID            string
	CustomerName          string
	SLATier               incident.SLATier
	CurrentTEType         string
	CurrentPath           []string
	ImpactLevel           ImpactLevel
	RedundancyAvailable   bool
	AffectedByLink        string
	PriorityScore         int
	HoldTimer             incident.SLATier
	AutoProtect           bool
}

// Result is the outcome of assessing impact across every candidate service
// for an incident's degraded links.
type Result struct {
	TotalAffected    int
	PrimaryService   string
	AffectedServices []AffectedService
	ServicesByTier   map[incident.SLATier]int
	ServicesByImpact map[ImpactLevel]int
	AutoProtect      bool
}

// analyzeImpact determines how badly degraded links affect one service:
// full outage when every path link is degraded and no redundancy exists;
// degraded when some but not all are (or redundancy covers the rest);
// at-risk when none of the service's path links are currently degraded.
func analyzeImpact(svc Service, degradedLinks []string) (ImpactLevel, []string) {
	var affected []string
	for _, link := range degradedLinks {
		if linkAffectsService(link, svc) {
			affected = append(affected, link)
		}
	}

	totalPathLinks := len(svc.CurrentPath)
	if totalPathLinks == 0 {
		totalPathLinks = 1
	}

	switch {
	case len(affected) == 0:
		return ImpactAtRisk, affected
	case len(affected) == totalPathLinks && !svc.RedundancyAvailable:
		return ImpactFullOutage, affected
	default:
		return ImpactDegraded, affected
	}
}

// linkAffectsService checks whether a degraded link lies on the service's
// current path, falling back to an endpoint-name heuristic when path data
// is incomplete.
func linkAffectsService(linkID string, svc Service) bool {
	for _, p := range svc.CurrentPath {
		if p == linkID {
			return true
		}
	}
	if svc.EndpointA != "" && strings.Contains(linkID, svc.EndpointA) {
		return true
	}
	if svc.EndpointZ != "" && strings.Contains(linkID, svc.EndpointZ) {
		return true
	}
	return false
}

// enrich computes one service's AffectedService record: impact level,
// priority score, and tier-driven hold-timer/auto-protect flags.
func enrich(svc Service, degradedLinks []string) AffectedService {
	tier := svc.SLATier
	if tier == "" {
		tier = incident.TierBronze
	}

	impactLevel, affectedLinks := analyzeImpact(svc, degradedLinks)

	priority, ok := tierPriority[tier]
	if !ok {
		priority = tierPriority[incident.TierBronze]
	}
	// Lower tier-priority number and higher impact multiplier both push the
	// score down; lowest score sorts first.
	score := priority*1000 - impactMultiplier[impactLevel]

	affectedByLink := "unknown"
	if len(affectedLinks) > 0 {
		affectedByLink = affectedLinks[0]
	}

	return AffectedService{
		ServiceID:           svc.ServiceID,
		ServiceName:         firstNonEmpty(svc.ServiceName, svc.ServiceID),
		ServiceType:         svc.ServiceType,
		EndpointA:           svc.EndpointA,
		EndpointZ:           svc.EndpointZ,
		CustomerID:          svc.CustomerID,
		CustomerName:        svc.CustomerName,
		SLATier:             tier,
		CurrentTEType:       svc.CurrentTEType,
		CurrentPath:         svc.CurrentPath,
		ImpactLevel:         impactLevel,
		RedundancyAvailable: svc.RedundancyAvailable,
		AffectedByLink:      affectedByLink,
		PriorityScore:       score,
		HoldTimer:           tier,
		AutoProtect:         autoProtect(tier),
	}
}

// autoProtect reports whether this SLA tier is automatically protected
// without manual approval; bronze services require operator sign-off.
func autoProtect(tier incident.SLATier) bool {
	return tier != incident.TierBronze
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Assess ranks every candidate service by priority score (tier first, then
// impact severity) and reports the aggregate counts the orchestrator needs
// to decide whether to proceed with protection.
func Assess(services []Service, degradedLinks []string) Result {
	affected := make([]AffectedService, 0, len(services))
	byTier := make(map[incident.SLATier]int)
	byImpact := make(map[ImpactLevel]int)
	autoProtectAny := false

	for _, svc := range services {
		as := enrich(svc, degradedLinks)
		affected = append(affected, as)
		byTier[as.SLATier]++
		byImpact[as.ImpactLevel]++
		if as.AutoProtect {
			autoProtectAny = true
		}
	}

	sort.SliceStable(affected, func(i, j int) bool {
		return affected[i].PriorityScore < affected[j].PriorityScore
	})

	result := Result{
		TotalAffected:    len(affected),
		AffectedServices: affected,
		ServicesByTier:   byTier,
		ServicesByImpact: byImpact,
		AutoProtect:      autoProtectAny,
	}
	if len(affected) > 0 {
		result.PrimaryService = affected[0].ServiceID
	}
	return result
}
