package serviceimpact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/incident"
)

func TestAssessRanksByTierThenImpact(t *testing.T) {
	services := []Service{
		{ServiceID: "svc-bronze", SLATier: incident.TierBronze, CurrentPath: []string{"link-A"}},
		{ServiceID: "svc-platinum", SLATier: incident.TierPlatinum, CurrentPath: []string{"link-A"}},
		{ServiceID: "svc-gold", SLATier: incident.TierGold, CurrentPath: []string{"link-A"}},
	}

	result := Assess(services, []string{"link-A"})

	require.Len(t, result.AffectedServices, 3)
	assert.Equal(t, "svc-platinum", result.PrimaryService)
	assert.Equal(t, "svc-platinum", result.AffectedServices[0].ServiceID)
	assert.Equal(t, "svc-gold", result.AffectedServices[1].ServiceID)
	assert.Equal(t, "svc-bronze", result.AffectedServices[2].ServiceID)
}

func TestAssessServiceNotOnDegradedPathIsAtRisk(t *testing.T) {
	services := []Service{
		{ServiceID: "svc-1", SLATier: incident.TierGold, CurrentPath: []string{"link-Z"}},
	}
	result := Assess(services, []string{"link-A"})
	require.Len(t, result.AffectedServices, 1)
	assert.Equal(t, ImpactAtRisk, result.AffectedServices[0].ImpactLevel)
}

func TestAnalyzeImpactFullOutageWithoutRedundancy(t *testing.T) {
	svc := Service{ServiceID: "svc-1", CurrentPath: []string{"link-A"}, RedundancyAvailable: false}
	level, affected := analyzeImpact(svc, []string{"link-A"})
	assert.Equal(t, ImpactFullOutage, level)
	assert.Equal(t, []string{"link-A"}, affected)
}

func TestAnalyzeImpactDegradedWithRedundancy(t *testing.T) {
	svc := Service{ServiceID: "svc-1", CurrentPath: []string{"link-A"}, RedundancyAvailable: true}
	level, _ := analyzeImpact(svc, []string{"link-A"})
	assert.Equal(t, ImpactDegraded, level)
}

func TestAnalyzeImpactAtRiskWhenNoLinksMatch(t *testing.T) {
	svc := Service{ServiceID: "svc-1", CurrentPath: []string{"link-Z"}}
	level, affected := analyzeImpact(svc, []string{"link-A"})
	assert.Equal(t, ImpactAtRisk, level)
	assert.Empty(t, affected)
}

func TestLinkAffectsServiceFallsBackToEndpointHeuristic(t *testing.T) {
	svc := Service{ServiceID: "svc-1", EndpointA: "PE1", EndpointZ: "PE2"}
	assert.True(t, linkAffectsService("PE1-PE2-link", svc))
	assert.False(t, linkAffectsService("PE9-PE8-link", svc))
}

func TestBronzeServicesAreNotAutoProtected(t *testing.T) {
	assert.False(t, autoProtect(incident.TierBronze))
	assert.True(t, autoProtect(incident.TierSilver))
}

func TestTaskHandlerDecodesPayloadAndRanks(t *testing.T) {
	payload := map[string]any{
		"degraded_links": []any{"link-A"},
		"services": []any{
			map[string]any{
				"service_id":   "svc-1",
				"sla_tier":     "platinum",
				"current_path": []any{"link-A"},
			},
			map[string]any{
				"service_id":   "svc-2",
				"sla_tier":     "bronze",
				"current_path": []any{"link-A"},
			},
		},
	}

	result, err := TaskHandler(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 2, result["total_affected"])
	assert.Equal(t, "svc-1", result["primary_service"])
}
