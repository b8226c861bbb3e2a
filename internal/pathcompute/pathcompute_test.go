package pathcompute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraphClient struct {
	// responses is indexed by call order; each call to ComputePath pops
	// the next entry.
	responses []fakeResponse
	calls     []Constraints
}

type fakeResponse struct {
	path ComputedPath
	ok   bool
	err  error
}

func (f *fakeGraphClient) ComputePath(_ context.Context, _, _ string, c Constraints) (ComputedPath, bool, error) {
	f.calls = append(f.calls, c)
	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		return ComputedPath{}, false, nil
	}
	r := f.responses[idx]
	return r.path, r.ok, r.err
}

func TestBuildConstraintsChoosesDelayMetricByDefault(t *testing.T) {
	c := BuildConstraints([]string{"link-A"}, nil, nil, nil, nil, "")
	assert.Equal(t, "delay", c.OptimizationMetric)
	assert.Equal(t, defaultMaxHops, c.MaxHops)
	assert.Equal(t, []string{"link-A"}, c.AvoidLinks)
}

func TestBuildConstraintsUsesTEMetricForRSVPTE(t *testing.T) {
	c := BuildConstraints(nil, nil, nil, nil, nil, "rsvp-te")
	assert.Equal(t, "te", c.OptimizationMetric)
}

func TestRelaxIsCumulativeAndNeverTouchesAvoidLinks(t *testing.T) {
	base := BuildConstraints([]string{"link-A"}, []string{"node-1"}, []string{"srlg-1"}, nil, nil, "")

	level1 := Relax(base, 1)
	assert.Empty(t, level1.AvoidSRLGs)
	assert.Equal(t, []string{"link-A"}, level1.AvoidLinks)

	level3 := Relax(base, 3)
	assert.Equal(t, "igp", level3.OptimizationMetric)
	assert.Nil(t, level3.MaxDelayMS)
	assert.Equal(t, []string{"link-A"}, level3.AvoidLinks)

	level4 := Relax(base, 4)
	assert.Empty(t, level4.AvoidNodes)
	assert.Equal(t, []string{"link-A"}, level4.AvoidLinks)
}

func TestValidateFlagsDelayAndBandwidthViolations(t *testing.T) {
	sla := &RequiredSLA{MaxDelayMS: 10, MinBandwidthGbps: 10}
	path := ComputedPath{TotalDelayMS: 25, MinAvailableBandwidth: 5, TotalHops: 3}
	result := Validate(path, sla, 10)
	assert.False(t, result.Valid)
	assert.False(t, result.DelayOK)
	assert.False(t, result.BandwidthOK)
	assert.Len(t, result.Violations, 2)
}

func TestValidatePassesWithinTolerance(t *testing.T) {
	sla := &RequiredSLA{MaxDelayMS: 10, MinBandwidthGbps: 10}
	path := ComputedPath{TotalDelayMS: 19, MinAvailableBandwidth: 8, TotalHops: 3}
	result := Validate(path, sla, 10)
	assert.True(t, result.Valid)
}

func TestComputeReturnsStrictPathOnFirstSuccess(t *testing.T) {
	graph := &fakeGraphClient{responses: []fakeResponse{
		{path: ComputedPath{PathID: "p1", Nodes: []string{"A", "B"}, TotalHops: 2}, ok: true},
	}}
	c := NewComputer(graph)

	result := c.Compute(context.Background(), Request{Source: "A", Destination: "Z", DegradedLinks: []string{"link-A"}})

	require.True(t, result.PathFound)
	assert.Equal(t, 0, result.RelaxationLevel)
	assert.False(t, result.ConstraintsRelaxed)
	assert.Len(t, graph.calls, 1)
}

func TestComputeRelaxesUntilValidationPasses(t *testing.T) {
	sla := &RequiredSLA{MaxDelayMS: 10}
	graph := &fakeGraphClient{responses: []fakeResponse{
		{path: ComputedPath{PathID: "p1", TotalDelayMS: 100}, ok: true},  // level 0: fails validation
		{path: ComputedPath{PathID: "p2", TotalDelayMS: 100}, ok: true},  // level 1: fails validation
		{path: ComputedPath{PathID: "p3", TotalDelayMS: 15}, ok: true},   // level 2: passes
	}}
	c := NewComputer(graph)

	result := c.Compute(context.Background(), Request{Source: "A", Destination: "Z", RequiredSLA: sla})

	require.True(t, result.PathFound)
	assert.Equal(t, 2, result.RelaxationLevel)
	assert.True(t, result.ConstraintsRelaxed)
	assert.Len(t, graph.calls, 3)
}

func TestComputeExhaustsAllLevelsWithoutAPath(t *testing.T) {
	graph := &fakeGraphClient{}
	c := NewComputer(graph)

	result := c.Compute(context.Background(), Request{Source: "A", Destination: "Z"})

	assert.False(t, result.PathFound)
	assert.Nil(t, result.Path)
	assert.Len(t, graph.calls, 5)
}

func TestTaskHandlerDecodesPayload(t *testing.T) {
	graph := &fakeGraphClient{responses: []fakeResponse{
		{path: ComputedPath{PathID: "p1", Nodes: []string{"A", "Z"}}, ok: true},
	}}
	c := NewComputer(graph)

	out, err := c.TaskHandler(context.Background(), map[string]any{
		"source":         "A",
		"destination":    "Z",
		"degraded_links": []any{"link-A"},
	})

	require.NoError(t, err)
	assert.Equal(t, true, out["path_found"])
}
