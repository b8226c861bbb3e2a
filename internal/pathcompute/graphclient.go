package pathcompute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ComputedPath is a candidate route returned by the topology graph for a
// given source/destination and constraint set.
type ComputedPath struct {
	PathID                string
	Nodes                 []string
	Segments              []string
	TotalHops             int
	TotalDelayMS           float64
	TotalMetric           float64
	MinAvailableBandwidth float64
	RecommendedTEType     string
}

// GraphClient queries the topology for a shortest path honoring a
// constraint set. A query returning ok=false means no path exists under
// the given constraints, not a transport failure (those are returned as
// errors).
type GraphClient interface {
	ComputePath(ctx context.Context, source, destination string, c Constraints) (path ComputedPath, ok bool, err error)
}

// HTTPGraphClient queries an external Dijkstra-over-constraints service
// (the carrier's topology/knowledge-graph API) over HTTP.
type HTTPGraphClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPGraphClient constructs a client against baseURL, defaulting to a
// 30s-timeout HTTP client when none is supplied.
func NewHTTPGraphClient(baseURL string, client *http.Client) *HTTPGraphClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGraphClient{BaseURL: baseURL, HTTP: client}
}

type dijkstraRequest struct {
	Source             string   `json:"source"`
	Destination        string   `json:"destination"`
	AvoidLinks         []string `json:"avoid_links"`
	AvoidNodes         []string `json:"avoid_nodes"`
	AvoidSRLGs         []string `json:"avoid_srlgs"`
	OptimizationMetric string   `json:"optimization_metric"`
	MaxHops            int      `json:"max_hops"`
	MaxDelayMS         *float64 `json:"max_delay_ms,omitempty"`
	MinBandwidthGbps   *float64 `json:"min_bandwidth_gbps,omitempty"`
	DisjointFromPath   string   `json:"disjoint_from_path,omitempty"`
	DisjointnessType   string   `json:"disjointness_type,omitempty"`
}

type dijkstraResponse struct {
	PathFound             bool     `json:"path_found"`
	PathID                string   `json:"path_id"`
	Nodes                 []string `json:"nodes"`
	Segments              []string `json:"segments"`
	TotalHops             int      `json:"total_hops"`
	TotalDelayMS          float64  `json:"total_delay_ms"`
	TotalMetric           float64  `json:"total_metric"`
	MinAvailableBandwidth float64  `json:"min_available_bandwidth_gbps"`
	RecommendedTEType     string   `json:"recommended_te_type"`
}

// ComputePath posts the constraint set to the graph service's /dijkstra
// endpoint and decodes the candidate path, if any.
func (c *HTTPGraphClient) ComputePath(ctx context.Context, source, destination string, cons Constraints) (ComputedPath, bool, error) {
	body, err := json.Marshal(dijkstraRequest{
		Source:             source,
		Destination:        destination,
		AvoidLinks:         cons.AvoidLinks,
		AvoidNodes:         cons.AvoidNodes,
		AvoidSRLGs:         cons.AvoidSRLGs,
		OptimizationMetric: cons.OptimizationMetric,
		MaxHops:            cons.MaxHops,
		MaxDelayMS:         cons.MaxDelayMS,
		MinBandwidthGbps:   cons.MinBandwidthGbps,
		DisjointFromPath:   cons.DisjointFromPath,
		DisjointnessType:   cons.DisjointnessType,
	})
	if err != nil {
		return ComputedPath{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/dijkstra", bytes.NewReader(body))
	if err != nil {
		return ComputedPath{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ComputedPath{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ComputedPath{}, false, fmt.Errorf("graph query failed: status %d", resp.StatusCode)
	}

	var out dijkstraResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ComputedPath{}, false, err
	}
	if !out.PathFound {
		return ComputedPath{}, false, nil
	}

	return ComputedPath{
		PathID:                out.PathID,
		Nodes:                 out.Nodes,
		Segments:              out.Segments,
		TotalHops:             out.TotalHops,
		TotalDelayMS:          out.TotalDelayMS,
		TotalMetric:           out.TotalMetric,
		MinAvailableBandwidth: out.MinAvailableBandwidth,
		RecommendedTEType:     out.RecommendedTEType,
	}, true, nil
}
