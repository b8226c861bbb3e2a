package restoration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSampler queries the carrier's measurement collector (PCA/telemetry)
// for a windowed SLA sample on the original path, mirroring pathcompute's
// HTTPGraphClient idiom: a thin stdlib net/http wrapper, no SDK.
type HTTPSampler struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPSampler constructs an HTTPSampler against baseURL, defaulting to a
// 10s-timeout client when none is supplied.
func NewHTTPSampler(baseURL string, client *http.Client) *HTTPSampler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSampler{BaseURL: baseURL, HTTP: client}
}

type sampleResponse struct {
	LatencyMS float64 `json:"latency_ms"`
	JitterMS  float64 `json:"jitter_ms"`
	LossPct   float64 `json:"loss_pct"`
}

// Sample fetches the latest windowed measurement for originalPathID from
// GET /api/v1/sla/sample.
func (c *HTTPSampler) Sample(ctx context.Context, originalPathID string) (Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/api/v1/sla/sample?path_id="+originalPathID, nil)
	if err != nil {
		return Sample{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Sample{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Sample{}, fmt.Errorf("sla sample query failed: %s: %s", resp.Status, string(body))
	}

	var out sampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Sample{}, err
	}
	return Sample{LatencyMS: out.LatencyMS, JitterMS: out.JitterMS, LossPct: out.LossPct}, nil
}
