package trafficanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/netguard/fabric/internal/incident"
)

// HTTPServiceLookup resolves which services ride a set of at-risk links by
// querying the service inventory, mirroring HTTPTopologyClient's idiom.
type HTTPServiceLookup struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPServiceLookup constructs an HTTPServiceLookup against baseURL,
// defaulting to a 10s-timeout client when none is supplied.
func NewHTTPServiceLookup(baseURL string, client *http.Client) *HTTPServiceLookup {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPServiceLookup{BaseURL: baseURL, HTTP: client}
}

type servicesOverLinksRequest struct {
	LinkIDs []string `json:"link_ids"`
}

type servicesOverLinksResponse struct {
	ServiceIDs  []string `json:"service_ids"`
	HighestTier string   `json:"highest_tier"`
}

// ServicesOverLinks posts the at-risk link set to POST
// /api/v1/services/over-links and reports the affected services and the
// most stringent SLA tier among them.
func (c *HTTPServiceLookup) ServicesOverLinks(ctx context.Context, linkIDs []string) ([]string, incident.SLATier, error) {
	body, err := json.Marshal(servicesOverLinksRequest{LinkIDs: linkIDs})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/services/over-links", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("service lookup failed: %s: %s", resp.Status, string(respBody))
	}

	var out servicesOverLinksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", err
	}
	return out.ServiceIDs, incident.SLATier(out.HighestTier), nil
}
