package trafficanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPTopologyClient queries the knowledge-graph topology service for link
// inventory and PE-pair paths over plain HTTP, mirroring pathcompute's
// HTTPGraphClient.
type HTTPTopologyClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPTopologyClient constructs an HTTPTopologyClient. A nil client
// defaults to http.DefaultClient.
func NewHTTPTopologyClient(baseURL string, client *http.Client) *HTTPTopologyClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTopologyClient{BaseURL: baseURL, HTTP: client}
}

type linksResponse struct {
	Links []struct {
		LinkID             string  `json:"link_id"`
		EndpointA          string  `json:"endpoint_a"`
		EndpointZ          string  `json:"endpoint_z"`
		CapacityGbps       float64 `json:"capacity_gbps"`
		CurrentTrafficGbps float64 `json:"current_traffic_gbps"`
	} `json:"links"`
}

// Links fetches the current link inventory from GET /api/v1/topology/links.
func (c *HTTPTopologyClient) Links(ctx context.Context) ([]Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/topology/links", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("topology links query failed: %s: %s", resp.Status, string(body))
	}

	var parsed linksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	links := make([]Link, 0, len(parsed.Links))
	for _, l := range parsed.Links {
		links = append(links, Link{
			LinkID:             l.LinkID,
			EndpointA:          l.EndpointA,
			EndpointZ:          l.EndpointZ,
			CapacityGbps:       l.CapacityGbps,
			CurrentTrafficGbps: l.CurrentTrafficGbps,
		})
	}
	return links, nil
}

type pathLinksRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type pathLinksResponse struct {
	Links []string `json:"links"`
}

// PathLinks fetches the link sequence between two PEs from POST
// /api/v1/topology/path-links.
func (c *HTTPTopologyClient) PathLinks(ctx context.Context, srcPE, dstPE string) ([]string, error) {
	body, err := json.Marshal(pathLinksRequest{Source: srcPE, Destination: dstPE})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/topology/path-links", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("topology path-links query failed: %s: %s", resp.Status, string(respBody))
	}

	var parsed pathLinksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Links, nil
}
