package tunnel

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

// HTTPController talks to the carrier's SDN controller (CNC) northbound
// REST API to create, verify, steer, and delete SR-MPLS/SRv6 tunnels, and
// to rebalance ECMP weights during cutover. It mirrors pathcompute's
// HTTPGraphClient: a thin stdlib net/http wrapper, no SDK.
type HTTPController struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewHTTPController constructs an HTTPController against baseURL, defaulting
// to a 30s-timeout client when none is supplied.
func NewHTTPController(baseURL, token string, client *http.Client) *HTTPController {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPController{BaseURL: baseURL, Token: token, HTTP: client}
}

type createTunnelRequest struct {
	TEType                string   `json:"te_type"`
	HeadEnd               string   `json:"head_end"`
	EndPoint              string   `json:"end_point"`
	Color                 int      `json:"color,omitempty"`
	PathName              string   `json:"path_name"`
	BindingSID            string   `json:"binding_sid,omitempty"`
	ExplicitHops          []string `json:"explicit_hops,omitempty"`
	OptimizationObjective string   `json:"optimization_objective,omitempty"`
	Protected             bool     `json:"protected"`
}

type createTunnelResponse struct {
	Success           bool   `json:"success"`
	TunnelID          string `json:"tunnel_id"`
	OperationalStatus string `json:"operational_status"`
	Message           string `json:"message"`
}

// Create provisions a tunnel via POST /api/v1/tunnels.
func (c *HTTPController) Create(ctx context.Context, cfg CreateConfig) (CreateResult, error) {
	body, err := json.Marshal(createTunnelRequest{
		TEType:                string(cfg.TEType),
		HeadEnd:               cfg.HeadEnd,
		EndPoint:              cfg.EndPoint,
		Color:                 cfg.Color,
		PathName:              cfg.PathName,
		BindingSID:            cfg.BindingSID,
		ExplicitHops:          cfg.ExplicitHops,
		OptimizationObjective: cfg.OptimizationObjective,
		Protected:             cfg.Protected,
	})
	if err != nil {
		return CreateResult{}, err
	}

	var out createTunnelResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/tunnels", body, &out); err != nil {
		return CreateResult{}, err
	}

	return CreateResult{
		Success:           out.Success,
		TunnelID:          out.TunnelID,
		OperationalStatus: incident.OperationalStatus(out.OperationalStatus),
		Message:           out.Message,
	}, nil
}

type verifyResponse struct {
	OperationalStatus string `json:"operational_status"`
}

// Verify polls GET /api/v1/tunnels/{id}/status for operational state.
func (c *HTTPController) Verify(ctx context.Context, tunnelID string, teType incident.TEType) (incident.OperationalStatus, error) {
	var out verifyResponse
	path := fmt.Sprintf("/api/v1/tunnels/%s/status?te_type=%s", tunnelID, teType)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return incident.OperationalStatus(out.OperationalStatus), nil
}

// Steer activates traffic steering (BGP Color/ODN advertisement) for the
// tunnel via POST /api/v1/tunnels/{id}/steer.
func (c *HTTPController) Steer(ctx context.Context, tunnelID string) error {
	path := fmt.Sprintf("/api/v1/tunnels/%s/steer", tunnelID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Delete tears down the tunnel via DELETE /api/v1/tunnels/{id}.
func (c *HTTPController) Delete(ctx context.Context, tunnelID string, teType incident.TEType) error {
	path := fmt.Sprintf("/api/v1/tunnels/%s?te_type=%s", tunnelID, teType)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type updateWeightsRequest struct {
	ProtectionTunnelID string `json:"protection_tunnel_id"`
	OriginalPathID     string `json:"original_path_id"`
	ProtectionWeight   int    `json:"protection_weight"`
	OriginalWeight     int    `json:"original_weight"`
}

// UpdateWeights rebalances ECMP weights between the protection tunnel and
// the original path via POST /api/v1/ecmp/weights, implementing
// restoration.WeightUpdater.
func (c *HTTPController) UpdateWeights(ctx context.Context, protectionTunnelID, originalPathID string, protectionWeight, originalWeight int) error {
	body, err := json.Marshal(updateWeightsRequest{
		ProtectionTunnelID: protectionTunnelID,
		OriginalPathID:     originalPathID,
		ProtectionWeight:   protectionWeight,
		OriginalWeight:     originalWeight,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/v1/ecmp/weights", body, nil)
}

func (c *HTTPController) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("controller request %s %s failed: %s: %s", method, path, resp.Status, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
