package serviceimpact

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

// Inventory resolves the services riding a set of degraded links from the
// carrier's service inventory/CMDB, so the assessor does not require the
// caller to already know which services are affected.
type Inventory interface {
	ServicesForLinks(ctx context.Context, linkIDs []string) ([]Service, error)
}

// HTTPInventory queries the service inventory over plain HTTP, mirroring
// pathcompute's HTTPGraphClient idiom.
type HTTPInventory struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPInventory constructs an HTTPInventory against baseURL, defaulting
// to a 10s-timeout client when none is supplied.
func NewHTTPInventory(baseURL string, client *http.Client) *HTTPInventory {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPInventory{BaseURL: baseURL, HTTP: client}
}

type servicesForLinksRequest struct {
	LinkIDs []string `json:"link_ids"`
}

type inventoryService struct {
	ServiceID           string   `json:"service_id"`
	ServiceName         string   `json:"service_name"`
	ServiceType         string   `json:"service_type"`
	EndpointA           string   `json:"endpoint_a"`
	EndpointZ           string   `json:"endpoint_z"`
	CustomerID          string   `json:"customer_id"`
	CustomerName        string   `json:"customer_name"`
	SLATier             string   `json:"sla_tier"`
	CurrentTEType       string   `json:"current_te_type"`
	CurrentPath         []string `json:"current_path"`
	RedundancyAvailable bool     `json:"redundancy_available"`
}

type servicesForLinksResponse struct {
	Services []inventoryService `json:"services"`
}

// ServicesForLinks posts the degraded-link set to POST
// /api/v1/services/for-links and decodes the candidate services.
func (c *HTTPInventory) ServicesForLinks(ctx context.Context, linkIDs []string) ([]Service, error) {
	body, err := json.Marshal(servicesForLinksRequest{LinkIDs: linkIDs})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/services/for-links", bytes.NewReader(body))
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
		return nil, fmt.Errorf("service inventory query failed: %s: %s", resp.Status, string(respBody))
	}

	var out servicesForLinksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	services := make([]Service, 0, len(out.Services))
	for _, s := range out.Services {
		services = append(services, Service{
			ServiceID:           s.ServiceID,
			ServiceName:         s.ServiceName,
			ServiceType:         s.ServiceType,
			EndpointA:           s.EndpointA,
			EndpointZ:           s.EndpointZ,
			CustomerID:          s.CustomerID,
			CustomerName:        s.CustomerName,
			SLATier:             incident.SLATier(s.SLATier),
			CurrentTEType:       s.CurrentTEType,
			CurrentPath:         s.CurrentPath,
			RedundancyAvailable: s.RedundancyAvailable,
		})
	}
	return services, nil
}

// Assessor adapts Assess to the A2A Handler signature, resolving the
// candidate service set from an Inventory when the caller's payload does
// not already carry one.
type Assessor struct {
	Inventory Inventory
}

// NewAssessor constructs an Assessor backed by inv.
func NewAssessor(inv Inventory) *Assessor {
	return &Assessor{Inventory: inv}
}

// TaskHandler registers on the assess_impact task-type: it uses the
// payload's "services" list when present (an orchestrator that already
// holds a snapshot), otherwise resolves services for the degraded links
// via the configured Inventory.
func (a *Assessor) TaskHandler(ctx context.Context, payload map[string]any) (map[string]any, error) {
	degradedLinks := toStringSlice(payload["degraded_links"])

	services := decodeServices(payload["services"])
	if len(services) == 0 && a.Inventory != nil {
		fetched, err := a.Inventory.ServicesForLinks(ctx, degradedLinks)
		if err != nil {
			return nil, fmt.Errorf("resolve services for degraded links: %w", err)
		}
		services = fetched
	}

	return assessResultPayload(Assess(services, degradedLinks)), nil
}
