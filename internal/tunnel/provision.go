package tunnel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// PathType selects whether the controller should honor the computed path's
// explicit hop list or let the controller's own path engine choose.
type PathType string

const (
	PathTypeExplicit PathType = "explicit"
	PathTypeDynamic  PathType = "dynamic"
)

// ProvisionRequest is the provision_tunnel task payload.
type ProvisionRequest struct {
	IncidentID    string
	ServiceID     string
	RequestedTE   incident.TEType
	HeadEnd       string
	EndPoint      string
	ComputedPath  *incident.ProtectionPath
	PathType      PathType
	Capabilities  DeviceCapabilities
}

// ProvisionResult is the provision_tunnel task response.
type ProvisionResult struct {
	Success           bool
	TunnelID          string
	BindingSID        string
	TEType            incident.TEType
	OperationalStatus incident.OperationalStatus
	Error             string
}

// verifyPollInterval and verifyTimeout bound the VERIFY step's polling loop.
const (
	verifyPollInterval = 2 * time.Second
	verifyTimeout      = 30 * time.Second
)

// Provisioner runs the DETECT -> BUILD -> CREATE -> VERIFY -> STEER ->
// RETURN flow against a northbound Controller, allocating binding-SIDs from
// the shared Incident Store's BSID pool.
type Provisioner struct {
	Store      store.Store
	Controller Controller
	// Sleep is overridable for tests exercising the VERIFY poll loop without
	// a real clock.
	Sleep func(d time.Duration)
}

// NewProvisioner constructs a Provisioner backed by st and ctrl.
func NewProvisioner(st store.Store, ctrl Controller) *Provisioner {
	return &Provisioner{Store: st, Controller: ctrl, Sleep: time.Sleep}
}

// Provision runs the full flow for one request. A retry of the same
// (incident, head-end, end-point) reuses the binding-SID allocated by a
// prior attempt rather than allocating a second one.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) (ProvisionResult, error) {
	teType := DetectTEType(req.RequestedTE, req.Capabilities)

	bsid, err := p.allocateOrReuseBSID(ctx, req)
	if err != nil {
		return ProvisionResult{Success: false, Error: err.Error()}, err
	}

	cfg := CreateConfig{
		TEType:                teType,
		HeadEnd:               req.HeadEnd,
		EndPoint:              req.EndPoint,
		Color:                 colorFor(req.IncidentID),
		PathName:              fmt.Sprintf("protection-%s", req.IncidentID),
		BindingSID:            bsid,
		OptimizationObjective: "delay",
		Protected:             true,
	}
	if req.PathType == PathTypeExplicit && req.ComputedPath != nil {
		cfg.ExplicitHops = req.ComputedPath.Nodes
	}

	created, err := p.Controller.Create(ctx, cfg)
	if err != nil {
		return ProvisionResult{Success: false, TEType: teType, BindingSID: bsid, Error: err.Error()}, err
	}
	if !created.Success {
		return ProvisionResult{Success: false, TEType: teType, BindingSID: bsid, Error: created.Message}, nil
	}

	status, err := p.verify(ctx, created.TunnelID, teType)
	if err != nil {
		return ProvisionResult{Success: false, TunnelID: created.TunnelID, TEType: teType, BindingSID: bsid, Error: err.Error()}, err
	}
	if status != incident.OperationalUp {
		return ProvisionResult{
			Success: false, TunnelID: created.TunnelID, TEType: teType, BindingSID: bsid,
			OperationalStatus: status, Error: "tunnel did not reach operational status up",
		}, nil
	}

	if err := p.Controller.Steer(ctx, created.TunnelID); err != nil {
		return ProvisionResult{Success: false, TunnelID: created.TunnelID, TEType: teType, BindingSID: bsid, Error: err.Error()}, err
	}

	return ProvisionResult{
		Success:           true,
		TunnelID:          created.TunnelID,
		BindingSID:        bsid,
		TEType:            teType,
		OperationalStatus: incident.OperationalUp,
	}, nil
}

// allocateOrReuseBSID checks for a prior allocation recorded under this
// request's (incident, head-end, end-point) key before minting a new one,
// so a retried provisioning attempt never leaks a binding-SID.
func (p *Provisioner) allocateOrReuseBSID(ctx context.Context, req ProvisionRequest) (string, error) {
	key := store.TunnelAllocationKey(req.IncidentID, req.HeadEnd, req.EndPoint)
	if data, ok, err := p.Store.GetJSON(ctx, key); err != nil {
		return "", err
	} else if ok {
		return string(data), nil
	}

	bsid, err := AllocateBSID(ctx, p.Store, req.HeadEnd)
	if err != nil {
		return "", err
	}
	bsidStr := strconv.Itoa(bsid)
	if err := p.Store.SetJSON(ctx, key, []byte(bsidStr), 0); err != nil {
		return "", err
	}
	return bsidStr, nil
}

// verify polls the controller until the tunnel reports operational status
// "up" or the poll budget is exhausted, returning the last observed status.
func (p *Provisioner) verify(ctx context.Context, tunnelID string, teType incident.TEType) (incident.OperationalStatus, error) {
	deadline := verifyTimeout
	elapsed := time.Duration(0)
	var last incident.OperationalStatus

	for {
		status, err := p.Controller.Verify(ctx, tunnelID, teType)
		if err != nil {
			return "", err
		}
		last = status
		if status == incident.OperationalUp {
			return status, nil
		}
		if elapsed >= deadline {
			return last, nil
		}
		p.Sleep(verifyPollInterval)
		elapsed += verifyPollInterval
	}
}

// colorFor derives a stable SR policy color from the incident ID so retries
// of the same incident reuse the same color rather than minting a new
// policy identity on every attempt.
func colorFor(incidentID string) int {
	h := 0
	for _, r := range incidentID {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	return 100 + h%100
}

// Delete reads back the tunnel's binding-SID, deletes the tunnel via the
// controller, and only then returns the binding-SID to the pool: the
// delete must succeed first, or the same binding-SID could be
// double-allocated while the old tunnel is still live.
func (p *Provisioner) Delete(ctx context.Context, incidentID, headEnd, endPoint, tunnelID string, teType incident.TEType) error {
	key := store.TunnelAllocationKey(incidentID, headEnd, endPoint)
	data, ok, err := p.Store.GetJSON(ctx, key)
	if err != nil {
		return err
	}

	if err := p.Controller.Delete(ctx, tunnelID, teType); err != nil {
		return err
	}

	if !ok {
		return nil
	}
	bsid, err := strconv.Atoi(string(data))
	if err != nil {
		return nil
	}
	if err := ReleaseBSID(ctx, p.Store, headEnd, bsid); err != nil {
		return err
	}
	return p.Store.Delete(ctx, key)
}
