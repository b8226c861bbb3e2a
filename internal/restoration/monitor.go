package restoration

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

const (
	defaultPollInterval  = 30 * time.Second
	maxPollAttempts      = 100
	stabilityGoodSamples = 3
)

// TunnelCleaner deletes the protection tunnel and releases its binding-SID,
// the CLEANUP step's responsibility. Implemented by internal/tunnel's
// Provisioner.Delete in production wiring.
type TunnelCleaner interface {
	Delete(ctx context.Context, incidentID, headEnd, endPoint, tunnelID string, teType incident.TEType) error
}

// Request is the monitor_restoration task payload.
type Request struct {
	IncidentID         string
	ProtectionTunnelID string
	OriginalPathID     string
	SLATier            incident.SLATier
	CutoverMode        incident.CutoverMode
	HeadEnd            string
	EndPoint           string
	TEType             incident.TEType
	Thresholds         Thresholds
}

// Result is the monitor_restoration task response.
type Result struct {
	Restored                   bool
	HoldTimerSeconds           int
	CutoverMode                incident.CutoverMode
	TunnelDeleted              bool
	TotalProtectionDurationSec int
	TimedOut                   bool
	RolledBack                 bool
}

// Monitor runs POLL -> CHECK -> (POLL | START_TIMER -> WAIT -> VERIFY ->
// (RESET | CUTOVER -> (VERIFY | CLEANUP -> RETURN))), bounded by
// maxPollAttempts polls.
type Monitor struct {
	Store   store.Store
	Sampler Sampler
	Weights WeightUpdater
	Cleaner TunnelCleaner
	Sleep   func(d time.Duration)
	// Limiter paces the POLL loop; defaults to one poll per
	// defaultPollInterval when nil.
	Limiter *rate.Limiter
	// Now returns the current time; defaults to time.Now. It stamps the hold
	// timer's start and the total protection duration; the expiry check
	// after WAIT is made at the timer's own expiry time, not at Now.
	Now func() time.Time
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// NewMonitor constructs a Monitor with the default poll-interval pacing.
func NewMonitor(st store.Store, sampler Sampler, weights WeightUpdater, cleaner TunnelCleaner) *Monitor {
	return &Monitor{
		Store:   st,
		Sampler: sampler,
		Weights: weights,
		Cleaner: cleaner,
		Sleep:   time.Sleep,
		Limiter: rate.NewLimiter(rate.Every(defaultPollInterval), 1),
	}
}

// Run executes the full state machine for one incident's restoration.
func (m *Monitor) Run(ctx context.Context, req Request) (Result, error) {
	start := m.now()

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		sample, err := m.Sampler.Sample(ctx, req.OriginalPathID)
		if err != nil {
			return Result{}, err
		}

		if !sample.WithinTier(req.Thresholds) {
			if err := m.wait(ctx); err != nil {
				return Result{}, err
			}
			continue
		}

		restored, result, err := m.holdAndVerify(ctx, req, start)
		if err != nil {
			return Result{}, err
		}
		if restored {
			return result, nil
		}
		// VERIFY failed or the timer was cancelled mid-WAIT: return to POLL.
	}

	return Result{Restored: false, TimedOut: true, CutoverMode: req.CutoverMode}, nil
}

// holdAndVerify runs START_TIMER -> WAIT -> VERIFY -> CUTOVER -> CLEANUP for
// one recovery observation. ok=false means control should return to POLL
// (timer cancelled or stability check failed), not that the whole run
// failed.
func (m *Monitor) holdAndVerify(ctx context.Context, req Request, start time.Time) (ok bool, result Result, err error) {
	record, err := StartTimer(ctx, m.Store, req.IncidentID, req.SLATier, m.now())
	if err != nil {
		return false, Result{}, err
	}

	hold := incident.HoldDuration(req.SLATier)
	m.Sleep(hold)

	expired, current, err := CheckTimer(ctx, m.Store, req.IncidentID, record.ExpiryTime)
	if err != nil {
		return false, Result{}, err
	}
	if current.Status == incident.HoldTimerCancelled {
		return false, Result{}, nil
	}
	if !expired {
		return false, Result{}, nil
	}

	interval := incident.StabilityCheckInterval(req.SLATier)
	for i := 0; i < stabilityGoodSamples; i++ {
		sample, err := m.Sampler.Sample(ctx, req.OriginalPathID)
		if err != nil {
			return false, Result{}, err
		}
		if !sample.WithinTier(req.Thresholds) {
			if err := CancelTimer(ctx, m.Store, req.IncidentID); err != nil {
				return false, Result{}, err
			}
			return false, Result{}, nil
		}
		if i < stabilityGoodSamples-1 {
			m.Sleep(interval)
		}
	}

	var cutover CutoverResult
	switch req.CutoverMode {
	case incident.CutoverImmediate:
		cutover = Immediate(ctx, m.Weights, req.ProtectionTunnelID, req.OriginalPathID)
	default:
		verify := func(ctx context.Context) (bool, error) {
			sample, err := m.Sampler.Sample(ctx, req.OriginalPathID)
			if err != nil {
				return false, err
			}
			return sample.WithinTier(req.Thresholds), nil
		}
		cutover = Gradual(ctx, m.Weights, req.ProtectionTunnelID, req.OriginalPathID, verify, func() { m.Sleep(incident.DefaultStageInterval) })
	}

	if !cutover.Success {
		if cutover.RolledBack {
			return false, Result{}, nil
		}
		return false, Result{}, nil
	}

	tunnelDeleted := false
	if m.Cleaner != nil {
		if err := m.Cleaner.Delete(ctx, req.IncidentID, req.HeadEnd, req.EndPoint, req.ProtectionTunnelID, req.TEType); err != nil {
			return false, Result{}, err
		}
		tunnelDeleted = true
	}

	return true, Result{
		Restored:                   true,
		HoldTimerSeconds:           int(hold.Seconds()),
		CutoverMode:                req.CutoverMode,
		TunnelDeleted:              tunnelDeleted,
		TotalProtectionDurationSec: int(m.now().Sub(start).Seconds()),
	}, nil
}

func (m *Monitor) wait(ctx context.Context) error {
	if m.Limiter != nil {
		return m.Limiter.Wait(ctx)
	}
	m.Sleep(defaultPollInterval)
	return nil
}
