package correlator

import (
	"context"
	"time"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// FlapResult reports whether a link is currently flapping and, if so, the
// dampen duration the caller should suppress it for.
type FlapResult struct {
	Flapping bool
	DampenFor time.Duration
	FlapCount int
}

// CheckFlap appends a state-change timestamp to the link's flap history
// and reports whether the link now qualifies as flapping: three or more
// state changes within the trailing 5-minute window. On a flap detection
// the link's flap counter is incremented and the dampen duration doubles
// with each occurrence, capped at one hour.
func CheckFlap(ctx context.Context, st store.Store, linkID string, at time.Time) (FlapResult, error) {
	historyKey := store.FlapHistoryKey(linkID)
	if err := st.PushFront(ctx, historyKey, at.UTC().Format(time.RFC3339Nano), incident.FlapHistoryCap, incident.FlapWindow*2); err != nil {
		return FlapResult{}, err
	}

	history, err := st.ListRange(ctx, historyKey, 0, -1)
	if err != nil {
		return FlapResult{}, err
	}

	windowStart := at.Add(-incident.FlapWindow)
	recent := 0
	for _, raw := range history {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		if !ts.Before(windowStart) {
			recent++
		}
	}

	if recent < incident.FlapThreshold {
		return FlapResult{Flapping: false}, nil
	}

	count, err := st.Incr(ctx, store.FlapCountKey(linkID), incident.DampenDuration(incident.FlapThreshold)*2)
	if err != nil {
		return FlapResult{}, err
	}

	return FlapResult{
		Flapping:  true,
		DampenFor: incident.DampenDuration(int(count)),
		FlapCount: int(count),
	}, nil
}
