// Package tunnel implements the Tunnel Provisioner: binding-SID pool
// allocation, TE-type detection, and the DETECT -> BUILD -> CREATE ->
// VERIFY -> STEER -> RETURN provisioning flow, plus tunnel deletion for
// restoration.
package tunnel

import (
	"context"
	"strconv"

	"github.com/netguard/fabric/internal/ferrors"
	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// AllocateBSID returns the next binding-SID for a head-end, draining the
// free-set of released values before advancing the counter. The counter is
// rejected once it would exceed incident.BSIDRangeMax: a resource-exhaustion
// condition the caller surfaces as a provisioning failure.
func AllocateBSID(ctx context.Context, st store.Store, headEnd string) (int, error) {
	freeKey := store.BSIDFreeSetKey(headEnd)
	if val, ok, err := st.SPop(ctx, freeKey); err != nil {
		return 0, err
	} else if ok {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n, nil
		}
		// A non-numeric value should never land in the free-set; fall
		// through to minting a fresh one rather than propagating garbage.
	}

	counterKey := store.BSIDCounterKey(headEnd)
	next, err := st.Incr(ctx, counterKey, 0)
	if err != nil {
		return 0, err
	}
	bsid := incident.BSIDRangeMin - 1 + int(next)
	if bsid > incident.BSIDRangeMax {
		return 0, &ferrors.ResourceExhaustionError{Resource: "bsid-pool", HeadEnd: headEnd}
	}
	return bsid, nil
}

// ReleaseBSID returns a binding-SID to a head-end's free-set so a future
// allocation can reuse it.
func ReleaseBSID(ctx context.Context, st store.Store, headEnd string, bsid int) error {
	return st.SAdd(ctx, store.BSIDFreeSetKey(headEnd), strconv.Itoa(bsid))
}
