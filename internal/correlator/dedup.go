package correlator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// DedupWindow is the TTL applied to a dedup hash entry; it must stay less
// than or equal to every correlation rule's window that keys on the same
// fields (the shortest rule window is 30s for adjacent-link-failures, but
// the dedup window covers repeats of the *same* alert, not correlated
// ones, so the wider 300s default from the spec applies here unchanged).
const DedupWindow = incident.DefaultDedupWindow

// DedupResult reports whether an alert was a duplicate and, if so, which
// alert ID it duplicates.
type DedupResult struct {
	Duplicate       bool
	OriginalAlertID string
	Hash            string
}

// Dedup computes the alert's dedup hash and checks the store for an
// existing entry. On a miss it records the new hash. A store outage
// surfaces to the caller rather than silently treating the alert as novel,
// per the correlator's store-outage failure semantics.
func Dedup(ctx context.Context, st store.Store, alert incident.Alert) (DedupResult, error) {
	hash := Hash(alert)
	key := store.DedupHashKey(hash)

	data, ok, err := st.GetJSON(ctx, key)
	if err != nil {
		return DedupResult{}, err
	}
	if ok {
		return DedupResult{Duplicate: true, OriginalAlertID: string(data), Hash: hash}, nil
	}

	if err := st.SetJSON(ctx, key, []byte(alert.ID), DedupWindow); err != nil {
		return DedupResult{}, err
	}
	return DedupResult{Duplicate: false, Hash: hash}, nil
}

// Hash computes the short stable digest of (link-ID, severity, sorted
// violated-thresholds) that identifies repeats of the same alert.
func Hash(alert incident.Alert) string {
	linkID, severity, thresholds := DedupFields(alert)
	h := sha256.New()
	h.Write([]byte(linkID))
	h.Write([]byte{0})
	h.Write([]byte(severity))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(thresholds, ",")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
