// Package store defines the Incident Store: a flat, string-prefixed
// key-value namespace shared by every agent. Each operation is atomic on
// its own key; there are no cross-key transactions. Multi-step logical
// operations (allocate-then-assign) are built on top as optimistic
// pop-then-push-back sequences, not as store-level transactions.
package store

import (
	"context"
	"time"
)

// Store is the contract every agent depends on to read and write shared
// incident state. Implementations must guarantee that each individual
// method call is atomic; callers are responsible for composing multi-step
// logic safely (see BSID allocation in internal/tunnel).
type Store interface {
	// GetJSON reads the raw JSON blob stored at key. ok is false when the
	// key does not exist.
	GetJSON(ctx context.Context, key string) (data []byte, ok bool, err error)

	// SetJSON writes a raw JSON blob at key with the given TTL. A zero TTL
	// means the key is kept until explicitly deleted.
	SetJSON(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. It is not an error to delete a missing key.
	Delete(ctx context.Context, key string) error

	// Incr increments the integer counter at key by one and resets its TTL,
	// returning the post-increment value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// PushFront prepends member to the list at key, trims the list to at
	// most maxLen entries, and resets the key's TTL.
	PushFront(ctx context.Context, key string, member string, maxLen int64, ttl time.Duration) error

	// ListRange returns the list at key from start to stop (inclusive,
	// 0-indexed from the front; -1 means "to the end").
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZAdd adds member to key's ordered set with the given score (seconds
	// since epoch), resetting the key's TTL.
	ZAdd(ctx context.Context, key string, score float64, member string, ttl time.Duration) error

	// ZRangeByScore returns the members of key's ordered set with score in
	// [min, max].
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)

	// SAdd adds member to the set at key.
	SAdd(ctx context.Context, key string, member string) error

	// SPop removes and returns an arbitrary member of the set at key. ok is
	// false when the set is empty.
	SPop(ctx context.Context, key string) (member string, ok bool, err error)

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error
}

// Key namespace helpers. Every agent writes only the prefix it owns by
// convention (see the shared-resource policy): the correlator owns "ec:*",
// the orchestrator owns "orchestrator:*", the BSID pool is shared between
// the tunnel provisioner and the restoration monitor.
const (
	prefixIncident         = "orchestrator:incident:"
	prefixDedupHash        = "ec:dedup:hash:"
	prefixFlapHistory      = "ec:flap:history:"
	prefixFlapCount        = "ec:flap:count:"
	prefixCorrelationGroup = "ec:correlation:"
	prefixBSIDCounter      = "bsid:mpls:"
	prefixBSIDFree         = "bsid:free:"
	prefixTimer            = "timer:"
	keyRestorationTimers   = "restoration:timers"
	prefixTunnelAlloc      = "tunnel:alloc:"
	prefixAuditLog         = "audit:log:"
)

// IncidentKey returns the key holding an incident's JSON record.
func IncidentKey(incidentID string) string { return prefixIncident + incidentID }

// DedupHashKey returns the key holding a dedup hash's original alert ID.
func DedupHashKey(hash string) string { return prefixDedupHash + hash }

// FlapHistoryKey returns the key holding a link's flap history list.
func FlapHistoryKey(linkID string) string { return prefixFlapHistory + linkID }

// FlapCountKey returns the key holding a link's flap counter.
func FlapCountKey(linkID string) string { return prefixFlapCount + linkID }

// CorrelationGroupKey returns the key holding a rule+group's time-ordered
// alert set.
func CorrelationGroupKey(rule, group string) string {
	return prefixCorrelationGroup + rule + ":" + group
}

// BSIDCounterKey returns the key holding a head-end's next-free BSID counter.
func BSIDCounterKey(headEnd string) string { return prefixBSIDCounter + headEnd }

// BSIDFreeSetKey returns the key holding a head-end's released BSID set.
func BSIDFreeSetKey(headEnd string) string { return prefixBSIDFree + headEnd }

// TimerKey returns the key holding an incident's hold-timer record.
func TimerKey(incidentID string) string { return prefixTimer + incidentID }

// RestorationTimersKey returns the key holding the set of active restoration
// timer IDs, used for operational inspection.
func RestorationTimersKey() string { return keyRestorationTimers }

// TunnelAllocationKey returns the key recording the binding-SID allocated
// for one provisioning attempt, keyed by (incident, head-end, end-point), so
// a retried provision_tunnel call reuses the allocation instead of leaking
// a second one.
func TunnelAllocationKey(incidentID, headEnd, endPoint string) string {
	return prefixTunnelAlloc + incidentID + ":" + headEnd + ":" + endPoint
}

// AuditLogKey returns the key holding an incident's append-only audit
// event list, newest first.
func AuditLogKey(incidentID string) string { return prefixAuditLog + incidentID }
