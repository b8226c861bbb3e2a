// Package incident defines the shared data model: the Incident record and
// the satellite types (alerts, correlation windows, dedup hashes, flap
// history, protection paths, tunnels, BSID pools, hold timers) that the
// Incident Store persists and every agent reads or writes a slice of.
package incident

import "time"

// Severity is the aggregated severity of an incident or a normalized alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityWarning  Severity = "warning"
)

// AlertType distinguishes the three ways an alert can enter the system.
type AlertType string

const (
	AlertTypeReactiveSLA    AlertType = "reactive_sla"
	AlertTypeReactiveAlarm  AlertType = "reactive_alarm"
	AlertTypeProactivePred  AlertType = "proactive_prediction"
)

// Status is the incident's lifecycle state, per the orchestrator's state
// machine.
type Status string

const (
	StatusDetecting   Status = "detecting"
	StatusDampening   Status = "dampening"
	StatusAssessing   Status = "assessing"
	StatusComputing   Status = "computing"
	StatusProvisioning Status = "provisioning"
	StatusSteering    Status = "steering"
	StatusMonitoring  Status = "monitoring"
	StatusRestoring   Status = "restoring"
	StatusClosed      Status = "closed"
	StatusEscalated   Status = "escalated"
)

// SLATier drives hold timers, notification fan-out, and automatic-protect
// eligibility.
type SLATier string

const (
	TierPlatinum SLATier = "platinum"
	TierGold     SLATier = "gold"
	TierSilver   SLATier = "silver"
	TierBronze   SLATier = "bronze"
)

// CutoverMode selects how restoration moves traffic back to the original
// path.
type CutoverMode string

const (
	CutoverImmediate CutoverMode = "immediate"
	CutoverGradual   CutoverMode = "gradual"
)

// Incident is the durable object capturing one protection lifecycle. It is
// owned exclusively by one orchestrator run; the Incident Store is its only
// persistent backing.
type Incident struct {
	ID                 string     `json:"id"`
	DegradedLinks      []string   `json:"degraded_links"`
	Severity           Severity   `json:"severity"`
	AlertType          AlertType  `json:"alert_type"`
	CorrelatedAlertIDs []string   `json:"correlated_alert_ids"`
	Status             Status     `json:"status"`
	RetryCount         int        `json:"retry_count"`
	CurrentNode        string     `json:"current_node"`
	NodesVisited       []string   `json:"nodes_visited"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	CloseReason        string     `json:"close_reason,omitempty"`
	EscalationReason   string     `json:"escalation_reason,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	ProtectionTunnelID string     `json:"protection_tunnel_id,omitempty"`
	PrimaryService     string     `json:"primary_service,omitempty"`
	CutoverMode        CutoverMode `json:"cutover_mode,omitempty"`
	CorrelationID      string     `json:"correlation_id"`
	HighestSLATier     SLATier    `json:"highest_sla_tier,omitempty"`
}

// Retention is the default time-to-live for a closed incident's record,
// kept for operational inspection.
const Retention = 24 * time.Hour

// VisitNode appends node to the incident's visited list and sets it as the
// current node. Callers write the updated record to the store before
// transitioning, per the write-last crash-safety policy: a crash after this
// call but before the store write must not be observable as a transition.
func (inc *Incident) VisitNode(node string) {
	inc.CurrentNode = node
	inc.NodesVisited = append(inc.NodesVisited, node)
	inc.UpdatedAt = time.Now()
}

// Close marks the incident closed with the given reason. It always appends
// "close" to NodesVisited, regardless of which path reached it, so the node
// list ends with "close" for every terminal incident.
func (inc *Incident) Close(reason string) {
	inc.VisitNode("close")
	now := time.Now()
	inc.Status = StatusClosed
	inc.CloseReason = reason
	inc.ClosedAt = &now
	inc.UpdatedAt = now
}

// Escalate marks the incident escalated with the given reason. Escalation
// is terminal only after notify+audit run; the orchestrator still drives
// escalated -> closed.
func (inc *Incident) Escalate(reason string) {
	inc.Status = StatusEscalated
	inc.EscalationReason = reason
	inc.UpdatedAt = time.Now()
}

// Alert is a normalized alert, immutable once ingested.
type Alert struct {
	ID                string            `json:"id"`
	Source            string            `json:"source"`
	Timestamp         time.Time         `json:"timestamp"`
	LinkID            string            `json:"link_id"`
	SourceEndpoint    string            `json:"source_endpoint"`
	DestEndpoint      string            `json:"dest_endpoint"`
	Latency           *float64          `json:"latency,omitempty"`
	Jitter            *float64          `json:"jitter,omitempty"`
	Loss              *float64          `json:"loss,omitempty"`
	ViolatedThresholds []string         `json:"violated_thresholds"`
	Severity          Severity          `json:"severity"`
	RawPayload        map[string]any    `json:"raw_payload,omitempty"`
}

// CorrelationWindowEntry is one member of a rule+group's time-ordered set.
type CorrelationWindowEntry struct {
	AlertID    string `json:"alert_id"`
	IncidentID string `json:"incident_id"`
	LinkID     string `json:"link_id"`
}

// DedupHash records the original alert ID behind a dedup digest, with a TTL
// equal to the dedup window.
type DedupHash struct {
	Hash           string    `json:"hash"`
	OriginalAlertID string   `json:"original_alert_id"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// DefaultDedupWindow is the default TTL applied to a dedup hash.
const DefaultDedupWindow = 300 * time.Second

// FlapHistory is a link's bounded state-change history plus its flap
// counter. History is capped at 100 entries by the store's PushFront+trim.
type FlapHistory struct {
	LinkID      string    `json:"link_id"`
	Changes     []time.Time `json:"changes"`
	FlapCount   int       `json:"flap_count"`
}

// FlapHistoryCap is the maximum number of state-change timestamps retained.
const FlapHistoryCap = 100

// FlapWindow is the sliding window within which state changes are counted
// to decide whether a link is flapping.
const FlapWindow = 5 * time.Minute

// FlapThreshold is the minimum number of state changes within FlapWindow
// that marks a link as flapping.
const FlapThreshold = 3

// DampenDuration computes the exponential dampen backoff for the nth flap
// (1-indexed), capped at one hour.
func DampenDuration(flapCount int) time.Duration {
	if flapCount < 1 {
		flapCount = 1
	}
	seconds := 60 * (1 << uint(flapCount-1))
	const cap = 3600
	if seconds > cap {
		seconds = cap
	}
	return time.Duration(seconds) * time.Second
}

// ProtectionPath is the output of the path computer: an alternate route
// around degraded links.
type ProtectionPath struct {
	Nodes              []string `json:"nodes"`
	Segments           []string `json:"segments"`
	HopCount           int      `json:"hop_count"`
	AggregatedDelay    float64  `json:"aggregated_delay"`
	AggregatedMetric   float64  `json:"aggregated_metric"`
	MinAvailableBW     float64  `json:"min_available_bandwidth"`
	RecommendedTEType  string   `json:"recommended_te_type"`
	ConstraintsRelaxed bool     `json:"constraints_relaxed"`
	RelaxationLevel    int      `json:"relaxation_level"`
}

// MaxRelaxationLevel bounds the path computer's relax loop.
const MaxRelaxationLevel = 4

// TEType is the tunnel technology.
type TEType string

const (
	TESRMPLS  TEType = "sr-mpls"
	TESRv6    TEType = "srv6"
	TERSVPTE  TEType = "rsvp-te"
)

// OperationalStatus is a tunnel's live state as reported by the controller.
type OperationalStatus string

const (
	OperationalUp      OperationalStatus = "up"
	OperationalDown    OperationalStatus = "down"
	OperationalPending OperationalStatus = "pending"
)

// AdministrativeStatus is a tunnel's desired state.
type AdministrativeStatus string

const (
	AdministrativeUp   AdministrativeStatus = "up"
	AdministrativeDown AdministrativeStatus = "down"
)

// Tunnel is a provisioned protection path.
type Tunnel struct {
	ID                  string               `json:"id"`
	TEType              TEType               `json:"te_type"`
	HeadEnd             string               `json:"head_end"`
	TailEnd             string               `json:"tail_end"`
	BindingSID          string               `json:"binding_sid"`
	AdministrativeStatus AdministrativeStatus `json:"administrative_status"`
	OperationalStatus   OperationalStatus    `json:"operational_status"`
	CreationAgent       string               `json:"creation_agent"`
	IncidentID          string               `json:"incident_id"`
	IsProtection        bool                 `json:"is_protection"`
	ProtectedTunnelID   string               `json:"protected_tunnel_id,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// BSIDRangeMin and BSIDRangeMax bound the numeric MPLS binding-SID range.
const (
	BSIDRangeMin = 24000
	BSIDRangeMax = 24999
)

// HoldTimerStatus is a hold-timer record's lifecycle state.
type HoldTimerStatus string

const (
	HoldTimerWaiting   HoldTimerStatus = "waiting"
	HoldTimerExpired   HoldTimerStatus = "expired"
	HoldTimerCancelled HoldTimerStatus = "cancelled"
)

// HoldTimerRecord tracks a restoration hold timer.
type HoldTimerRecord struct {
	ID           string          `json:"id"`
	IncidentID   string          `json:"incident_id"`
	SLATier      SLATier         `json:"sla_tier"`
	RecoveryTime time.Time       `json:"recovery_time"`
	ExpiryTime   time.Time       `json:"expiry_time"`
	Status       HoldTimerStatus `json:"status"`
}

// HoldDuration returns the hold-timer duration for a given SLA tier.
func HoldDuration(tier SLATier) time.Duration {
	switch tier {
	case TierPlatinum:
		return 60 * time.Second
	case TierGold:
		return 120 * time.Second
	case TierSilver:
		return 180 * time.Second
	case TierBronze:
		return 300 * time.Second
	default:
		return 300 * time.Second
	}
}

// StabilityCheckInterval returns the spacing between VERIFY's consecutive
// good-sample checks for a given SLA tier.
func StabilityCheckInterval(tier SLATier) time.Duration {
	switch tier {
	case TierPlatinum:
		return 30 * time.Second
	case TierGold:
		return 60 * time.Second
	case TierSilver:
		return 90 * time.Second
	case TierBronze:
		return 120 * time.Second
	default:
		return 120 * time.Second
	}
}

// CutoverStages are the gradual cutover's ECMP weight pairs
// (protection-weight, original-weight), applied in order.
type CutoverStage struct {
	ProtectionWeight int
	OriginalWeight   int
}

// GradualCutoverStages is the canonical staged ECMP migration sequence.
func GradualCutoverStages() []CutoverStage {
	return []CutoverStage{
		{ProtectionWeight: 75, OriginalWeight: 25},
		{ProtectionWeight: 50, OriginalWeight: 50},
		{ProtectionWeight: 25, OriginalWeight: 75},
		{ProtectionWeight: 0, OriginalWeight: 100},
	}
}

// DefaultStageInterval is the default pause between gradual cutover stages.
const DefaultStageInterval = 60 * time.Second
