// Package correlator implements the Event Correlator: normalize raw alerts
// from PCA, CNC, and proactive sources; deduplicate by content hash;
// correlate into incidents by a declared rule list; and detect flapping
// links with exponential dampening.
package correlator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/netguard/fabric/internal/incident"
)

// Source identifies where a raw alert originated, selecting the
// normalization branch.
type Source string

const (
	SourcePCA       Source = "pca"
	SourceCNC       Source = "cnc"
	SourceProactive Source = "proactive"
)

// RawAlert is the untyped payload as received from a collector, before
// normalization.
type RawAlert struct {
	Source         Source
	SourceIP       string
	DestIP         string
	LinkID         string
	Metric         string
	CurrentValue   float64
	ThresholdValue float64
	SeverityHint   string
	ViolatedThresholds []string
	Timestamp      time.Time
	RawPayload     map[string]any
}

// Normalize converts a RawAlert into the shared incident.Alert shape,
// branching on Source exactly as the three upstream producers differ:
// PCA derives severity from a current/threshold ratio, CNC maps severity
// directly (with "clear" downgraded to warning), and proactive alerts
// carry their severity through unchanged.
func Normalize(raw RawAlert) incident.Alert {
	alert := incident.Alert{
		ID:                 "alert-" + uuid.NewString(),
		Source:             string(raw.Source),
		Timestamp:          raw.Timestamp,
		LinkID:             linkID(raw),
		ViolatedThresholds: raw.ViolatedThresholds,
		RawPayload:         raw.RawPayload,
	}

	switch raw.Source {
	case SourcePCA:
		alert.Severity = pcaSeverity(raw.CurrentValue, raw.ThresholdValue)
		if len(alert.ViolatedThresholds) == 0 && raw.Metric != "" {
			alert.ViolatedThresholds = []string{raw.Metric}
		}
	case SourceCNC:
		alert.Severity = cncSeverity(raw.SeverityHint)
	case SourceProactive:
		alert.Severity = incident.Severity(raw.SeverityHint)
	default:
		alert.Severity = incident.SeverityWarning
	}

	return alert
}

// pcaSeverity derives severity from a ratio of the current sampled value to
// the violated threshold.
func pcaSeverity(current, threshold float64) incident.Severity {
	if threshold == 0 {
		return incident.SeverityWarning
	}
	ratio := current / threshold
	switch {
	case ratio >= 2.0:
		return incident.SeverityCritical
	case ratio >= 1.5:
		return incident.SeverityMajor
	case ratio >= 1.2:
		return incident.SeverityMinor
	default:
		return incident.SeverityWarning
	}
}

// cncSeverity maps a CNC alarm severity string directly, with "clear"
// downgraded to warning rather than treated as an absence of severity.
func cncSeverity(hint string) incident.Severity {
	switch hint {
	case "critical":
		return incident.SeverityCritical
	case "major":
		return incident.SeverityMajor
	case "minor":
		return incident.SeverityMinor
	case "clear":
		return incident.SeverityWarning
	default:
		return incident.SeverityWarning
	}
}

// linkID returns the raw alert's link ID, reconstructing it from the
// source/destination IP pair when the upstream producer did not supply one.
func linkID(raw RawAlert) string {
	if raw.LinkID != "" {
		return raw.LinkID
	}
	return fmt.Sprintf("%s-%s", raw.SourceIP, raw.DestIP)
}

// DedupFields returns the fields hashed to build a dedup key: link ID,
// severity, and the sorted violated-threshold list, so that threshold
// order never produces a spurious cache miss.
func DedupFields(alert incident.Alert) (linkID string, severity incident.Severity, thresholds []string) {
	sorted := append([]string(nil), alert.ViolatedThresholds...)
	sort.Strings(sorted)
	return alert.LinkID, alert.Severity, sorted
}
