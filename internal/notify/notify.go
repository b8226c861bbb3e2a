// Package notify implements the Notifier: selects channels by SLA tier and
// event type, formats a template message, and fans the send out across
// Webex/ServiceNow/email concurrently, reporting per-channel results.
package notify

import (
	"time"

	"github.com/netguard/fabric/internal/incident"
)

// EventType is the kind of lifecycle event being notified about.
type EventType string

const (
	EventIncidentDetected    EventType = "incident_detected"
	EventProtectionActive    EventType = "protection_active"
	EventRestorationComplete EventType = "restoration_complete"
	EventEscalation          EventType = "escalation"
	EventProactiveAlert      EventType = "proactive_alert"
)

// Severity is the notifier's own display scale (critical/high/medium/low);
// it is separate from the incident Severity values.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Request is the send_notification task payload.
type Request struct {
	IncidentID string
	EventType  EventType
	Severity   Severity
	SLATier    incident.SLATier
	Data       map[string]any
}

// ChannelResult is the outcome of sending to one channel.
type ChannelResult struct {
	Channel      string
	Success      bool
	MessageID    string
	TicketNumber string
	Recipients   []string
	Error        string
	SentAt       time.Time
}

// Response is the send_notification task result.
type Response struct {
	IncidentID        string
	EventType         EventType
	ChannelsAttempted []string
	ChannelsSucceeded []string
	ChannelsFailed    []string
	ServiceNowTicket  string
	WebexMessageID    string
	EmailRecipients   []string
	Results           []ChannelResult
}
