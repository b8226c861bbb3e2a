package notify

import (
	"strings"
	"text/template"
	"time"
)

// Message is a rendered notification, ready to hand to any channel.
type Message struct {
	Subject string
	Body    string
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[EventType]messageTemplate{
	EventIncidentDetected: mustCompile(
		"[{{.Severity}}] SLA Degradation Detected - {{.IncidentID}}",
		`Incident: {{.IncidentID}}
Severity: {{.Severity}}
Time: {{.Timestamp}}

Affected links: {{.Data.degraded_links}}
Affected services: {{.Data.service_count}}

Protection workflow initiated. Monitoring for alternate path computation.`,
	),
	EventProtectionActive: mustCompile(
		"[INFO] Protection Tunnel Active - {{.IncidentID}}",
		`Protection active for {{.IncidentID}}
Tunnel ID: {{.Data.tunnel_id}}
Type: {{.Data.te_type}}
BSID: {{.Data.binding_sid}}

Traffic is now flowing via the protection path. Monitoring for SLA recovery.`,
	),
	EventRestorationComplete: mustCompile(
		"[RESOLVED] Service Restored - {{.IncidentID}}",
		`Incident {{.IncidentID}} resolved.
Duration: {{.Data.duration_minutes}} minutes
Cutover mode: {{.Data.cutover_mode}}

All affected services have been restored to original paths. Protection tunnel has been removed.`,
	),
	EventEscalation: mustCompile(
		"[ESCALATION] {{.IncidentID}} requires human attention",
		`Incident {{.IncidentID}} escalated.
Reason: {{.Data.reason}}
Severity: {{.Severity}}

Automatic protection exhausted its options; operator action is required.`,
	),
	EventProactiveAlert: mustCompile(
		"[PROACTIVE] Congestion predicted near {{.IncidentID}}",
		`Proactive alert for {{.IncidentID}}
At-risk links: {{.Data.at_risk_links}}
Predicted utilization: {{.Data.predicted_utilization}}
Recommended action: {{.Data.recommended_action}}`,
	),
}

func mustCompile(subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

type templateData struct {
	IncidentID string
	Severity   Severity
	Timestamp  string
	Data       map[string]any
}

// Format renders the message for req's event type, falling back to a
// generic template for event types without a dedicated one.
func Format(req Request) Message {
	tmpl, ok := templates[req.EventType]
	if !ok {
		tmpl = mustCompile("[{{.Severity}}] {{.IncidentID}}", "{{.Data}}")
	}

	data := templateData{
		IncidentID: req.IncidentID,
		Severity:   req.Severity,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Data:       req.Data,
	}

	var subject, body strings.Builder
	_ = tmpl.subject.Execute(&subject, data)
	_ = tmpl.body.Execute(&body, data)

	return Message{Subject: subject.String(), Body: body.String()}
}
