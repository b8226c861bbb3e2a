// Command notifier runs the Notifier agent: renders an incident event into
// a tier/event-appropriate message and fans it out across the configured
// channels (Webex, ServiceNow, email), concurrently per channel.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
//	WEBEX_URL         - Webex Bot API base URL (default "https://webexapis.com")
//	WEBEX_TOKEN       - Webex bot token (optional; channel skipped if empty)
//	SERVICENOW_URL    - ServiceNow instance base URL (optional; channel skipped if empty)
//	SERVICENOW_USER   - ServiceNow basic-auth username
//	SERVICENOW_PASS   - ServiceNow basic-auth password
//	EMAIL_URL         - outbound SMTP-relay-over-HTTP base URL (optional; channel skipped if empty)
//	EMAIL_FROM        - From address for outgoing email notifications
package main

import (
	"context"
	"log"
	"os"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/notify"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("notifier", version)

	var channels []notify.Channel
	if token := os.Getenv("WEBEX_TOKEN"); token != "" {
		channels = append(channels, notify.NewWebexChannel(envOr("WEBEX_URL", "https://webexapis.com"), token, nil))
	}
	if url := os.Getenv("SERVICENOW_URL"); url != "" {
		channels = append(channels, notify.NewServiceNowChannel(url, os.Getenv("SERVICENOW_USER"), os.Getenv("SERVICENOW_PASS"), nil))
	}
	if url := os.Getenv("EMAIL_URL"); url != "" {
		channels = append(channels, notify.NewEmailChannel(url, envOr("EMAIL_FROM", "noc@netguard.example"), nil))
	}

	svc := notify.NewService(channels, rt.Logger)
	auditLog := notify.NewAuditLog(rt.Store)
	handler := notify.NewHandler(svc, auditLog)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "notifier",
		Version:            version,
		Description:        "Delivers incident notifications across Webex, ServiceNow, and email.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"notification"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("send_notification", handler.SendNotification, a2a.Capability{
		Name:        "send_notification",
		Description: "Send an incident event notification across the configured channels.",
	})
	srv.Register("get_timeline", handler.GetTimeline, a2a.Capability{
		Name:        "get_timeline",
		Description: "Fetch an incident's audit trail, newest first.",
	})

	if err := rt.Store.Ping(ctx); err != nil {
		log.Fatalf("incident store unreachable: %v", err)
	}

	agentproc.Serve(ctx, rt, srv)
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
