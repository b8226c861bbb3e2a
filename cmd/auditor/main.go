// Command auditor runs the Audit agent: records every state transition,
// decision, and error any agent reports against an incident's audit trail,
// and compiles compliance reports from that trail.
//
// Configuration is limited to the common agent variables (see internal/config).
package main

import (
	"context"
	"log"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/notify"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("auditor", version)

	auditLog := notify.NewAuditLog(rt.Store)
	handler := notify.NewHandler(nil, auditLog)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "audit",
		Version:            version,
		Description:        "Records audit events against an incident's trail and compiles compliance reports.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"audit", "compliance"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("log_event", handler.LogEvent, a2a.Capability{
		Name:        "log_event",
		Description: "Record a state transition, decision, or error against an incident's audit trail.",
	})
	srv.Register("generate_report", handler.GenerateReport, a2a.Capability{
		Name:        "generate_report",
		Description: "Compile a compliance report summarizing one incident's audit trail.",
	})

	if err := rt.Store.Ping(ctx); err != nil {
		log.Fatalf("incident store unreachable: %v", err)
	}

	agentproc.Serve(ctx, rt, srv)
}
