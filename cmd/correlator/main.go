// Command correlator runs the Event Correlator agent: normalizes raw
// alerts, deduplicates and correlates them against active incidents,
// applies flap dampening, and forwards emitted or suppressed results to the
// orchestrator.
//
// # Configuration
//
// Environment variables (see internal/config):
//
//	A2A_LISTEN_ADDR    - listen address (default ":8080")
//	REDIS_URL          - Incident Store connection (default "localhost:6379")
//	REDIS_PASSWORD     - Incident Store password (optional)
//	A2A_REGISTRY       - "name=url,name=url" collaborator registry
//	DEBUG              - enable debug logging
package main

import (
	"context"
	"log"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/correlator"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("event-correlator", version)

	svc := correlator.NewService(rt.Store, rt.Logger).WithForwarder(rt.Caller)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "event-correlator",
		Version:            version,
		Description:        "Normalizes, deduplicates, correlates, and dampens network alerts into incidents.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"correlation", "detection"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("correlate_alert", svc.TaskHandler, a2a.Capability{
		Name:        "correlate_alert",
		Description: "Normalize a raw alert and correlate it against active incidents.",
	})

	if err := rt.Store.Ping(ctx); err != nil {
		log.Fatalf("incident store unreachable: %v", err)
	}

	agentproc.Serve(ctx, rt, srv)
}
