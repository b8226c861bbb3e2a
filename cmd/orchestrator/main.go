// Command orchestrator runs the Orchestrator agent: the state machine that
// drives an incident from detection through assessment, path computation,
// tunnel provisioning, steering, and restoration monitoring, consulting an
// Escalator when a collaborator reports a hard failure.
//
// Configuration is limited to the common agent variables (see
// internal/config); the registry entry for restoration-monitor must allow
// for its long synchronous monitor_restoration call (see
// monitorRestoreTimeoutSeconds in internal/orchestrator).
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/orchestrator"
)

const version = "0.1.0"

// callerTimeout bounds the HTTP round-trip for every outbound A2A call this
// agent makes. It must exceed orchestrator's own monitorRestoreTimeoutSeconds
// since the restoration monitor call is a single long synchronous request
// that otherwise would be cut off by the transport before the collaborator
// ever gets to apply its own per-task timeout.
const callerTimeout = 45 * time.Minute

func main() {
	ctx, rt := agentproc.Bootstrap("orchestrator", version)

	// Bootstrap's default A2A client carries a 60s HTTP timeout, sized for
	// ordinary request/response tasks. This agent's restoration-monitor
	// call runs far longer, so it needs its own client.
	rt.Caller = a2a.NewClient(rt.Config.Registry, a2a.WithHTTPClient(&http.Client{Timeout: callerTimeout}))

	engine := orchestrator.NewEngine(rt.Store, rt.Caller, orchestrator.NoopEscalator{}, rt.Logger)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "orchestrator",
		Version:            version,
		Description:        "Drives an incident through the detect-assess-compute-provision-steer-monitor lifecycle.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"orchestration"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("handle_alert", engine.TaskHandler, a2a.Capability{
		Name:        "handle_alert",
		Description: "Handle a correlated alert: create or resume an incident and drive it to closure.",
	})
	srv.Register("proactive_alert", engine.ProactiveAlertTaskHandler, a2a.Capability{
		Name:        "proactive_alert",
		Description: "Handle a predictive congestion alert ahead of any actual link failure.",
	})

	if err := rt.Store.Ping(ctx); err != nil {
		log.Fatalf("incident store unreachable: %v", err)
	}

	agentproc.Serve(ctx, rt, srv)
}
