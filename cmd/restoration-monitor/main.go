// Command restoration-monitor runs the Restoration Monitor agent: polls the
// original path's SLA after a protection tunnel goes live, holds once
// recovered, cuts traffic back (immediate or gradual), and cleans up the
// protection tunnel.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
//	SAMPLER_URL      - SLA measurement collector base URL (default "http://localhost:9105")
//	CONTROLLER_URL   - SDN controller (CNC) base URL (default "http://localhost:9103")
//	CONTROLLER_TOKEN - bearer token for the controller API (optional)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/restoration"
	"github.com/netguard/fabric/internal/tunnel"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("restoration-monitor", version)

	samplerURL := envOr("SAMPLER_URL", "http://localhost:9105")
	controllerURL := envOr("CONTROLLER_URL", "http://localhost:9103")
	controllerToken := os.Getenv("CONTROLLER_TOKEN")

	sampler := restoration.NewHTTPSampler(samplerURL, &http.Client{Timeout: 10 * time.Second})
	controller := tunnel.NewHTTPController(controllerURL, controllerToken, &http.Client{Timeout: 30 * time.Second})
	cleaner := tunnel.NewProvisioner(rt.Store, controller)
	monitor := restoration.NewMonitor(rt.Store, sampler, controller, cleaner)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "restoration-monitor",
		Version:            version,
		Description:        "Monitors the original path and cuts traffic back once SLA recovers.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"restoration"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("monitor_restoration", monitor.TaskHandler, a2a.Capability{
		Name:        "monitor_restoration",
		Description: "Poll the original path for SLA recovery and cut traffic back once stable.",
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
