// Command service-impact runs the Service Impact assessor agent: given a
// set of degraded links, it resolves the services riding them from the
// carrier's service inventory and ranks them by SLA tier and impact level.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
//	INVENTORY_URL - service inventory base URL (default "http://localhost:9101")
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/serviceimpact"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("service-impact", version)

	inventoryURL := envOr("INVENTORY_URL", "http://localhost:9101")
	inventory := serviceimpact.NewHTTPInventory(inventoryURL, &http.Client{Timeout: 10 * time.Second})
	assessor := serviceimpact.NewAssessor(inventory)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "service-impact",
		Version:            version,
		Description:        "Ranks services affected by degraded links by SLA tier and impact level.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"impact-assessment"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("assess_impact", assessor.TaskHandler, a2a.Capability{
		Name:        "assess_impact",
		Description: "Given degraded links, list affected services ranked by SLA tier.",
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
