// Command path-computer runs the Path Computer agent: queries the topology
// graph for a constraint-satisfying protection path around degraded links,
// relaxing constraints up to the configured maximum before reporting no
// path found.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
//	GRAPH_URL - topology graph query service base URL (default "http://localhost:9102")
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/pathcompute"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("path-computer", version)

	graphURL := envOr("GRAPH_URL", "http://localhost:9102")
	graph := pathcompute.NewHTTPGraphClient(graphURL, &http.Client{Timeout: 30 * time.Second})
	computer := pathcompute.NewComputer(graph)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "path-computer",
		Version:            version,
		Description:        "Computes a constraint-satisfying protection path around degraded links.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"path-computation"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("compute_path", computer.TaskHandler, a2a.Capability{
		Name:        "compute_path",
		Description: "Find a protection path around the given degraded links, relaxing constraints as needed.",
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
