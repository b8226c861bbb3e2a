// Command traffic-analytics runs the Traffic Analytics agent: builds a
// traffic demand matrix from SR-PM and NetFlow telemetry, predicts link
// congestion against the topology, and emits a proactive alert to the
// orchestrator when risk crosses the warning threshold.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
//	TOPOLOGY_URL - topology/knowledge-graph service base URL (default "http://localhost:9104")
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/agentproc"
	"github.com/netguard/fabric/internal/trafficanalytics"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("traffic-analytics", version)

	topologyURL := envOr("TOPOLOGY_URL", "http://localhost:9104")
	httpClient := &http.Client{Timeout: 15 * time.Second}
	topology := trafficanalytics.NewHTTPTopologyClient(topologyURL, httpClient)
	lookup := trafficanalytics.NewHTTPServiceLookup(topologyURL, httpClient)
	predictor := trafficanalytics.NewPredictor(topology)
	emitter := trafficanalytics.NewAlertEmitter(rt.Caller, rt.Logger)
	svc := trafficanalytics.NewService(predictor, lookup, emitter, rt.Logger)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "traffic-analytics",
		Version:            version,
		Description:        "Predicts link congestion from telemetry and emits proactive alerts.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"prediction", "telemetry"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("analyze_traffic", svc.TaskHandler, a2a.Capability{
		Name:        "analyze_traffic",
		Description: "Analyze a telemetry window for congestion risk and emit a proactive alert if warranted.",
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
