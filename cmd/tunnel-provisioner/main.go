// Command tunnel-provisioner runs the Tunnel Provisioner agent: builds,
// creates, verifies, and steers SR-MPLS/SRv6/RSVP-TE protection tunnels
// against the carrier's SDN controller, and deletes them once restoration
// completes.
//
// # Configuration
//
// In addition to the common agent variables (see internal/config):
//
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
	"github.com/netguard/fabric/internal/tunnel"
)

const version = "0.1.0"

func main() {
	ctx, rt := agentproc.Bootstrap("tunnel-provisioner", version)

	controllerURL := envOr("CONTROLLER_URL", "http://localhost:9103")
	controllerToken := os.Getenv("CONTROLLER_TOKEN")
	controller := tunnel.NewHTTPController(controllerURL, controllerToken, &http.Client{Timeout: 30 * time.Second})
	provisioner := tunnel.NewProvisioner(rt.Store, controller)

	srv := a2a.NewServer(a2a.ServerConfig{
		Name:               "tunnel-provisioner",
		Version:            version,
		Description:        "Creates, verifies, and steers protection tunnels against the SDN controller.",
		URL:                "http://" + rt.Config.ListenAddr,
		Tags:               []string{"provisioning"},
		DefaultTaskTimeout: rt.Config.TaskTimeout,
	}, rt.Logger, func() error { return rt.Store.Ping(context.Background()) })

	srv.Register("provision_tunnel", provisioner.ProvisionTaskHandler, a2a.Capability{
		Name:        "provision_tunnel",
		Description: "Create and activate a protection tunnel for the given service.",
	})
	srv.Register("delete_tunnel", provisioner.DeleteTaskHandler, a2a.Capability{
		Name:        "delete_tunnel",
		Description: "Delete a protection tunnel and release its binding-SID.",
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
