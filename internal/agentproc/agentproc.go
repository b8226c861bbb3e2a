// Package agentproc holds the process-lifecycle boilerplate shared by every
// agent's cmd/<agent>/main.go: environment configuration, Clue logging
// setup, the Incident Store connection, and graceful shutdown on
// SIGINT/SIGTERM. It mirrors the registry command's env-driven
// configuration and the assistant command's signal/wait-group shutdown,
// generalized across nine agent processes instead of one.
package agentproc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"goa.design/clue/log"
	"goa.design/pulse/rmap"

	"github.com/netguard/fabric/internal/a2a"
	"github.com/netguard/fabric/internal/config"
	"github.com/netguard/fabric/internal/store"
	"github.com/netguard/fabric/internal/telemetry"
)

// collaboratorHealthMapName is the Pulse replicated map every agent process
// joins to share collaborator health observations cluster-wide.
const collaboratorHealthMapName = "fabric:collaborator-health"

// Runtime bundles the dependencies every agent main wires identically:
// configuration, structured logging, the Incident Store connection, and an
// A2A client for reaching collaborators.
type Runtime struct {
	Config config.Agent
	Logger telemetry.Logger
	Store  *store.RedisStore
	Caller *a2a.Client
}

// Bootstrap loads configuration for name/version, opens the Clue logging
// context, connects to the Incident Store, and constructs a registry-backed
// A2A client. Every cmd main starts with this call.
func Bootstrap(name, version string) (context.Context, *Runtime) {
	cfg := config.Load(name, version)

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if cfg.Debug {
		ctx = log.Context(ctx, log.WithDebug())
	}
	log.Print(ctx, log.KV{K: "agent", V: name}, log.KV{K: "listen_addr", V: cfg.ListenAddr})

	st := store.NewRedisStore(cfg.RedisURL, cfg.RedisPassword)

	var health *a2a.CollaboratorHealth
	healthMap, err := rmap.Join(ctx, collaboratorHealthMapName, st.Client())
	if err != nil {
		// Degraded, not fatal: without the shared map every node just loses
		// the fast-fail-on-known-down-collaborator optimization and falls
		// back to dispatching and waiting out the task timeout.
		log.Printf(ctx, "collaborator health map unavailable, continuing without it: %v", err)
	} else {
		health = a2a.NewCollaboratorHealth(healthMap, a2a.DefaultHealthStaleness)
	}
	caller := a2a.NewClient(cfg.Registry, a2a.WithHealthMap(health))

	return ctx, &Runtime{
		Config: cfg,
		Logger: telemetry.NewClueLogger(),
		Store:  st,
		Caller: caller,
	}
}

// Serve starts srv on rt.Config.ListenAddr and blocks until SIGINT/SIGTERM,
// then drains in-flight requests with a 10s grace period before returning.
func Serve(ctx context.Context, rt *Runtime, srv *a2a.Server) {
	httpServer := &http.Server{
		Addr:    rt.Config.ListenAddr,
		Handler: srv,
	}

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf(ctx, "listening on %s", rt.Config.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	log.Printf(ctx, "exiting (%v)", <-errc)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf(ctx, "shutdown error: %v", err)
	}
	if err := rt.Store.Close(); err != nil {
		log.Printf(ctx, "store close error: %v", err)
	}

	wg.Wait()
	log.Printf(ctx, "exited")
}
