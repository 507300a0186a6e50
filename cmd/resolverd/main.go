// Package main implements resolverd, the long-running HTTP front end
// for the Converge resolver: it exposes a single /resolve endpoint
// plus health and metrics endpoints, wiring the resolver core to a
// process the way cmd/coordinator wires the shard registry to one.
//
// Configuration:
//   - RESOLVER_LISTEN_ADDR: HTTP listen address (default: ":8090")
//   - RESOLVER_METRICS_ADDR: read into the configuration (default: ":9090")
//     but not used; metrics are served at /metrics on the listen address
//   - RESOLVER_STORE_BACKEND: "memory" or "remote" (default: "memory")
//   - RESOLVER_REMOTE_STORE_URL: base URL when store backend is "remote"
//   - RESOLVER_LOAD_REMOTE_DEVICES: enable remote device loading (default: false)
//   - RESOLVER_WORKER_TIMEOUT: idle timeout for spawned workers (default: 30s)
//   - RESOLVER_LOG_LEVEL: logrus level name (default: "info")
//
// Example usage:
//
//	RESOLVER_LISTEN_ADDR=:8090 ./resolverd
//
//	curl -X POST localhost:8090/resolve -d '{"message":{"keys":["path","a"],"values":[...]}}'
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/convergenode/resolver/internal/cache"
	"github.com/convergenode/resolver/internal/config"
	"github.com/convergenode/resolver/internal/devices"
	"github.com/convergenode/resolver/internal/group"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/resolver"
	"github.com/convergenode/resolver/internal/store"
	"github.com/convergenode/resolver/internal/telemetry"
	"github.com/convergenode/resolver/internal/trust"
)

func main() {
	cfg, err := config.Load(os.Getenv("RESOLVER_CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	var backing store.Store
	switch cfg.StoreBackend {
	case "remote":
		backing = store.NewRemote(cfg.RemoteStoreURL)
	default:
		backing = store.NewMemory()
	}

	metrics := telemetry.New(prometheus.DefaultRegisterer)
	cachePlane := cache.New(backing, cfg.CacheFrontSize, metrics)
	groups := group.NewRegistry()
	trustPolicy := trust.NewStatic(cfg.TrustedDeviceSigners)

	res := resolver.New(devices.NewMessage(), backing, trustPolicy, cachePlane, groups, log, metrics)

	srv := &server{resolver: res, log: log, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", srv.handleHealth)
	r.Post("/resolve", srv.handleResolve)
	r.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("resolverd listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	cachePlane.Wait()
	log.Info("resolverd stopped")
}

type server struct {
	resolver *resolver.Resolver
	log      *logrus.Logger
	cfg      config.Config
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// resolveRequest is the wire shape for POST /resolve: a message plus
// the per-call options a caller wants to set. Fields not recognized by
// internal/message's reserved-key set are carried as ordinary message
// fields.
type resolveRequest struct {
	Message json.RawMessage `json:"message"`
	Cache   string          `json:"cache,omitempty"`
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := message.UnmarshalMessage(req.Message)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := options.Default()
	opts.LoadRemoteDevices = s.cfg.LoadRemoteDevices
	opts.WorkerTimeout = s.cfg.WorkerTimeout
	if req.Cache != "" {
		opts.Cache = options.CacheControl(req.Cache)
	}

	out, err := s.resolver.ResolveMessage(msg, opts)
	if err != nil {
		s.log.WithError(err).Warn("resolve failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	data, err := message.MarshalValue(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.converge.value+json")
	_, _ = w.Write(data)
}
