package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"marquee/internal/cache"
	"marquee/internal/config"
	"marquee/internal/history"
	"marquee/internal/screenly"
	"marquee/internal/tunnel"
	"marquee/internal/workflow"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// BridgeServer is the HTTP surface of the signage bridge. It exposes the
// listing triggers and workflow actions over a local REST API, forwarding
// each caller's Screenly token to the upstream client.
type BridgeServer struct {
	config       *config.Config
	configPath   string
	client       *screenly.Client
	orchestrator *workflow.Orchestrator
	store        *history.Store      // may be nil when history is disabled
	listings     *cache.ListingCache // may be nil when caching is disabled
	tunnelSvc    *tunnel.Service
	logger       *logrus.Logger
	watcher      *fsnotify.Watcher
	httpServer   *http.Server
	startedAt    time.Time

	mu           sync.RWMutex
	defaultToken screenly.Token // fallback credential, hot-reloadable
}

// NewBridgeServer wires the bridge from configuration. store may be nil.
func NewBridgeServer(cfg *config.Config, configPath string, store *history.Store, logger *logrus.Logger) (*BridgeServer, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client := screenly.NewClient(cfg, logger)

	var listings *cache.ListingCache
	if cfg.Cache.Enabled {
		listings = cache.NewListingCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	}

	tunnelSvc, err := tunnel.NewService(&cfg.Tunnel, logger)
	if err != nil {
		logger.WithError(err).Warn("Tunnel service not available")
		tunnelSvc = nil
	}

	return &BridgeServer{
		config:       cfg,
		configPath:   configPath,
		client:       client,
		orchestrator: workflow.NewOrchestrator(client, store, logger),
		store:        store,
		listings:     listings,
		tunnelSvc:    tunnelSvc,
		logger:       logger,
		startedAt:    time.Now(),
		defaultToken: screenly.Token(cfg.Screenly.APIKey),
	}, nil
}

// Handler builds the route table wrapped in the middleware chain.
func (bs *BridgeServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", bs.handleHealthCheck)
	mux.HandleFunc("/api/auth/verify", bs.handleVerifyToken)

	// Listing triggers
	mux.HandleFunc("/api/screens", bs.handleListScreens)
	mux.HandleFunc("/api/playlists", bs.handleListPlaylists)
	mux.HandleFunc("/api/assets", bs.handleAssets)

	// Workflow actions
	mux.HandleFunc("/api/playlist-items", bs.handleScheduleItem)
	mux.HandleFunc("/api/screens/assign", bs.handleAssignScreen)
	mux.HandleFunc("/api/workflows/complete", bs.handleCompleteWorkflow)
	mux.HandleFunc("/api/cleanup", bs.handleCleanup)
	mux.HandleFunc("/api/runs", bs.handleRecentRuns)

	var handler http.Handler = mux
	handler = bs.requestLoggingMiddleware(handler)
	handler = bs.corsMiddleware(handler)
	handler = bs.panicRecoveryMiddleware(handler)
	return handler
}

// Start runs the HTTP server until it fails or the process is shut down.
func (bs *BridgeServer) Start() error {
	if bs.config.Server.WatchForConfig {
		if err := bs.startConfigWatcher(); err != nil {
			bs.logger.WithError(err).Warn("Could not start config watcher")
		}
	}

	localAddress := fmt.Sprintf("http://%s", bs.config.GetAddress())
	bs.logger.WithFields(logrus.Fields{
		"address":  localAddress,
		"upstream": bs.client.BaseURL(),
	}).Info("Bridge server starting")

	if bs.tunnelSvc != nil {
		if err := bs.tunnelSvc.Start(context.Background(), localAddress); err != nil {
			bs.logger.WithError(err).Warn("Could not start tunnel")
		}
	}

	bs.httpServer = &http.Server{
		Addr:        bs.config.GetAddress(),
		Handler:     bs.Handler(),
		ReadTimeout: time.Duration(bs.config.Server.ReadTimeout) * time.Second,
	}

	if err := bs.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, the tunnel, and the config watcher.
func (bs *BridgeServer) Shutdown() {
	bs.logger.Info("Shutting down bridge server")

	bs.stopConfigWatcher()

	if bs.tunnelSvc != nil {
		if err := bs.tunnelSvc.Stop(); err != nil {
			bs.logger.WithError(err).Warn("Tunnel stop failed")
		}
	}

	if bs.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bs.httpServer.Shutdown(ctx); err != nil {
			bs.logger.WithError(err).Warn("HTTP shutdown failed")
		}
	}

	bs.logger.Info("Bridge server shutdown complete")
}

// DefaultToken returns the configured fallback credential.
func (bs *BridgeServer) DefaultToken() screenly.Token {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.defaultToken
}

// setDefaultToken swaps the fallback credential after a config reload.
func (bs *BridgeServer) setDefaultToken(token screenly.Token) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.defaultToken = token
}
