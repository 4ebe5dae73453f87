// Package server exposes the detection engine and anonymizer over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/analyzer"
	"github.com/srepho/allyanonimiser-go/internal/anonymizer"
	"github.com/srepho/allyanonimiser-go/internal/audit"
	"github.com/srepho/allyanonimiser-go/internal/cache"
	"github.com/srepho/allyanonimiser-go/internal/config"
	"github.com/srepho/allyanonimiser-go/internal/logger"
	"github.com/srepho/allyanonimiser-go/internal/ner"
	"github.com/srepho/allyanonimiser-go/internal/web"
	"github.com/srepho/allyanonimiser-go/internal/websocket"
)

// Server serves the analysis and anonymization API
type Server struct {
	config *config.Config
	logger *logger.Logger

	// engineMu guards the engine: its caches are not safe for concurrent use
	engineMu sync.Mutex
	engine   *analyzer.Engine
	anon     *anonymizer.Anonymizer

	shared *cache.SharedCache
	audit  *audit.Store

	router    *mux.Router
	server    *http.Server
	wsHub     *websocket.Hub
	startTime time.Time

	requestCount   int64
	detectionCount int64
	countMu        sync.Mutex
}

// New creates a server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	var backend ner.Backend
	if cfg.Engine.NER.Enabled {
		backend = ner.NewBackend(log.WithComponent("ner").Logger, cfg.Engine.NER.ModelDir, cfg.Engine.NER.MaxLength)
	}

	engine, err := analyzer.NewWithBuiltins(analyzer.Options{
		MinScoreThreshold: cfg.Engine.MinScoreThreshold,
		EnableCaching:     cfg.Engine.EnableCaching,
		MaxCacheSize:      cfg.Engine.MaxCacheSize,
		Backend:           backend,
		Logger:            log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if len(cfg.Engine.ActiveEntityTypes) > 0 {
		engine.SetActiveEntityTypes(cfg.Engine.ActiveEntityTypes)
	}

	for _, path := range cfg.Engine.PatternFiles {
		n, err := engine.Registry().Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern file %s: %w", path, err)
		}
		log.Info("Loaded pattern file",
			zap.String("path", path),
			zap.Int("patterns", n))
	}

	var shared *cache.SharedCache
	if cfg.Redis.Enabled {
		shared, err = cache.NewSharedCache(&cache.RedisConfig{
			RedisURL:       cfg.Redis.URL,
			KeyPrefix:      cfg.Redis.KeyPrefix,
			DefaultTTL:     cfg.Redis.DefaultTTL,
			MaxConnections: cfg.Redis.MaxConnections,
			MinIdleConns:   cfg.Redis.MinIdleConns,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared cache: %w", err)
		}
	}

	var auditStore *audit.Store
	if cfg.Audit.Enabled {
		auditStore, err = audit.NewStore(cfg.Audit.DSN, log.WithComponent("audit").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit store: %w", err)
		}
	}

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastDetections:     true,
		BroadcastAnonymizations: true,
		BroadcastSystem:         true,
		BroadcastConnections:    true,
	}, log.WithComponent("websocket").Logger)

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		engine:    engine,
		anon:      anonymizer.New(engine),
		shared:    shared,
		audit:     auditStore,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	if s.config.Server.RateLimit.Enabled {
		api.Use(s.rateLimitMiddleware)
	}

	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/anonymize", s.handleAnonymize).Methods("POST")
	api.HandleFunc("/explain", s.handleExplain).Methods("POST")
	api.HandleFunc("/entities", s.handleEntities).Methods("GET")
	api.HandleFunc("/patterns", s.handleListPatterns).Methods("GET")
	api.HandleFunc("/patterns", s.handleAddPattern).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/cache", s.handleClearCache).Methods("DELETE")

	if s.audit != nil {
		api.HandleFunc("/audit/runs", s.handleAuditRuns).Methods("GET")
		api.HandleFunc("/audit/runs/{id:[0-9]+}/items", s.handleAuditItems).Methods("GET")
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("ner_enabled", s.config.Engine.NER.Enabled),
		zap.Bool("redis_enabled", s.config.Redis.Enabled),
		zap.Bool("audit_enabled", s.config.Audit.Enabled),
	)

	if s.config.WebSocket.Enabled {
		go s.wsHub.Run()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")

	if s.shared != nil {
		s.shared.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}

	return s.server.Shutdown(ctx)
}

// Hub returns the WebSocket hub for broadcasting events
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}

// ApplyConfig applies a reloaded configuration to the running engine.
// Server-level settings (port, timeouts) require a restart.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if err := s.engine.SetMinScoreThreshold(cfg.Engine.MinScoreThreshold); err != nil {
		s.logger.Warn("Ignoring invalid min score threshold from reloaded config",
			zap.Float64("threshold", cfg.Engine.MinScoreThreshold))
	}
	s.engine.SetActiveEntityTypes(cfg.Engine.ActiveEntityTypes)
	s.config.Anonymizer = cfg.Anonymizer

	s.logger.Info("Configuration reloaded",
		zap.Float64("min_score_threshold", cfg.Engine.MinScoreThreshold),
		zap.Int("active_entity_types", len(cfg.Engine.ActiveEntityTypes)))
}
