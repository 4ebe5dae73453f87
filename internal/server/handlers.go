package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/anonymizer"
	"github.com/srepho/allyanonimiser-go/internal/cache"
	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/patterns"
	"github.com/srepho/allyanonimiser-go/internal/websocket"
)

// AnalyzeRequest is the body of POST /v1/analyze
type AnalyzeRequest struct {
	Text            string             `json:"text"`
	Language        string             `json:"language,omitempty"`
	ScoreAdjustment map[string]float64 `json:"score_adjustment,omitempty"`
}

// AnalyzeResponse is the result of POST /v1/analyze
type AnalyzeResponse struct {
	Entities     []entity.Entity `json:"entities"`
	Count        int             `json:"count"`
	Cached       bool            `json:"cached"`
	ProcessingMS float64         `json:"processing_ms"`
}

// AnonymizeRequest is the body of POST /v1/anonymize
type AnonymizeRequest struct {
	Text           string            `json:"text"`
	Language       string            `json:"language,omitempty"`
	Operators      map[string]string `json:"operators,omitempty"`
	AgeBracketSize int               `json:"age_bracket_size,omitempty"`
	KeepPostcode   *bool             `json:"keep_postcode,omitempty"`
}

// AnonymizeResponse is the result of POST /v1/anonymize
type AnonymizeResponse struct {
	Text         string            `json:"text"`
	Items        []anonymizer.Item `json:"items"`
	AuditRunID   int64             `json:"audit_run_id,omitempty"`
	ProcessingMS float64           `json:"processing_ms"`
}

// ExplainRequest is the body of POST /v1/explain
type ExplainRequest struct {
	Text   string        `json:"text"`
	Entity entity.Entity `json:"entity"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleAnalyze runs the detection pipeline on the request text
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	requestID := getRequestID(r.Context())
	start := time.Now()

	activeTypes := make(map[string]bool, len(s.config.Engine.ActiveEntityTypes))
	for _, t := range s.config.Engine.ActiveEntityTypes {
		activeTypes[t] = true
	}

	s.engineMu.Lock()
	resultKey := cache.ResultKey(req.Text, activeTypes, req.ScoreAdjustment, s.engine.MinScoreThreshold())

	var entities []entity.Entity
	cached := false
	if s.shared != nil {
		if hit, ok := s.shared.Get(r.Context(), resultKey); ok {
			entities = hit
			cached = true
		}
	}
	if !cached {
		hitsBefore := s.engine.CacheStats().Hits
		entities = s.engine.Analyze(req.Text, req.Language, req.ScoreAdjustment)
		cached = s.engine.CacheStats().Hits > hitsBefore
		if s.shared != nil {
			s.shared.Put(r.Context(), resultKey, entities)
		}
	}
	s.engineMu.Unlock()

	duration := time.Since(start)
	s.logger.WithRequestID(requestID).LogAnalysis(len(req.Text), len(entities), cached, float64(duration.Nanoseconds())/1e6)

	s.countMu.Lock()
	s.requestCount++
	s.detectionCount += int64(len(entities))
	s.countMu.Unlock()

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeDetection,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.DetectionEvent{
			RequestID:    requestID,
			TextLength:   len(req.Text),
			EntityCount:  len(entities),
			EntityTypes:  countTypes(entities),
			Cached:       cached,
			ProcessingMS: float64(duration.Nanoseconds()) / 1e6,
		},
	})

	if entities == nil {
		entities = []entity.Entity{}
	}
	s.writeJSON(w, http.StatusOK, AnalyzeResponse{
		Entities:     entities,
		Count:        len(entities),
		Cached:       cached,
		ProcessingMS: float64(duration.Nanoseconds()) / 1e6,
	})
}

// handleAnonymize detects and rewrites PII in the request text
func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	var req AnonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	requestID := getRequestID(r.Context())
	start := time.Now()

	opts := anonymizer.DefaultOptions()
	opts.Operators = s.config.Anonymizer.Operators
	if s.config.Anonymizer.AgeBracketSize > 0 {
		opts.AgeBracketSize = s.config.Anonymizer.AgeBracketSize
	}
	opts.KeepPostcode = s.config.Anonymizer.KeepPostcode

	if req.Operators != nil {
		opts.Operators = req.Operators
	}
	if req.Language != "" {
		opts.Language = req.Language
	}
	if req.AgeBracketSize > 0 {
		opts.AgeBracketSize = req.AgeBracketSize
	}
	if req.KeepPostcode != nil {
		opts.KeepPostcode = *req.KeepPostcode
	}

	s.engineMu.Lock()
	result := s.anon.Anonymize(req.Text, opts)
	s.engineMu.Unlock()

	var runID int64
	if s.audit != nil {
		id, err := s.audit.RecordRun(r.Context(), req.Text, result.Items)
		if err != nil {
			s.logger.WithRequestID(requestID).Error("Failed to record audit run", zap.Error(err))
		} else {
			runID = id
		}
	}

	duration := time.Since(start)

	s.countMu.Lock()
	s.requestCount++
	s.countMu.Unlock()

	typeCounts := make(map[string]int, len(result.Items))
	for _, item := range result.Items {
		typeCounts[item.EntityType]++
	}

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeAnonymization,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.AnonymizationEvent{
			RequestID:    requestID,
			TextLength:   len(req.Text),
			ItemCount:    len(result.Items),
			EntityTypes:  typeCounts,
			ProcessingMS: float64(duration.Nanoseconds()) / 1e6,
		},
	})

	s.writeJSON(w, http.StatusOK, AnonymizeResponse{
		Text:         result.Text,
		Items:        result.Items,
		AuditRunID:   runID,
		ProcessingMS: float64(duration.Nanoseconds()) / 1e6,
	})
}

// handleExplain describes why an entity was detected
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" || req.Entity.Type == "" {
		s.writeError(w, http.StatusBadRequest, "text and entity are required")
		return
	}
	if req.Entity.Start < 0 || req.Entity.End > len(req.Text) || req.Entity.Start >= req.Entity.End {
		s.writeError(w, http.StatusBadRequest, "entity span out of range")
		return
	}

	s.engineMu.Lock()
	explanation := s.engine.ExplainDetection(req.Text, req.Entity)
	s.engineMu.Unlock()

	s.writeJSON(w, http.StatusOK, explanation)
}

// handleEntities lists the entity types the engine can report
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	metadata := s.engine.AvailableEntityTypes()
	supported := s.engine.SupportedEntities()
	s.engineMu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"supported": supported,
		"metadata":  metadata,
	})
}

// handleListPatterns returns every registered pattern definition
func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	defs := s.engine.Registry().All()
	s.engineMu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"patterns": defs,
		"count":    len(defs),
	})
}

// handleAddPattern registers a custom pattern definition
func (s *Server) handleAddPattern(w http.ResponseWriter, r *http.Request) {
	var def patterns.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pattern definition")
		return
	}

	s.engineMu.Lock()
	err := s.engine.AddPattern(def)
	s.engineMu.Unlock()

	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("Custom pattern registered",
		zap.String("entity_type", def.EntityType),
		zap.Int("patterns", len(def.Patterns)))

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"entity_type": def.EntityType,
		"status":      "registered",
	})
}

// handleStats reports engine, cache, and hub statistics
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	cacheStats := s.engine.CacheStats()
	nerAvailable := s.engine.NERAvailable()
	s.engineMu.Unlock()

	s.countMu.Lock()
	requests := s.requestCount
	detections := s.detectionCount
	s.countMu.Unlock()

	stats := map[string]interface{}{
		"uptime":           time.Since(s.startTime).String(),
		"total_requests":   requests,
		"total_detections": detections,
		"ner_available":    nerAvailable,
		"cache":            cacheStats,
	}

	if s.shared != nil {
		stats["shared_cache"] = s.shared.Stats(r.Context())
	}
	if s.config.WebSocket.Enabled {
		stats["websocket"] = s.wsHub.GetStats()
	}
	if s.audit != nil {
		if counts, err := s.audit.TypeCounts(r.Context()); err == nil {
			stats["audit_type_counts"] = counts
		}
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// handleClearCache empties the in-process caches and the shared cache
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	discarded := s.engine.ClearCache()
	s.engineMu.Unlock()

	sharedDiscarded := 0
	if s.shared != nil {
		n, err := s.shared.Clear(r.Context())
		if err != nil {
			s.logger.Error("Failed to clear shared cache", zap.Error(err))
		}
		sharedDiscarded = n
	}

	s.writeJSON(w, http.StatusOK, map[string]int{
		"discarded":        discarded,
		"shared_discarded": sharedDiscarded,
	})
}

// handleAuditRuns returns recent anonymization runs
func (s *Server) handleAuditRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.audit.RecentRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query audit runs", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to query audit runs")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleAuditItems returns the items recorded for one run
func (s *Server) handleAuditItems(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	items, err := s.audit.RunItems(r.Context(), runID)
	if err != nil {
		s.logger.Error("Failed to query audit items", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to query audit items")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"items":  items,
		"count":  len(items),
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	supported := s.engine.SupportedEntities()
	nerAvailable := s.engine.NERAvailable()
	threshold := s.engine.MinScoreThreshold()
	s.engineMu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":                "allyanonimiser",
		"version":             "1.0.0",
		"entity_types":        len(supported),
		"ner_available":       nerAvailable,
		"min_score_threshold": threshold,
		"caching_enabled":     s.config.Engine.EnableCaching,
	})
}

// handleWebSocket upgrades the connection and hands it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}

func countTypes(entities []entity.Entity) map[string]int {
	counts := make(map[string]int, len(entities))
	for _, e := range entities {
		counts[e.Type]++
	}
	return counts
}
