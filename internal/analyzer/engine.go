// Package analyzer implements the detection engine: registered patterns,
// built-in format detectors, and an optional NER backend feed candidates
// through conflict resolution and context filtering into a final entity list.
package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/srepho/allyanonimiser-go/internal/cache"
	"github.com/srepho/allyanonimiser-go/internal/contextual"
	"github.com/srepho/allyanonimiser-go/internal/detect"
	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/logger"
	"github.com/srepho/allyanonimiser-go/internal/ner"
	"github.com/srepho/allyanonimiser-go/internal/patterns"
	"github.com/srepho/allyanonimiser-go/internal/resolve"
)

// Options configures a new Engine.
type Options struct {
	// MinScoreThreshold is the minimum confidence for returned entities.
	MinScoreThreshold float64
	// EnableCaching turns the in-process result caches on.
	EnableCaching bool
	// MaxCacheSize is the capacity of each cache tier.
	MaxCacheSize int
	// Backend is an optional NER backend; nil disables model detection.
	Backend ner.Backend
	// Logger defaults to a no-op logger.
	Logger *logger.Logger
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		MinScoreThreshold: 0.7,
		EnableCaching:     true,
		MaxCacheSize:      10000,
	}
}

// Engine is the top-level PII detection engine.
//
// An Engine is not safe for concurrent use: its caches are unsynchronized.
// Use one engine per goroutine or guard calls with a mutex.
type Engine struct {
	registry   *patterns.Registry
	detector   *detect.PatternDetector
	recognizer *ner.Recognizer
	cache      *cache.Memory
	log        *logger.Logger

	activeTypes map[string]bool
	minScore    float64
	metadata    map[string]TypeMetadata
}

// New creates an engine with an empty pattern registry.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = 10000
	}
	registry := patterns.NewRegistry()
	return &Engine{
		registry:    registry,
		detector:    detect.NewPatternDetector(registry, opts.Logger),
		recognizer:  ner.NewRecognizer(opts.Backend, opts.Logger),
		cache:       cache.NewMemory(opts.EnableCaching, opts.MaxCacheSize),
		log:         opts.Logger.WithComponent("analyzer"),
		activeTypes: make(map[string]bool),
		minScore:    opts.MinScoreThreshold,
		metadata:    builtinMetadata(),
	}
}

// NewWithBuiltins creates an engine preloaded with the Australian, general,
// and insurance pattern libraries.
func NewWithBuiltins(opts Options) (*Engine, error) {
	e := New(opts)
	for _, def := range patterns.BuiltinDefinitions() {
		if err := e.AddPattern(def); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddPattern registers a pattern definition and records metadata for its
// entity type.
func (e *Engine) AddPattern(def patterns.Definition) error {
	if err := e.registry.Register(def); err != nil {
		return err
	}
	if _, known := e.metadata[def.EntityType]; !known {
		example := "N/A"
		if len(def.Patterns) > 0 && def.Patterns[0].Kind == patterns.KindRegex && len(def.Patterns[0].Regex) < 50 {
			example = def.Patterns[0].Regex
		} else if def.Name != "" {
			example = "Example of " + def.Name
		}
		description := "Custom pattern for " + def.EntityType
		if def.Description != "" {
			description = def.Description
		}
		e.metadata[def.EntityType] = TypeMetadata{
			Description: description,
			Example:     example,
			Source:      sourceCustom,
		}
	}
	return nil
}

// Registry exposes the engine's pattern registry for persistence.
func (e *Engine) Registry() *patterns.Registry {
	return e.registry
}

// GetPatterns returns the definitions registered for an entity type.
func (e *Engine) GetPatterns(entityType string) []patterns.Definition {
	return e.registry.Get(entityType)
}

// SupportedEntities lists every entity type the engine can report, sorted.
func (e *Engine) SupportedEntities() []string {
	seen := make(map[string]bool, len(e.metadata))
	for t := range e.metadata {
		seen[t] = true
	}
	for _, t := range e.registry.EntityTypes() {
		seen[t] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// AvailableEntityTypes returns the metadata table.
func (e *Engine) AvailableEntityTypes() map[string]TypeMetadata {
	out := make(map[string]TypeMetadata, len(e.metadata))
	for k, v := range e.metadata {
		out[k] = v
	}
	return out
}

// SetActiveEntityTypes restricts analysis to the given types. Nil or empty
// re-activates every type.
func (e *Engine) SetActiveEntityTypes(entityTypes []string) {
	e.activeTypes = make(map[string]bool, len(entityTypes))
	for _, t := range entityTypes {
		e.activeTypes[t] = true
	}
}

// SetMinScoreThreshold updates the confidence floor.
func (e *Engine) SetMinScoreThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0 and 1.0, got %g", threshold)
	}
	e.minScore = threshold
	return nil
}

// MinScoreThreshold returns the current confidence floor.
func (e *Engine) MinScoreThreshold() float64 {
	return e.minScore
}

// NERAvailable reports whether a model backend is ready.
func (e *Engine) NERAvailable() bool {
	return e.recognizer.Available()
}

// Analyze runs the full detection pipeline. See AnalyzeContext.
func (e *Engine) Analyze(text, language string, scoreAdjustment map[string]float64) []entity.Entity {
	return e.AnalyzeContext(context.Background(), text, language, scoreAdjustment)
}

// AnalyzeContext detects PII entities in text. scoreAdjustment adds a
// per-type delta to candidate scores before threshold filtering; scores are
// capped at 1.0. Identical inputs always produce identical output.
func (e *Engine) AnalyzeContext(ctx context.Context, text, language string, scoreAdjustment map[string]float64) []entity.Entity {
	if text == "" {
		return nil
	}

	resultKey := cache.ResultKey(text, e.activeTypes, scoreAdjustment, e.minScore)
	if cached, ok := e.cache.GetResult(resultKey); ok {
		return cached
	}

	nerAvailable := e.recognizer.Available()

	patternResults, ok := e.cache.GetPattern(text)
	if !ok {
		patternResults = e.detector.Detect(text, nerAvailable)
		e.cache.PutPattern(text, patternResults)
	}

	var nerResults []entity.Entity
	if nerAvailable {
		nerResults, ok = e.cache.GetNER(text)
		if !ok {
			nerResults = e.recognizer.Recognize(ctx, text)
			e.cache.PutNER(text, nerResults)
		}
	}

	formatResults := detect.DetectFormats(text)

	combined := make([]entity.Entity, 0, len(patternResults)+len(nerResults)+len(formatResults))
	combined = append(combined, patternResults...)
	combined = append(combined, nerResults...)
	combined = append(combined, formatResults...)

	if len(scoreAdjustment) > 0 {
		for i := range combined {
			if adj, ok := scoreAdjustment[combined[i].Type]; ok {
				combined[i].Score = entity.ClampScore(combined[i].Score + adj)
			}
		}
	}

	if len(e.activeTypes) > 0 {
		filtered := combined[:0]
		for _, c := range combined {
			if e.activeTypes[c.Type] {
				filtered = append(filtered, c)
			}
		}
		combined = filtered
	}

	thresholded := combined[:0]
	for _, c := range combined {
		if c.Score >= e.minScore {
			thresholded = append(thresholded, c)
		}
	}

	resolved := resolve.Resolve(thresholded)

	final := make([]entity.Entity, 0, len(resolved))
	for _, r := range resolved {
		if contextual.IsLikelyFalsePositive(text, r.Type, r.Start, r.End) {
			continue
		}
		analysis := contextual.Analyze(text, r.Type, r.Start, r.End)
		if analysis.ConfidenceBoost > 0 {
			r.Score = entity.ClampScore(r.Score + analysis.ConfidenceBoost)
		}
		final = append(final, r)
	}

	e.cache.PutResult(resultKey, final)
	return final
}

// ExplainDetection describes why an entity was detected: its metadata, the
// patterns that match its text, and the surrounding context.
func (e *Engine) ExplainDetection(text string, result entity.Entity) Explanation {
	meta, known := e.metadata[result.Type]
	if !known {
		meta = TypeMetadata{Description: "Unknown entity type"}
	}

	explanation := Explanation{
		EntityType:      result.Type,
		MatchedText:     result.Text,
		ConfidenceScore: result.Score,
		Metadata:        meta,
	}

	before, after := contextual.Window(text, result.Start, result.End, 50)
	explanation.ContextBefore = before
	explanation.ContextAfter = after

	if meta.Source == sourceModel {
		explanation.DetectionMethod = "model inference"
		return explanation
	}

	explanation.DetectionMethod = "pattern matching"
	for _, def := range e.registry.Get(result.Type) {
		for _, p := range def.Patterns {
			re, err := p.Compile()
			if err != nil {
				continue
			}
			if re.MatchString(result.Text) {
				if p.Kind == patterns.KindRegex {
					explanation.MatchingPatterns = append(explanation.MatchingPatterns, p.Regex)
				} else {
					explanation.MatchingPatterns = append(explanation.MatchingPatterns, p.Phrase)
				}
			}
		}
		explanation.ContextTerms = append(explanation.ContextTerms, def.Context...)
	}
	return explanation
}

// Explanation is the result of ExplainDetection.
type Explanation struct {
	EntityType       string       `json:"entity_type"`
	MatchedText      string       `json:"matched_text"`
	ConfidenceScore  float64      `json:"confidence_score"`
	Metadata         TypeMetadata `json:"metadata"`
	DetectionMethod  string       `json:"detection_method"`
	MatchingPatterns []string     `json:"matching_patterns,omitempty"`
	ContextTerms     []string     `json:"context_terms,omitempty"`
	ContextBefore    string       `json:"context_before"`
	ContextAfter     string       `json:"context_after"`
}

// CacheStats reports cache usage.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache empties every cache tier and returns the number of discarded
// entries.
func (e *Engine) ClearCache() int {
	return e.cache.Clear()
}
