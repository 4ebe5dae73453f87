package patterns

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultScore is assigned to definitions registered without an explicit score.
const DefaultScore = 0.85

// DefaultLanguage is assigned to definitions registered without a language.
const DefaultLanguage = "en"

// Definition describes one recognizer: an entity type plus the patterns and
// context keywords that detect it. This is also the persisted JSON shape.
type Definition struct {
	EntityType  string    `json:"entity_type"`
	Patterns    []Pattern `json:"patterns"`
	Context     []string  `json:"context,omitempty"`
	Name        string    `json:"name,omitempty"`
	Score       float64   `json:"score,omitempty"`
	Language    string    `json:"language,omitempty"`
	Description string    `json:"description,omitempty"`
}

func (d *Definition) normalize() {
	if d.Score == 0 {
		d.Score = DefaultScore
	}
	if d.Language == "" {
		d.Language = DefaultLanguage
	}
}

// Registry holds pattern definitions grouped by entity type. A registry is
// owned by a single engine and is not safe for concurrent mutation.
type Registry struct {
	byType map[string][]Definition
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]Definition)}
}

// Register adds a definition, appending to any existing definitions for the
// same entity type. Registration never rejects a definition; patterns that
// fail to compile are skipped at detection time.
func (r *Registry) Register(def Definition) error {
	if def.EntityType == "" {
		return fmt.Errorf("pattern definition missing entity_type")
	}
	if len(def.Patterns) == 0 {
		return fmt.Errorf("pattern definition %s has no patterns", def.EntityType)
	}
	def.normalize()
	if _, ok := r.byType[def.EntityType]; !ok {
		r.order = append(r.order, def.EntityType)
	}
	r.byType[def.EntityType] = append(r.byType[def.EntityType], def)
	return nil
}

// RegisterAll registers every definition, stopping at the first error.
func (r *Registry) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the definitions registered for an entity type.
func (r *Registry) Get(entityType string) []Definition {
	return r.byType[entityType]
}

// EntityTypes lists registered entity types in registration order.
func (r *Registry) EntityTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every definition in registration order.
func (r *Registry) All() []Definition {
	var out []Definition
	for _, t := range r.order {
		out = append(out, r.byType[t]...)
	}
	return out
}

// Len reports the number of registered definitions.
func (r *Registry) Len() int {
	n := 0
	for _, defs := range r.byType {
		n += len(defs)
	}
	return n
}

// Clear removes every definition and returns how many were discarded.
func (r *Registry) Clear() int {
	n := r.Len()
	r.byType = make(map[string][]Definition)
	r.order = nil
	return n
}

// Save writes all definitions to path as a JSON array. The file round-trips
// losslessly through Load.
func (r *Registry) Save(path string) error {
	defs := r.All()
	if defs == nil {
		defs = []Definition{}
	}
	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pattern definitions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write pattern file: %w", err)
	}
	return nil
}

// Load reads a JSON pattern file and registers its definitions, returning the
// number loaded. Existing definitions are kept.
func (r *Registry) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read pattern file: %w", err)
	}
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return 0, fmt.Errorf("failed to parse pattern file: %w", err)
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return 0, fmt.Errorf("invalid definition in %s: %w", path, err)
		}
	}
	return len(defs), nil
}
