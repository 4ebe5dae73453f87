package entity

// Source identifies which detection stage produced a candidate.
type Source string

const (
	// SourcePattern marks candidates produced by registered regex patterns.
	SourcePattern Source = "pattern"
	// SourceNER marks candidates produced by the NER backend.
	SourceNER Source = "ner"
	// SourceFormat marks candidates produced by the built-in format detectors.
	SourceFormat Source = "format"
)

// Entity represents a detected PII span. Before conflict resolution an Entity
// is a candidate; after resolution it is authoritative. Entities are value
// objects created fresh per analysis call.
type Entity struct {
	Type   string  `json:"entity_type"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Score  float64 `json:"score"`
	Text   string  `json:"text,omitempty"`
	Source Source  `json:"source,omitempty"`
}

// Len returns the span length in bytes.
func (e Entity) Len() int {
	return e.End - e.Start
}

// Overlaps reports whether the two half-open spans [Start,End) intersect.
func (e Entity) Overlaps(other Entity) bool {
	return e.Start < other.End && e.End > other.Start
}

// Contains reports whether other lies fully within e.
func (e Entity) Contains(other Entity) bool {
	return other.Start >= e.Start && other.End <= e.End
}

// SpanKey identifies a group of candidates that cover exactly the same text.
type SpanKey struct {
	Start int
	End   int
	Text  string
}

// Key returns the span identity used for conflict grouping.
func (e Entity) Key() SpanKey {
	return SpanKey{Start: e.Start, End: e.End, Text: e.Text}
}

// ClampScore caps the score at 1.0 and floors it at 0.
func ClampScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0 {
		return 0
	}
	return score
}

// CopyList returns an independently-owned copy of a result list so that cache
// readers can never alias cached state.
func CopyList(entities []Entity) []Entity {
	if entities == nil {
		return nil
	}
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}
