// Package ner adapts the output of a named-entity recognition backend into
// the engine's candidate representation: backend labels are mapped onto the
// engine's type names, obvious false positives are suppressed, and name spans
// with trailing field labels are trimmed.
package ner

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/logger"
)

// Score assigned to accepted model detections.
const Score = 0.9

// labelMapping maps backend label names onto engine entity types. Unmapped
// labels are dropped.
var labelMapping = map[string]string{
	"PERSON":      "PERSON",
	"ORG":         "ORGANIZATION",
	"GPE":         "LOCATION",
	"LOC":         "LOCATION",
	"DATE":        "DATE",
	"TIME":        "TIME",
	"MONEY":       "MONEY",
	"CARDINAL":    "NUMBER",
	"ORDINAL":     "NUMBER",
	"QUANTITY":    "NUMBER",
	"PERCENT":     "PERCENT",
	"PRODUCT":     "PRODUCT",
	"EVENT":       "EVENT",
	"WORK_OF_ART": "WORK_OF_ART",
	"LAW":         "LAW",
	"LANGUAGE":    "LANGUAGE",
	"FAC":         "FACILITY",
}

// MapLabel translates a backend label to an engine entity type. The second
// return is false for unsupported labels.
func MapLabel(label string) (string, bool) {
	mapped, ok := labelMapping[label]
	return mapped, ok
}

// Recognizer wraps a Backend and produces filtered engine candidates.
type Recognizer struct {
	backend Backend
	log     *logger.Logger
}

// NewRecognizer creates a recognizer over the given backend. A nil backend is
// allowed and yields an unavailable recognizer.
func NewRecognizer(backend Backend, log *logger.Logger) *Recognizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Recognizer{backend: backend, log: log.WithComponent("ner")}
}

// Available reports whether a backend is present and ready.
func (r *Recognizer) Available() bool {
	return r.backend != nil && r.backend.IsReady()
}

// Recognize runs the backend and adapts its output. Backend failures degrade
// to an empty result; detection continues with patterns and formats only.
func (r *Recognizer) Recognize(ctx context.Context, text string) []entity.Entity {
	if !r.Available() {
		return nil
	}
	spans, err := r.backend.Recognize(ctx, text)
	if err != nil {
		r.log.Warn("backend inference failed, continuing without model detections", zap.Error(err))
		return nil
	}
	return Adapt(spans)
}

// Adapt maps and filters raw backend spans into engine candidates.
func Adapt(spans []RawSpan) []entity.Entity {
	var results []entity.Entity

	for _, span := range spans {
		entityType, ok := MapLabel(span.Label)
		if !ok {
			continue
		}

		switch entityType {
		case "PERSON":
			if trimmed, kept := filterPerson(span); kept {
				results = append(results, trimmed)
			}
			continue
		case "ORGANIZATION":
			if organizationFalsePositives[strings.ToLower(span.Text)] {
				continue
			}
		case "LOCATION":
			if isLocationFalsePositive(span.Text) {
				continue
			}
		}

		results = append(results, entity.Entity{
			Type:   entityType,
			Start:  span.Start,
			End:    span.End,
			Score:  Score,
			Text:   span.Text,
			Source: entity.SourceNER,
		})
	}

	return results
}

// filterPerson applies the person-name suppression rules. The returned entity
// may have a trimmed span when the name carried a trailing field label.
func filterPerson(span RawSpan) (entity.Entity, bool) {
	lc := strings.ToLower(span.Text)

	if strings.HasPrefix(lc, "policy") ||
		strings.HasPrefix(lc, "ref") ||
		strings.HasPrefix(lc, "claim") ||
		strings.Contains(lc, "number") {
		return entity.Entity{}, false
	}

	for _, suffix := range streetSuffixes {
		if strings.HasSuffix(lc, suffix) {
			return entity.Entity{}, false
		}
	}

	if personFalsePositiveWords[lc] {
		return entity.Entity{}, false
	}
	for _, word := range strings.Fields(lc) {
		if personFalsePositiveWords[word] {
			return entity.Entity{}, false
		}
	}

	// Trim a trailing field label off the name.
	parts := strings.Fields(span.Text)
	if len(parts) > 1 && personStopWords[strings.ToLower(parts[len(parts)-1])] {
		trimmed := strings.Join(parts[:len(parts)-1], " ")
		return entity.Entity{
			Type:   "PERSON",
			Start:  span.Start,
			End:    span.Start + len(trimmed),
			Score:  Score,
			Text:   trimmed,
			Source: entity.SourceNER,
		}, true
	}

	return entity.Entity{
		Type:   "PERSON",
		Start:  span.Start,
		End:    span.End,
		Score:  Score,
		Text:   span.Text,
		Source: entity.SourceNER,
	}, true
}

func isLocationFalsePositive(text string) bool {
	lc := strings.ToLower(text)

	if locationFalsePositives[lc] {
		return true
	}

	if len(strings.Fields(lc)) == 1 {
		for _, prefix := range nonLocationPrefixes {
			if strings.HasPrefix(lc, prefix) {
				return true
			}
		}
	}

	if strings.HasSuffix(lc, "s") && locationFalsePositives[lc[:len(lc)-1]] {
		return true
	}
	return false
}
