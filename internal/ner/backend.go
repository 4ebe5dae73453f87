package ner

import (
	"context"
)

// RawSpan is a labelled character span as produced by a model backend, before
// label mapping and filtering.
type RawSpan struct {
	Label string
	Start int
	End   int
	Text  string
}

// Backend defines a pluggable named-entity recognition backend.
// Implementations may use ONNX Runtime or other inference engines.
type Backend interface {
	// Recognize runs inference over the text and returns raw labelled spans
	// with character offsets into the input.
	Recognize(ctx context.Context, text string) ([]RawSpan, error)
	// IsReady returns whether the backend is initialized and ready.
	IsReady() bool
	// Close releases any native resources.
	Close() error
}

// NewBackend creates a backend if supported by the current build.
// The default (no build tags) returns nil to avoid CGO dependencies; the
// engine then degrades to pattern and format detection only.
// Note: Implementations are provided in build-tagged files, e.g., backend_onnx.go and backend_stub.go
