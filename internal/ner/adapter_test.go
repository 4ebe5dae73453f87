package ner

import (
	"context"
	"errors"
	"testing"

	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/logger"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"PERSON", "PERSON", true},
		{"ORG", "ORGANIZATION", true},
		{"GPE", "LOCATION", true},
		{"LOC", "LOCATION", true},
		{"CARDINAL", "NUMBER", true},
		{"FAC", "FACILITY", true},
		{"NORP", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MapLabel(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MapLabel(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAdaptPerson(t *testing.T) {
	t.Run("clean name accepted", func(t *testing.T) {
		got := Adapt([]RawSpan{{Label: "PERSON", Start: 5, End: 15, Text: "John Smith"}})
		if len(got) != 1 {
			t.Fatalf("expected 1 result, got %d", len(got))
		}
		if got[0].Type != "PERSON" || got[0].Score != Score || got[0].Source != entity.SourceNER {
			t.Errorf("unexpected result %+v", got[0])
		}
	})

	t.Run("label prefixes dropped", func(t *testing.T) {
		for _, text := range []string{"Policy Holder", "Ref 42", "Claim Handler", "Member Number"} {
			got := Adapt([]RawSpan{{Label: "PERSON", Start: 0, End: len(text), Text: text}})
			if len(got) != 0 {
				t.Errorf("expected %q to be dropped, got %+v", text, got)
			}
		}
	})

	t.Run("street suffix dropped", func(t *testing.T) {
		got := Adapt([]RawSpan{{Label: "PERSON", Start: 12, End: 25, Text: "George Street"}})
		if len(got) != 0 {
			t.Errorf("expected street name to be dropped, got %+v", got)
		}
	})

	t.Run("false positive word dropped", func(t *testing.T) {
		for _, text := range []string{"Pending", "John Pending", "Excess Premium"} {
			got := Adapt([]RawSpan{{Label: "PERSON", Start: 0, End: len(text), Text: text}})
			if len(got) != 0 {
				t.Errorf("expected %q to be dropped, got %+v", text, got)
			}
		}
	})

	t.Run("trailing field label trimmed", func(t *testing.T) {
		text := "Jane Doe Matter"
		got := Adapt([]RawSpan{{Label: "PERSON", Start: 10, End: 10 + len(text), Text: text}})
		if len(got) != 1 {
			t.Fatalf("expected 1 result, got %d", len(got))
		}
		if got[0].Text != "Jane Doe" {
			t.Errorf("expected trimmed text %q, got %q", "Jane Doe", got[0].Text)
		}
		if got[0].Start != 10 || got[0].End != 10+len("Jane Doe") {
			t.Errorf("trimmed span offsets wrong: %d..%d", got[0].Start, got[0].End)
		}
	})
}

func TestAdaptOrganization(t *testing.T) {
	t.Run("field labels dropped", func(t *testing.T) {
		for _, text := range []string{"DOB", "Medicare", "TFN", "abn"} {
			got := Adapt([]RawSpan{{Label: "ORG", Start: 0, End: len(text), Text: text}})
			if len(got) != 0 {
				t.Errorf("expected %q to be dropped, got %+v", text, got)
			}
		}
	})

	t.Run("real organization accepted", func(t *testing.T) {
		got := Adapt([]RawSpan{{Label: "ORG", Start: 0, End: 14, Text: "Acme Insurance"}})
		if len(got) != 1 || got[0].Type != "ORGANIZATION" {
			t.Fatalf("expected organization, got %+v", got)
		}
	})
}

func TestAdaptLocation(t *testing.T) {
	t.Run("claim vocabulary dropped", func(t *testing.T) {
		for _, text := range []string{"Awaiting", "Workshop", "repairs", "Claims"} {
			got := Adapt([]RawSpan{{Label: "GPE", Start: 0, End: len(text), Text: text}})
			if len(got) != 0 {
				t.Errorf("expected %q to be dropped, got %+v", text, got)
			}
		}
	})

	t.Run("plural of listed word dropped", func(t *testing.T) {
		// "premiums" resolves through its singular form.
		got := Adapt([]RawSpan{{Label: "LOC", Start: 0, End: 8, Text: "Premiums"}})
		if len(got) != 0 {
			t.Errorf("expected plural to be dropped, got %+v", got)
		}
	})

	t.Run("real location accepted", func(t *testing.T) {
		got := Adapt([]RawSpan{{Label: "GPE", Start: 3, End: 9, Text: "Sydney"}})
		if len(got) != 1 || got[0].Type != "LOCATION" {
			t.Fatalf("expected location, got %+v", got)
		}
	})
}

func TestAdaptUnmappedLabel(t *testing.T) {
	got := Adapt([]RawSpan{{Label: "NORP", Start: 0, End: 10, Text: "Australian"}})
	if len(got) != 0 {
		t.Errorf("expected unmapped label to be dropped, got %+v", got)
	}
}

type fakeBackend struct {
	spans []RawSpan
	err   error
	ready bool
}

func (f *fakeBackend) Recognize(ctx context.Context, text string) ([]RawSpan, error) {
	return f.spans, f.err
}

func (f *fakeBackend) IsReady() bool { return f.ready }
func (f *fakeBackend) Close() error  { return nil }

func TestRecognizer(t *testing.T) {
	t.Run("nil backend unavailable", func(t *testing.T) {
		r := NewRecognizer(nil, logger.Nop())
		if r.Available() {
			t.Error("expected recognizer without backend to be unavailable")
		}
		if got := r.Recognize(context.Background(), "some text"); got != nil {
			t.Errorf("expected nil result, got %+v", got)
		}
	})

	t.Run("backend error degrades to empty", func(t *testing.T) {
		r := NewRecognizer(&fakeBackend{ready: true, err: errors.New("inference failed")}, logger.Nop())
		if got := r.Recognize(context.Background(), "some text"); got != nil {
			t.Errorf("expected nil result on backend failure, got %+v", got)
		}
	})

	t.Run("spans adapted", func(t *testing.T) {
		r := NewRecognizer(&fakeBackend{ready: true, spans: []RawSpan{
			{Label: "PERSON", Start: 0, End: 10, Text: "John Smith"},
			{Label: "GPE", Start: 20, End: 27, Text: "Pending"},
		}}, logger.Nop())

		got := r.Recognize(context.Background(), "John Smith status: Pending")
		if len(got) != 1 || got[0].Type != "PERSON" {
			t.Fatalf("expected one person, got %+v", got)
		}
	})
}
