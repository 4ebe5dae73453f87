package resolve

import (
	"testing"

	"github.com/srepho/allyanonimiser-go/internal/entity"
)

func span(entityType string, start, end int, score float64, text string, source entity.Source) entity.Entity {
	return entity.Entity{Type: entityType, Start: start, End: end, Score: score, Text: text, Source: source}
}

func TestResolveSingletons(t *testing.T) {
	t.Run("valid date survives", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("DATE", 0, 10, 0.85, "15/03/2023", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "DATE" {
			t.Fatalf("expected the date to survive, got %+v", got)
		}
	})

	t.Run("state postcode dropped as date", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("DATE", 0, 8, 0.85, "NSW 2000", entity.SourcePattern),
		})
		if len(got) != 0 {
			t.Fatalf("expected state postcode to be dropped, got %+v", got)
		}
	})

	t.Run("postcode lookalike survives as date singleton", func(t *testing.T) {
		// Bare four-digit postcodes are not in the singleton drop list; the
		// contextual filter handles them instead.
		got := Resolve([]entity.Entity{
			span("DATE", 0, 4, 0.85, "4000", entity.SourcePattern),
		})
		if len(got) != 1 {
			t.Fatalf("expected the singleton to survive, got %+v", got)
		}
	})

	t.Run("invalid phone dropped", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("AU_PHONE", 0, 4, 0.92, "9876", entity.SourceFormat),
		})
		if len(got) != 0 {
			t.Fatalf("expected partial phone to be dropped, got %+v", got)
		}
	})

	t.Run("invalid tfn checksum dropped", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("AU_TFN", 0, 11, 0.93, "123 456 789", entity.SourceFormat),
		})
		if len(got) != 0 {
			t.Fatalf("expected invalid TFN to be dropped, got %+v", got)
		}
	})

	t.Run("valid medicare survives", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("AU_MEDICARE", 0, 12, 0.93, "2123 45678 1", entity.SourceFormat),
		})
		if len(got) != 1 {
			t.Fatalf("expected valid Medicare to survive, got %+v", got)
		}
	})
}

func TestResolveConflicts(t *testing.T) {
	t.Run("label suffix drops entire group", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("PERSON", 0, 13, 0.85, "Policy Number", entity.SourcePattern),
			span("ORGANIZATION", 0, 13, 0.9, "Policy Number", entity.SourceNER),
		})
		if len(got) != 0 {
			t.Fatalf("expected label group to be dropped, got %+v", got)
		}
	})

	t.Run("person false positive yields to other claim", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("PERSON", 0, 10, 0.95, "POL-123456", entity.SourceNER),
			span("INSURANCE_POLICY_NUMBER", 0, 10, 0.85, "POL-123456", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "INSURANCE_POLICY_NUMBER" {
			t.Fatalf("expected policy number to win, got %+v", got)
		}
	})

	t.Run("confident person wins", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("PERSON", 0, 10, 0.9, "John Smith", entity.SourceNER),
			span("LOCATION", 0, 10, 0.9, "John Smith", entity.SourceNER),
		})
		if len(got) != 1 || got[0].Type != "PERSON" {
			t.Fatalf("expected person to win, got %+v", got)
		}
	})

	t.Run("service number beats date", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("DATE", 0, 12, 0.85, "1300 123 456", entity.SourcePattern),
			span("AU_PHONE", 0, 12, 0.85, "1300 123 456", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "AU_PHONE" {
			t.Fatalf("expected phone to win, got %+v", got)
		}
	})

	t.Run("very high score wins", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("NUMBER", 0, 9, 0.85, "123456789", entity.SourcePattern),
			span("AU_DRIVERS_LICENSE", 0, 9, 0.96, "123456789", entity.SourceFormat),
		})
		if len(got) != 1 || got[0].Type != "AU_DRIVERS_LICENSE" {
			t.Fatalf("expected high score to win, got %+v", got)
		}
	})

	t.Run("document specific type beats generic", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("NUMBER", 0, 8, 0.85, "CX445566", entity.SourcePattern),
			span("INSURANCE_CLAIM_NUMBER", 0, 8, 0.85, "CX445566", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "INSURANCE_CLAIM_NUMBER" {
			t.Fatalf("expected claim number to win, got %+v", got)
		}
	})

	t.Run("prefix picks entity type", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("NUMBER", 0, 9, 0.85, "INV-00042", entity.SourcePattern),
			span("INVOICE_NUMBER", 0, 9, 0.85, "INV-00042", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "INVOICE_NUMBER" {
			t.Fatalf("expected invoice number to win, got %+v", got)
		}
	})

	t.Run("date priority ladder", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("DATE", 0, 10, 0.85, "15/03/1980", entity.SourcePattern),
			span("DATE_OF_BIRTH", 0, 10, 0.85, "15/03/1980", entity.SourcePattern),
		})
		if len(got) != 1 || got[0].Type != "DATE_OF_BIRTH" {
			t.Fatalf("expected date of birth to win, got %+v", got)
		}
	})

	t.Run("fallback prefers format source", func(t *testing.T) {
		got := Resolve([]entity.Entity{
			span("FOO", 0, 3, 0.85, "abc", entity.SourcePattern),
			span("BAR", 0, 3, 0.85, "abc", entity.SourceFormat),
		})
		if len(got) != 1 || got[0].Type != "BAR" {
			t.Fatalf("expected format-source candidate to win, got %+v", got)
		}
	})
}

func TestResolveOrdering(t *testing.T) {
	input := []entity.Entity{
		span("EMAIL_ADDRESS", 40, 60, 0.95, "jane.doe@example.com", entity.SourceFormat),
		span("PERSON", 0, 10, 0.9, "Jane Doe", entity.SourceNER),
		span("AU_PHONE", 20, 32, 0.92, "0412 345 678", entity.SourceFormat),
	}

	got := Resolve(input)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Start > got[i].Start {
			t.Errorf("results not sorted by start offset: %+v", got)
		}
	}

	t.Run("deterministic", func(t *testing.T) {
		first := Resolve(input)
		for i := 0; i < 20; i++ {
			again := Resolve(input)
			if len(again) != len(first) {
				t.Fatal("result count changed between runs")
			}
			for j := range again {
				if again[j] != first[j] {
					t.Fatalf("results differ between runs: %+v vs %+v", again[j], first[j])
				}
			}
		}
	})
}
