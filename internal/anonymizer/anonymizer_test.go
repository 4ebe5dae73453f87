package anonymizer

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/srepho/allyanonimiser-go/internal/entity"
)

// stubAnalyzer returns a fixed entity list regardless of input.
type stubAnalyzer struct {
	entities []entity.Entity
}

func (s *stubAnalyzer) Analyze(text, language string, scoreAdjustment map[string]float64) []entity.Entity {
	return s.entities
}

func spanOf(t *testing.T, text, sub, entityType string) entity.Entity {
	t.Helper()
	start := strings.Index(text, sub)
	if start == -1 {
		t.Fatalf("%q not in %q", sub, text)
	}
	return entity.Entity{
		Type:   entityType,
		Start:  start,
		End:    start + len(sub),
		Score:  0.9,
		Text:   sub,
		Source: entity.SourcePattern,
	}
}

func TestAnonymizeReplace(t *testing.T) {
	text := "call 0412 345 678 today"
	a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "0412 345 678", "AU_PHONE")}})

	result := a.Anonymize(text, DefaultOptions())
	if result.Text != "call <AU_PHONE> today" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.EntityType != "AU_PHONE" || item.Original != "0412 345 678" || item.Replacement != "<AU_PHONE>" {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestAnonymizeMask(t *testing.T) {
	text := "tfn 123 456 782"
	a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "123 456 782", "AU_TFN")}})

	opts := DefaultOptions()
	opts.Operators = map[string]string{"AU_TFN": OpMask}
	result := a.Anonymize(text, opts)
	if result.Text != "tfn ***********" {
		t.Errorf("unexpected text %q", result.Text)
	}
}

func TestAnonymizeRedact(t *testing.T) {
	text := "email jane@example.com ok"
	a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "jane@example.com", "EMAIL_ADDRESS")}})

	opts := DefaultOptions()
	opts.Operators = map[string]string{"EMAIL_ADDRESS": OpRedact}
	result := a.Anonymize(text, opts)
	if result.Text != "email [REDACTED] ok" {
		t.Errorf("unexpected text %q", result.Text)
	}
}

func TestAnonymizeHash(t *testing.T) {
	text := "email jane@example.com ok"
	a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "jane@example.com", "EMAIL_ADDRESS")}})

	opts := DefaultOptions()
	opts.Operators = map[string]string{"EMAIL_ADDRESS": OpHash}

	first := a.Anonymize(text, opts)
	if len(first.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(first.Items))
	}
	if !regexp.MustCompile(`^HASH-\d{6}$`).MatchString(first.Items[0].Replacement) {
		t.Errorf("unexpected hash form %q", first.Items[0].Replacement)
	}

	again := a.Anonymize(text, opts)
	if again.Items[0].Replacement != first.Items[0].Replacement {
		t.Error("hash replacement not deterministic")
	}
}

func TestAnonymizeAgeBracket(t *testing.T) {
	t.Run("date of birth", func(t *testing.T) {
		text := "DOB: 15/03/1980"
		a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "15/03/1980", "DATE_OF_BIRTH")}})

		opts := DefaultOptions()
		opts.Operators = map[string]string{"DATE_OF_BIRTH": OpAgeBracket}
		result := a.Anonymize(text, opts)

		replacement := result.Items[0].Replacement
		parts := strings.Split(replacement, "-")
		if len(parts) != 2 {
			t.Fatalf("expected a bracket, got %q", replacement)
		}
		lo, _ := strconv.Atoi(parts[0])
		hi, _ := strconv.Atoi(parts[1])
		if lo%5 != 0 || hi != lo+4 {
			t.Errorf("expected a 5-year bracket, got %q", replacement)
		}

		birth := time.Date(1980, time.March, 15, 0, 0, 0, 0, time.UTC)
		age := ageAt(birth, time.Now())
		if lo > age || age > hi {
			t.Errorf("age %d outside bracket %q", age, replacement)
		}
	})

	t.Run("custom bracket size", func(t *testing.T) {
		text := "DOB: 15/03/1980"
		a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "15/03/1980", "DATE_OF_BIRTH")}})

		opts := DefaultOptions()
		opts.Operators = map[string]string{"DATE_OF_BIRTH": OpAgeBracket}
		opts.AgeBracketSize = 10
		result := a.Anonymize(text, opts)

		parts := strings.Split(result.Items[0].Replacement, "-")
		lo, _ := strconv.Atoi(parts[0])
		hi, _ := strconv.Atoi(parts[1])
		if lo%10 != 0 || hi != lo+9 {
			t.Errorf("expected a 10-year bracket, got %q", result.Items[0].Replacement)
		}
	})

	t.Run("unparseable date falls back", func(t *testing.T) {
		text := "DOB: unknown"
		a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "unknown", "DATE_OF_BIRTH")}})

		opts := DefaultOptions()
		opts.Operators = map[string]string{"DATE_OF_BIRTH": OpAgeBracket}
		result := a.Anonymize(text, opts)
		if result.Items[0].Replacement != "<DATE_OF_BIRTH>" {
			t.Errorf("expected placeholder, got %q", result.Items[0].Replacement)
		}
	})

	t.Run("non birth date type", func(t *testing.T) {
		text := "seen 15/03/2023"
		a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "15/03/2023", "DATE")}})

		opts := DefaultOptions()
		opts.Operators = map[string]string{"DATE": OpAgeBracket}
		result := a.Anonymize(text, opts)
		if result.Items[0].Replacement != "<DATE>" {
			t.Errorf("expected placeholder, got %q", result.Items[0].Replacement)
		}
	})
}

func TestAnonymizeCustom(t *testing.T) {
	text := "name John Smith here"
	a := New(&stubAnalyzer{entities: []entity.Entity{spanOf(t, text, "John Smith", "PERSON")}})

	opts := DefaultOptions()
	opts.Operators = map[string]string{"PERSON": OpCustom}
	opts.Custom = map[string]func(string) string{
		"PERSON": func(original string) string { return strings.Repeat("X", len(original)) },
	}
	result := a.Anonymize(text, opts)
	if result.Text != "name XXXXXXXXXX here" {
		t.Errorf("unexpected text %q", result.Text)
	}

	t.Run("missing function falls back", func(t *testing.T) {
		opts.Custom = nil
		result := a.Anonymize(text, opts)
		if result.Text != "name <PERSON> here" {
			t.Errorf("unexpected text %q", result.Text)
		}
	})
}

func TestAnonymizeKeepPostcode(t *testing.T) {
	text := "lives at 100 George St NSW 2000 since May"
	address := spanOf(t, text, "100 George St NSW 2000", "AU_ADDRESS")
	postcode := spanOf(t, text, "2000", "AU_POSTCODE")

	t.Run("postcode preserved inside address", func(t *testing.T) {
		a := New(&stubAnalyzer{entities: []entity.Entity{address, postcode}})
		result := a.Anonymize(text, DefaultOptions())

		if !strings.Contains(result.Text, "2000") {
			t.Errorf("postcode lost from %q", result.Text)
		}
		if !strings.Contains(result.Text, "<AU_ADDRESS>") {
			t.Errorf("address not replaced in %q", result.Text)
		}
		for _, item := range result.Items {
			if item.EntityType == "AU_POSTCODE" {
				t.Errorf("postcode inside address must not be its own item: %+v", item)
			}
		}
	})

	t.Run("disabled", func(t *testing.T) {
		a := New(&stubAnalyzer{entities: []entity.Entity{postcode}})
		opts := DefaultOptions()
		opts.KeepPostcode = false
		result := a.Anonymize(text, opts)
		if strings.Contains(result.Text, "2000") {
			t.Errorf("postcode survived with KeepPostcode off: %q", result.Text)
		}
	})

	t.Run("standalone postcode kept as entity", func(t *testing.T) {
		a := New(&stubAnalyzer{entities: []entity.Entity{postcode}})
		result := a.Anonymize(text, DefaultOptions())
		if len(result.Items) != 1 || result.Items[0].EntityType != "AU_POSTCODE" {
			t.Errorf("standalone postcode should be anonymized: %+v", result.Items)
		}
	})
}

func TestAnonymizeOverlaps(t *testing.T) {
	t.Run("higher priority evicts", func(t *testing.T) {
		// The TFN extends past the number, so it is not contained and evicts it.
		text := "AB 123 456 782 end"
		number := spanOf(t, text, "AB 123 456", "NUMBER")
		tfn := spanOf(t, text, "123 456 782", "AU_TFN")

		a := New(&stubAnalyzer{entities: []entity.Entity{number, tfn}})
		result := a.Anonymize(text, DefaultOptions())
		if len(result.Items) != 1 || result.Items[0].EntityType != "AU_TFN" {
			t.Fatalf("expected only the TFN item, got %+v", result.Items)
		}
	})

	t.Run("contained challenger keeps incumbent", func(t *testing.T) {
		text := "at 100 George St NSW 2000 now"
		address := spanOf(t, text, "100 George St NSW 2000", "AU_ADDRESS")
		person := spanOf(t, text, "George St", "PERSON")

		a := New(&stubAnalyzer{entities: []entity.Entity{address, person}})
		opts := DefaultOptions()
		opts.KeepPostcode = false
		result := a.Anonymize(text, opts)
		if len(result.Items) != 1 || result.Items[0].EntityType != "AU_ADDRESS" {
			t.Fatalf("expected the containing address to win, got %+v", result.Items)
		}
	})

	t.Run("equal priority keeps longer span", func(t *testing.T) {
		text := "on 15/03/2023 10:30 sharp"
		long := spanOf(t, text, "15/03/2023 10:30", "DATE")
		short := spanOf(t, text, "15/03/2023", "DATE")

		a := New(&stubAnalyzer{entities: []entity.Entity{short, long}})
		result := a.Anonymize(text, DefaultOptions())
		if len(result.Items) != 1 || result.Items[0].Original != "15/03/2023 10:30" {
			t.Fatalf("expected the longer date span, got %+v", result.Items)
		}
	})
}

func TestAnonymizeMultipleEntities(t *testing.T) {
	text := "John Smith emailed jane@example.com"
	person := spanOf(t, text, "John Smith", "PERSON")
	email := spanOf(t, text, "jane@example.com", "EMAIL_ADDRESS")

	a := New(&stubAnalyzer{entities: []entity.Entity{person, email}})
	result := a.Anonymize(text, DefaultOptions())

	if result.Text != "<PERSON> emailed <EMAIL_ADDRESS>" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	// Items mirror right-to-left application order.
	if result.Items[0].Start < result.Items[1].Start {
		t.Errorf("items not in descending start order: %+v", result.Items)
	}
}

func TestAnonymizeNilAnalyzer(t *testing.T) {
	a := New(nil)
	result := a.Anonymize("anything at all", DefaultOptions())
	if result.Text != "anything at all" {
		t.Errorf("expected unchanged text, got %q", result.Text)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("expected empty items, got %+v", result.Items)
	}
}

func TestExtractAge(t *testing.T) {
	t.Run("age phrase", func(t *testing.T) {
		age, ok := extractAge("Age: 45")
		if !ok || age != 45 {
			t.Errorf("extractAge = (%d, %v), want (45, true)", age, ok)
		}
	})

	t.Run("invalid calendar date rejected", func(t *testing.T) {
		if _, ok := extractAge("32/13/1980"); ok {
			t.Error("expected rollover date to be rejected")
		}
	})

	t.Run("two digit year pivot", func(t *testing.T) {
		age80, ok := extractAge("15/03/80")
		if !ok {
			t.Fatal("expected 15/03/80 to parse")
		}
		age1980, _ := extractAge("15/03/1980")
		if age80 != age1980 {
			t.Errorf("pivot year mismatch: %d vs %d", age80, age1980)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, ok := extractAge("no date here"); ok {
			t.Error("expected no age")
		}
	})
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(1980, time.March, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC), 42},
		{time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), 43},
		{time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), 43},
	}
	for _, tt := range tests {
		if got := ageAt(birth, tt.now); got != tt.want {
			t.Errorf("ageAt(%s) = %d, want %d", tt.now.Format("2006-01-02"), got, tt.want)
		}
	}
}
