package patterns

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	t.Run("rejects missing entity type", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Definition{Patterns: []Pattern{NewRegex(`\d+`)}})
		if err == nil {
			t.Error("expected error for missing entity_type")
		}
	})

	t.Run("rejects empty pattern list", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Definition{EntityType: "TEST_ID"})
		if err == nil {
			t.Error("expected error for empty pattern list")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(Definition{
			EntityType: "TEST_ID",
			Patterns:   []Pattern{NewRegex(`\d+`)},
		}); err != nil {
			t.Fatalf("register failed: %v", err)
		}
		defs := r.Get("TEST_ID")
		if len(defs) != 1 {
			t.Fatalf("expected 1 definition, got %d", len(defs))
		}
		if defs[0].Score != DefaultScore {
			t.Errorf("expected default score %v, got %v", DefaultScore, defs[0].Score)
		}
		if defs[0].Language != DefaultLanguage {
			t.Errorf("expected default language %q, got %q", DefaultLanguage, defs[0].Language)
		}
	})

	t.Run("appends to same entity type", func(t *testing.T) {
		r := NewRegistry()
		for _, expr := range []string{`\d+`, `[A-Z]+`} {
			if err := r.Register(Definition{
				EntityType: "TEST_ID",
				Patterns:   []Pattern{NewRegex(expr)},
			}); err != nil {
				t.Fatalf("register failed: %v", err)
			}
		}
		if got := len(r.Get("TEST_ID")); got != 2 {
			t.Errorf("expected 2 definitions, got %d", got)
		}
		if got := len(r.EntityTypes()); got != 1 {
			t.Errorf("expected 1 entity type, got %d", got)
		}
	})
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterAll(BuiltinDefinitions()); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	n := r.Len()
	if n == 0 {
		t.Fatal("expected builtin definitions")
	}
	if got := r.Clear(); got != n {
		t.Errorf("Clear returned %d, expected %d", got, n)
	}
	if r.Len() != 0 {
		t.Error("registry not empty after Clear")
	}
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")

	r := NewRegistry()
	if err := r.Register(Definition{
		EntityType:  "CUSTOMER_REF",
		Patterns:    []Pattern{NewRegex(`\bREF-\d{6}\b`), NewPhrase("customer reference")},
		Context:     []string{"reference", "customer"},
		Name:        "Customer Reference",
		Score:       0.9,
		Description: "Internal customer reference",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(Definition{
		EntityType: "TOKEN_SEQ",
		Patterns: []Pattern{NewTokens([]TokenSpec{
			{"LOWER": "policy"},
			{"LOWER": "holder"},
		})},
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := NewRegistry()
	n, err := loaded.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 loaded definitions, got %d", n)
	}

	defs := loaded.Get("CUSTOMER_REF")
	if len(defs) != 1 {
		t.Fatalf("expected 1 CUSTOMER_REF definition, got %d", len(defs))
	}
	def := defs[0]
	if def.Score != 0.9 || def.Name != "Customer Reference" {
		t.Errorf("definition fields not preserved: %+v", def)
	}
	if len(def.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(def.Patterns))
	}
	if def.Patterns[0].Kind != KindRegex || def.Patterns[0].Regex != `\bREF-\d{6}\b` {
		t.Errorf("regex pattern not preserved: %+v", def.Patterns[0])
	}
	if def.Patterns[1].Kind != KindPhrase || def.Patterns[1].Phrase != "customer reference" {
		t.Errorf("phrase pattern not preserved: %+v", def.Patterns[1])
	}

	tok := loaded.Get("TOKEN_SEQ")
	if len(tok) != 1 || tok[0].Patterns[0].Kind != KindTokens {
		t.Fatalf("token pattern not preserved: %+v", tok)
	}
	if got := tok[0].Patterns[0].Tokens[0]["LOWER"]; got != "policy" {
		t.Errorf("token attribute not preserved: %v", got)
	}
}

func TestRegistryLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		r := NewRegistry()
		if _, err := r.Load(path); err == nil {
			t.Error("expected error for malformed json")
		}
	})
}

func TestBuiltinDefinitionsCompile(t *testing.T) {
	for _, def := range BuiltinDefinitions() {
		for i, p := range def.Patterns {
			if _, err := p.Compile(); err != nil {
				t.Errorf("%s pattern %d does not compile: %v", def.EntityType, i, err)
			}
		}
	}
}

func TestPatternCompile(t *testing.T) {
	t.Run("phrase matches case-insensitively", func(t *testing.T) {
		re, err := NewPhrase("policy holder").Compile()
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if !re.MatchString("the Policy Holder signed") {
			t.Error("expected phrase match")
		}
		if re.MatchString("policyholder") {
			t.Error("phrase should respect word boundaries")
		}
	})

	t.Run("token sequence matches across whitespace", func(t *testing.T) {
		re, err := NewTokens([]TokenSpec{{"LOWER": "tax"}, {"LOWER": "file"}}).Compile()
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if !re.MatchString("Tax  File Number") {
			t.Error("expected token sequence match")
		}
	})

	t.Run("unsupported token attributes error", func(t *testing.T) {
		if _, err := NewTokens([]TokenSpec{{"IS_DIGIT": true}}).Compile(); err == nil {
			t.Error("expected error for unsupported token attribute")
		}
	})
}
