package patterns

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates the pattern variants a Definition may carry.
type Kind int

const (
	// KindRegex is a raw regular expression applied to the text.
	KindRegex Kind = iota
	// KindPhrase is a literal phrase matched case-insensitively on word
	// boundaries.
	KindPhrase
	// KindTokens is a structured token sequence (spaCy-style attribute maps).
	KindTokens
)

// TokenSpec is one token constraint in a structured token pattern. Keys follow
// the upstream attribute vocabulary (LOWER, TEXT, IS_DIGIT, ...).
type TokenSpec map[string]interface{}

// Pattern is a tagged union over the supported pattern representations.
// Exactly one of Regex, Phrase, or Tokens is meaningful for a given Kind.
type Pattern struct {
	Kind   Kind
	Regex  string
	Phrase string
	Tokens []TokenSpec
}

// NewRegex wraps a regular expression string.
func NewRegex(expr string) Pattern {
	return Pattern{Kind: KindRegex, Regex: expr}
}

// NewPhrase wraps a literal phrase.
func NewPhrase(phrase string) Pattern {
	return Pattern{Kind: KindPhrase, Phrase: phrase}
}

// NewTokens wraps a structured token sequence.
func NewTokens(tokens []TokenSpec) Pattern {
	return Pattern{Kind: KindTokens, Tokens: tokens}
}

// Compile lowers the pattern to a regular expression. Phrase patterns become
// word-bounded case-insensitive literals. Token sequences compile only when
// every token constrains LOWER or TEXT; anything richer needs a linguistic
// pipeline and reports an error so the caller can skip it.
func (p Pattern) Compile() (*regexp.Regexp, error) {
	switch p.Kind {
	case KindRegex:
		return regexp.Compile(p.Regex)
	case KindPhrase:
		return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p.Phrase) + `\b`)
	case KindTokens:
		words := make([]string, 0, len(p.Tokens))
		for _, tok := range p.Tokens {
			if v, ok := tok["LOWER"].(string); ok {
				words = append(words, regexp.QuoteMeta(v))
				continue
			}
			if v, ok := tok["TEXT"].(string); ok {
				words = append(words, regexp.QuoteMeta(v))
				continue
			}
			return nil, fmt.Errorf("token pattern requires LOWER or TEXT attributes")
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("empty token pattern")
		}
		return regexp.Compile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
	default:
		return nil, fmt.Errorf("unknown pattern kind %d", p.Kind)
	}
}

// MarshalJSON keeps the persisted form compatible with the registry file
// format: regexes are plain strings, phrases are {"phrase": ...} objects, and
// token sequences are arrays of attribute maps.
func (p Pattern) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case KindRegex:
		return json.Marshal(p.Regex)
	case KindPhrase:
		return json.Marshal(map[string]string{"phrase": p.Phrase})
	case KindTokens:
		return json.Marshal(p.Tokens)
	default:
		return nil, fmt.Errorf("unknown pattern kind %d", p.Kind)
	}
}

// UnmarshalJSON mirrors MarshalJSON.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, `"`):
		var expr string
		if err := json.Unmarshal(data, &expr); err != nil {
			return err
		}
		*p = NewRegex(expr)
		return nil
	case strings.HasPrefix(trimmed, "["):
		var tokens []TokenSpec
		if err := json.Unmarshal(data, &tokens); err != nil {
			return err
		}
		*p = NewTokens(tokens)
		return nil
	case strings.HasPrefix(trimmed, "{"):
		var obj map[string]string
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		phrase, ok := obj["phrase"]
		if !ok {
			return fmt.Errorf("pattern object missing phrase field")
		}
		*p = NewPhrase(phrase)
		return nil
	default:
		return fmt.Errorf("unsupported pattern encoding: %s", trimmed)
	}
}
