// Package anonymizer rewrites text by replacing detected entities according
// to per-type operators.
package anonymizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/srepho/allyanonimiser-go/internal/entity"
)

// Supported operators.
const (
	OpReplace    = "replace"
	OpMask       = "mask"
	OpRedact     = "redact"
	OpHash       = "hash"
	OpAgeBracket = "age_bracket"
	OpCustom     = "custom"
)

const defaultAgeBracketSize = 5

// Analyzer supplies the entities to anonymize. The engine satisfies this.
type Analyzer interface {
	Analyze(text, language string, scoreAdjustment map[string]float64) []entity.Entity
}

// Item records one applied replacement.
type Item struct {
	EntityType  string `json:"entity_type"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Result is the outcome of one anonymization run. Items are ordered by start
// offset descending, matching the order replacements were applied.
type Result struct {
	Text  string `json:"text"`
	Items []Item `json:"items"`
}

// Options controls one anonymization run.
type Options struct {
	// Operators maps entity type to operator name. Types without an entry
	// use "replace".
	Operators map[string]string
	// Custom maps entity type to a replacement function, used when the
	// type's operator is "custom".
	Custom map[string]func(original string) string
	// Language is passed through to the analyzer.
	Language string
	// AgeBracketSize is the width of age brackets for "age_bracket".
	// Non-positive values fall back to 5.
	AgeBracketSize int
	// KeepPostcode preserves postcodes when anonymizing addresses.
	KeepPostcode bool
}

// DefaultOptions returns the standard settings: replace everything, English,
// 5-year age brackets, postcodes preserved.
func DefaultOptions() Options {
	return Options{
		Language:       "en",
		AgeBracketSize: defaultAgeBracketSize,
		KeepPostcode:   true,
	}
}

// Anonymizer applies operators to the entities an analyzer detects.
type Anonymizer struct {
	analyzer Analyzer
}

// New creates an anonymizer. A nil analyzer is allowed; anonymization then
// returns the input unchanged.
func New(analyzer Analyzer) *Anonymizer {
	return &Anonymizer{analyzer: analyzer}
}

// Anonymize detects entities in text and rewrites each according to its
// operator. Replacements are applied right to left so earlier offsets stay
// valid.
func (a *Anonymizer) Anonymize(text string, opts Options) Result {
	if opts.AgeBracketSize <= 0 {
		opts.AgeBracketSize = defaultAgeBracketSize
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if a.analyzer == nil {
		return Result{Text: text, Items: []Item{}}
	}

	results := a.analyzer.Analyze(text, opts.Language, nil)

	// Collect postcode and address spans first so postcodes inside addresses
	// can be preserved.
	var postcodes []entity.Entity
	var addresses []entity.Entity
	if opts.KeepPostcode {
		for _, r := range results {
			switch r.Type {
			case "AU_POSTCODE":
				postcodes = append(postcodes, r)
			case "AU_ADDRESS":
				addresses = append(addresses, r)
			}
		}
	}

	var pending []Item
	for _, r := range results {
		original := text[r.Start:r.End]

		// A postcode inside an address is handled as part of the address.
		if opts.KeepPostcode && r.Type == "AU_POSTCODE" && containedInAny(r, addresses) {
			continue
		}

		replacement := a.replacementFor(r.Type, original, opts)

		if opts.KeepPostcode && r.Type == "AU_ADDRESS" {
			replacement = spliceBackPostcodes(replacement, r, postcodes)
		}

		pending = append(pending, Item{
			EntityType:  r.Type,
			Start:       r.Start,
			End:         r.End,
			Original:    original,
			Replacement: replacement,
		})
	}

	pending = removeOverlapping(pending)

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Start > pending[j].Start
	})

	anonymized := text
	items := make([]Item, 0, len(pending))
	for _, item := range pending {
		anonymized = anonymized[:item.Start] + item.Replacement + anonymized[item.End:]
		items = append(items, item)
	}

	return Result{Text: anonymized, Items: items}
}

func (a *Anonymizer) replacementFor(entityType, original string, opts Options) string {
	operator := opts.Operators[entityType]
	if operator == "" {
		operator = OpReplace
	}

	switch operator {
	case OpMask:
		return strings.Repeat("*", len(original))
	case OpRedact:
		return "[REDACTED]"
	case OpHash:
		return fmt.Sprintf("HASH-%06d", xxhash.Sum64String(original)%1000000)
	case OpAgeBracket:
		if entityType == "DATE_OF_BIRTH" {
			if age, ok := extractAge(original); ok {
				bracketStart := (age / opts.AgeBracketSize) * opts.AgeBracketSize
				bracketEnd := bracketStart + opts.AgeBracketSize - 1
				return fmt.Sprintf("%d-%d", bracketStart, bracketEnd)
			}
		}
		return "<" + entityType + ">"
	case OpCustom:
		if fn := opts.Custom[entityType]; fn != nil {
			return fn(original)
		}
		return "<" + entityType + ">"
	default:
		return "<" + entityType + ">"
	}
}

func containedInAny(e entity.Entity, containers []entity.Entity) bool {
	for _, c := range containers {
		if c.Start <= e.Start && e.End <= c.End {
			return true
		}
	}
	return false
}

// spliceBackPostcodes re-inserts postcodes found inside an anonymized address
// at their relative offsets, processed right to left.
func spliceBackPostcodes(replacement string, address entity.Entity, postcodes []entity.Entity) string {
	var inside []entity.Entity
	for _, pc := range postcodes {
		if address.Start <= pc.Start && pc.End <= address.End {
			inside = append(inside, pc)
		}
	}
	if len(inside) == 0 {
		return replacement
	}

	sort.SliceStable(inside, func(i, j int) bool {
		return inside[i].Start > inside[j].Start
	})

	modified := replacement
	for _, pc := range inside {
		relStart := pc.Start - address.Start
		relEnd := pc.End - address.Start
		if relStart > len(modified) {
			relStart = len(modified)
		}
		if relEnd > len(modified) {
			relEnd = len(modified)
		}
		modified = modified[:relStart] + " " + pc.Text + " " + modified[relEnd:]
	}
	return modified
}

// typePriority ranks entity types for overlap resolution. Specific
// identifiers outrank broad spans.
var typePriority = map[string]int{
	"AU_MEDICARE":             100,
	"AU_TFN":                  100,
	"AU_ABN":                  100,
	"AU_ACN":                  100,
	"INSURANCE_POLICY_NUMBER": 95,
	"INSURANCE_CLAIM_NUMBER":  95,
	"EMAIL_ADDRESS":           90,
	"AU_PHONE":                85,
	"CREDIT_CARD":             85,
	"AU_DRIVERS_LICENSE":      80,
	"AU_PASSPORT":             80,
	"AU_CENTRELINK_CRN":       80,
	"PERSON":                  70,
	"AU_ADDRESS":              60,
	"ADDRESS":                 60,
	"LOCATION":                50,
	"DATE":                    40,
	"AU_POSTCODE":             30,
	"NUMBER":                  20,
	"VEHICLE_REGISTRATION":    15,
	"FACILITY":                10,
	"PRODUCT":                 10,
	"INCIDENT_DATE":           10,
}

// removeOverlapping drops lower-priority items that overlap a selected item.
// A higher-priority challenger evicts the incumbent unless the challenger
// lies fully inside it; equal priorities keep the longer span.
func removeOverlapping(items []Item) []Item {
	if len(items) == 0 {
		return items
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return (sorted[i].End - sorted[i].Start) > (sorted[j].End - sorted[j].Start)
	})

	var result []Item
	for _, item := range sorted {
		overlaps := false
		for i, selected := range result {
			if item.Start < selected.End && item.End > selected.Start {
				itemPriority := typePriority[item.EntityType]
				selectedPriority := typePriority[selected.EntityType]

				if itemPriority > selectedPriority &&
					!(item.Start >= selected.Start && item.End <= selected.End) {
					result = append(result[:i], result[i+1:]...)
					result = append(result, item)
				} else if itemPriority == selectedPriority &&
					(item.End-item.Start) > (selected.End-selected.Start) {
					result = append(result[:i], result[i+1:]...)
					result = append(result, item)
				}

				overlaps = true
				break
			}
		}
		if !overlaps {
			result = append(result, item)
		}
	}

	return result
}

var (
	dmyRe   = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})`)
	ymdRe   = regexp.MustCompile(`(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})`)
	shortRe = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2})`)
	ageRe   = regexp.MustCompile(`Age:\s*(\d+)`)
)

// extractAge parses a date of birth and returns the age in whole years.
// Supported layouts: DD/MM/YYYY, YYYY/MM/DD, and DD/MM/YY with a 1930-2029
// pivot. Falls back to an explicit "Age: N" phrase.
func extractAge(dateString string) (int, bool) {
	type parsed struct{ year, month, day int }
	var candidates []parsed

	if m := dmyRe.FindStringSubmatch(dateString); m != nil {
		candidates = append(candidates, parsed{atoi(m[3]), atoi(m[2]), atoi(m[1])})
	}
	if m := ymdRe.FindStringSubmatch(dateString); m != nil {
		candidates = append(candidates, parsed{atoi(m[1]), atoi(m[2]), atoi(m[3])})
	}
	if m := shortRe.FindStringSubmatch(dateString); m != nil {
		year := atoi(m[3])
		if year < 30 {
			year += 2000
		} else {
			year += 1900
		}
		candidates = append(candidates, parsed{year, atoi(m[2]), atoi(m[1])})
	}

	for _, c := range candidates {
		birth := time.Date(c.year, time.Month(c.month), c.day, 0, 0, 0, 0, time.UTC)
		// Reject normalized rollovers like month 13 or day 32.
		if birth.Year() != c.year || int(birth.Month()) != c.month || birth.Day() != c.day {
			continue
		}
		return ageAt(birth, time.Now()), true
	}

	if m := ageRe.FindStringSubmatch(dateString); m != nil {
		return atoi(m[1]), true
	}
	return 0, false
}

func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
