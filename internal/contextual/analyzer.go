// Package contextual scores the text surrounding a detected entity. Context
// that matches the expected shape for the entity type earns a confidence
// boost; context that matches a known false-positive shape vetoes the entity.
package contextual

import (
	"regexp"
	"strings"
)

// Boost values applied by Analyze.
const (
	patternBoost = 0.2
	keywordBoost = 0.1
)

// Window sizes in characters.
const (
	analyzeWindow       = 50
	falsePositiveWindow = 30
)

type contextPatterns struct {
	before []*regexp.Regexp
	after  []*regexp.Regexp
	within []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

var entityContextPatterns = map[string]contextPatterns{
	"AU_MEDICARE": {
		before: compileAll(`medicare\s*(?:number|#|:)?\s*$`, `health\s+card\s*(?:number|#|:)?\s*$`),
		after:  compileAll(`^\s*(?:for|is|was)`),
	},
	"AU_TFN": {
		before: compileAll(`(?:tfn|tax\s+file\s+number)\s*(?:#|:)?\s*$`),
	},
	"AU_ABN": {
		before: compileAll(`(?:abn|australian\s+business\s+number)\s*(?:#|:)?\s*$`),
	},
	"AU_PHONE": {
		before: compileAll(`(?:phone|ph|tel|telephone|mobile|mob|contact)\s*(?:number|#|:)?\s*$`),
	},
	"INSURANCE_POLICY_NUMBER": {
		before: compileAll(`policy\s*(?:number|#|:)?\s*$`),
	},
	"INSURANCE_CLAIM_NUMBER": {
		before: compileAll(`claim\s*(?:number|#|:)?\s*$`),
	},
	"DATE_OF_BIRTH": {
		before: compileAll(`(?:dob|date\s+of\s+birth|birth\s+date)\s*(?:#|:)?\s*$`),
	},
	"AU_POSTCODE": {
		before: compileAll(`(?:postcode|post\s+code|zip)\s*(?:#|:)?\s*$`),
		within: compileAll(`\b(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\s+\d{4}\b`),
	},
	"EMAIL_ADDRESS": {
		before: compileAll(`(?:email|e-mail)\s*(?:address)?\s*(?:#|:)?\s*$`),
	},
}

// suggestionOrder fixes the tie-break order for SuggestType: when two types
// score equally the earlier one wins.
var suggestionOrder = []string{
	"AU_MEDICARE",
	"AU_TFN",
	"AU_ABN",
	"AU_PHONE",
	"INSURANCE_POLICY_NUMBER",
	"INSURANCE_CLAIM_NUMBER",
	"DATE_OF_BIRTH",
	"AU_POSTCODE",
	"EMAIL_ADDRESS",
}

var entityContextKeywords = map[string][]string{
	"AU_MEDICARE":             {"medicare", "health card", "medical"},
	"AU_TFN":                  {"tfn", "tax file", "tax number"},
	"AU_ABN":                  {"abn", "business number", "australian business"},
	"AU_ACN":                  {"acn", "company number", "australian company"},
	"AU_PHONE":                {"phone", "mobile", "contact", "call", "tel", "ph"},
	"AU_DRIVERS_LICENSE":      {"license", "licence", "driver", "driving"},
	"AU_POSTCODE":             {"postcode", "postal", "zip"},
	"VEHICLE_REGISTRATION":    {"rego", "registration", "vehicle", "car"},
	"DATE_OF_BIRTH":           {"dob", "birth", "born"},
	"INSURANCE_POLICY_NUMBER": {"policy", "insurance"},
	"INSURANCE_CLAIM_NUMBER":  {"claim", "case"},
	"EMAIL_ADDRESS":           {"email", "mail"},
	"AU_BSB_ACCOUNT":          {"bsb", "account", "bank"},
}

var falsePositiveContext = map[string][]*regexp.Regexp{
	"DATE": compileAll(
		`(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\s*$`,
		`(?:phone|mobile|contact|ph|tel)[\s:]*$`,
		`medicare[\s:]*$`,
	),
	"NUMBER": compileAll(
		`#\s*$`,
		`(?:quarter|half|third)\s+panel`,
	),
	"PERSON": compileAll(
		`(?:lives?\s+(?:at|on)|address)[\s:]*\d+\s*$`,
		`(?:policy|claim)[\s#:]*$`,
	),
}

// Analysis is the outcome of scoring one entity's surroundings.
type Analysis struct {
	EntityText      string
	ContextBefore   string
	ContextAfter    string
	PatternMatch    bool
	KeywordFound    bool
	ConfidenceBoost float64
	SuggestedType   string
}

// Window returns the lowercased, trimmed context before and after the span.
func Window(text string, start, end, windowSize int) (before, after string) {
	contextStart := start - windowSize
	if contextStart < 0 {
		contextStart = 0
	}
	before = strings.TrimSpace(strings.ToLower(text[contextStart:start]))

	contextEnd := end + windowSize
	if contextEnd > len(text) {
		contextEnd = len(text)
	}
	after = strings.TrimSpace(strings.ToLower(text[end:contextEnd]))
	return before, after
}

// Analyze scores the context of the span [start,end) as an entityType
// occurrence. A pattern match adds 0.2 and a keyword match adds 0.1 to the
// confidence boost.
func Analyze(text, entityType string, start, end int) Analysis {
	entityText := text[start:end]
	before, after := Window(text, start, end, analyzeWindow)

	patternMatch := false
	if patterns, ok := entityContextPatterns[entityType]; ok {
		patternMatch = matchAny(patterns.before, before) || matchAny(patterns.after, after)
		if !patternMatch && len(patterns.within) > 0 {
			full := before + " " + entityText + " " + after
			patternMatch = matchAny(patterns.within, full)
		}
	}

	keywordFound := false
	if keywords, ok := entityContextKeywords[entityType]; ok {
		for _, kw := range keywords {
			if strings.Contains(before, kw) || strings.Contains(after, kw) {
				keywordFound = true
				break
			}
		}
	}

	boost := 0.0
	if patternMatch {
		boost += patternBoost
	}
	if keywordFound {
		boost += keywordBoost
	}

	return Analysis{
		EntityText:      entityText,
		ContextBefore:   before,
		ContextAfter:    after,
		PatternMatch:    patternMatch,
		KeywordFound:    keywordFound,
		ConfidenceBoost: boost,
		SuggestedType:   SuggestType(entityText, before, after),
	}
}

// SuggestType scores every known entity type against the context and returns
// the best match, or empty when nothing scores. A before-pattern match counts
// 2 points and each keyword occurrence counts 1.
func SuggestType(entityText, before, after string) string {
	fullContext := before + " " + after

	best := ""
	bestScore := 0
	for _, entityType := range suggestionOrder {
		patterns := entityContextPatterns[entityType]
		score := 0
		if matchAny(patterns.before, before) {
			score += 2
		}
		for _, kw := range entityContextKeywords[entityType] {
			if strings.Contains(fullContext, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = entityType
		}
	}
	return best
}

// IsLikelyFalsePositive reports whether the span is almost certainly not an
// entityType occurrence given its immediate context.
func IsLikelyFalsePositive(text, entityType string, start, end int) bool {
	entityText := text[start:end]
	before, _ := Window(text, start, end, falsePositiveWindow)

	if patterns, ok := falsePositiveContext[entityType]; ok {
		if matchAny(patterns, before) {
			return true
		}
	}

	if entityType == "DATE" {
		switch entityText {
		case "NSW 2000", "VIC 3000", "QLD 4000":
			return true
		}
	}
	if entityType == "NUMBER" && entityText == "#" {
		return true
	}
	return false
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
