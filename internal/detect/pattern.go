package detect

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/logger"
	"github.com/srepho/allyanonimiser-go/internal/patterns"
)

// nonPIILabels are field labels that pattern matches must never report as
// entities.
var nonPIILabels = map[string]bool{
	"ref number":       true,
	"reference number": true,
	"policy number":    true,
	"claim number":     true,
}

// PatternDetector runs registered pattern definitions against text. Patterns
// that fail to compile are logged once and skipped; a bad pattern never aborts
// an analysis.
type PatternDetector struct {
	registry *patterns.Registry
	log      *logger.Logger

	compiled map[string]*regexp.Regexp
	broken   map[string]bool
}

// NewPatternDetector creates a detector over the given registry.
func NewPatternDetector(registry *patterns.Registry, log *logger.Logger) *PatternDetector {
	if log == nil {
		log = logger.Nop()
	}
	return &PatternDetector{
		registry: registry,
		log:      log.WithComponent("pattern-detector"),
		compiled: make(map[string]*regexp.Regexp),
		broken:   make(map[string]bool),
	}
}

// Detect returns one candidate per pattern match. When a pattern has a
// capturing group the first group defines the span, otherwise the whole match
// does. skipPerson suppresses PERSON pattern definitions; the engine sets it
// when an NER backend is available, which produces better person spans than
// capitalized-word patterns.
func (d *PatternDetector) Detect(text string, skipPerson bool) []entity.Entity {
	var results []entity.Entity

	for _, def := range d.registry.All() {
		if def.EntityType == "PERSON" && skipPerson {
			continue
		}
		for _, p := range def.Patterns {
			re := d.compile(p)
			if re == nil {
				continue
			}
			for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
				start, end := idx[0], idx[1]
				if len(idx) > 2 && idx[2] >= 0 {
					start, end = idx[2], idx[3]
				}
				matched := text[start:end]
				if skipMatch(def.EntityType, matched) {
					continue
				}
				results = append(results, entity.Entity{
					Type:   def.EntityType,
					Start:  start,
					End:    end,
					Score:  def.Score,
					Text:   matched,
					Source: entity.SourcePattern,
				})
			}
		}
	}

	return results
}

// skipMatch filters label text and PERSON matches that are clearly
// identifiers rather than names.
func skipMatch(entityType, matched string) bool {
	lc := strings.ToLower(matched)
	if nonPIILabels[lc] {
		return true
	}
	if entityType == "PERSON" {
		if strings.Contains(lc, "number") ||
			strings.HasPrefix(lc, "ref") ||
			strings.HasPrefix(lc, "policy") ||
			strings.HasPrefix(lc, "claim") {
			return true
		}
	}
	return false
}

func (d *PatternDetector) compile(p patterns.Pattern) *regexp.Regexp {
	key := cacheKey(p)
	if re, ok := d.compiled[key]; ok {
		return re
	}
	if d.broken[key] {
		return nil
	}
	re, err := p.Compile()
	if err != nil {
		d.broken[key] = true
		d.log.Warn("skipping pattern that failed to compile",
			zap.String("pattern", key),
			zap.Error(err))
		return nil
	}
	d.compiled[key] = re
	return re
}

func cacheKey(p patterns.Pattern) string {
	switch p.Kind {
	case patterns.KindRegex:
		return "re:" + p.Regex
	case patterns.KindPhrase:
		return "ph:" + p.Phrase
	default:
		var sb strings.Builder
		sb.WriteString("tok:")
		for _, t := range p.Tokens {
			if v, ok := t["LOWER"].(string); ok {
				sb.WriteString(v)
			} else if v, ok := t["TEXT"].(string); ok {
				sb.WriteString(v)
			}
			sb.WriteByte(' ')
		}
		return sb.String()
	}
}
