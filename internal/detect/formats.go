package detect

import (
	"regexp"

	"github.com/srepho/allyanonimiser-go/internal/entity"
)

// Built-in format detector scores. Structured formats earn higher confidence
// than generic registered patterns.
const (
	emailScore = 0.95
	phoneScore = 0.92
	idScore    = 0.90
	auScore    = 0.93
)

type formatRule struct {
	entityType string
	re         *regexp.Regexp
	score      float64
	useGroup   bool
}

var formatRules = buildFormatRules()

func buildFormatRules() []formatRule {
	var rules []formatRule

	add := func(entityType, expr string, score float64, useGroup bool) {
		rules = append(rules, formatRule{
			entityType: entityType,
			re:         regexp.MustCompile(expr),
			score:      score,
			useGroup:   useGroup,
		})
	}

	// Email.
	add("EMAIL_ADDRESS", `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`, emailScore, false)

	// Australian phone numbers.
	for _, expr := range []string{
		`\b(?:\+61|0)4\d{2}[\s-]?\d{3}[\s-]?\d{3}\b`,
		`\b(?:\+61|0)[2378][\s-]?\d{4}[\s-]?\d{4}\b`,
		`\(\d{2}\)\s*\d{4}[\s-]?\d{4}\b`,
		`\b13\d{2}\s*\d{2}\b`,
		`\b1300\s+\d{3}\s+\d{3}\b`,
		`\b1800\s*\d{3}\s*\d{3}\b`,
	} {
		add("AU_PHONE", expr, phoneScore, false)
	}

	// Labelled identifiers. Case-insensitive; the capturing group is the value.
	idRules := []struct {
		entityType string
		exprs      []string
	}{
		{"INSURANCE_CLAIM_NUMBER", []string{
			`(?i)(?:Claim|CL|CLM)[#:\-\s]+([A-Z0-9-]+)`,
			`(?i)(?:Claim\s+(?:Number|Reference|ID|#))[#:\-\s]+([A-Z0-9-]+)`,
		}},
		{"INSURANCE_POLICY_NUMBER", []string{
			`(?i)(?:Policy|POL)[#:\-\s]+([A-Z0-9-]+)`,
			`(?i)(?:Policy\s+(?:Number|ID|#))[#:\-\s]+([A-Z0-9-]+)`,
		}},
		{"VEHICLE_REGISTRATION", []string{
			`(?i)(?:Registration|Rego|REG)[#:\-\s]+([A-Z0-9-]+)`,
			`(?i)(?:Vehicle\s+(?:Registration|Rego|REG))[#:\-\s]+([A-Z0-9-]+)`,
		}},
		{"VEHICLE_VIN", []string{
			`(?i)(?:VIN|Vehicle\s+Identification\s+Number)[#:\-\s]+([A-Z0-9]{17})`,
		}},
	}
	for _, r := range idRules {
		for _, expr := range r.exprs {
			add(r.entityType, expr, idScore, true)
		}
	}

	// Labelled Australian identifiers.
	auRules := []struct {
		entityType string
		exprs      []string
	}{
		{"AU_TFN", []string{
			`(?i)(?:TFN|Tax\s+File\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3})\b`,
		}},
		{"AU_MEDICARE", []string{
			`(?i)(?:Medicare|Medicare\s+Number)[:\s]*([2-6]\d{3}\s*\d{5}\s*\d{1})\b`,
		}},
		{"AU_ABN", []string{
			`(?i)(?:ABN|Australian\s+Business\s+Number)[:\s]*(\d{2}\s*\d{3}\s*\d{3}\s*\d{3})\b`,
		}},
		{"AU_ACN", []string{
			`(?i)(?:ACN|Australian\s+Company\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3})\b`,
		}},
		{"AU_DRIVERS_LICENSE", []string{
			`(?i)(?:Driver'?s?\s+License|Licence|DL)[:\s#]*([A-Z0-9]{6,10})\b`,
			`(?i)(?:NSW|VIC|QLD|SA|WA|TAS|NT|ACT)\s+License[:\s]*(\d{6,10})\b`,
		}},
		{"AU_PASSPORT", []string{
			`(?i)(?:Passport|Passport\s+Number)[:\s]*([A-Z][0-9]{7})\b`,
		}},
		{"AU_CENTRELINK_CRN", []string{
			`(?i)(?:CRN|Centrelink\s+Reference\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3}[A-Z]?)\b`,
		}},
	}
	for _, r := range auRules {
		for _, expr := range r.exprs {
			add(r.entityType, expr, auScore, true)
		}
	}

	return rules
}

// DetectFormats scans for well-known structured formats (emails, phone
// numbers, labelled identifiers). These run regardless of what is registered
// in the pattern registry.
func DetectFormats(text string) []entity.Entity {
	var results []entity.Entity
	for _, rule := range formatRules {
		for _, idx := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[0], idx[1]
			if rule.useGroup && len(idx) > 2 && idx[2] >= 0 {
				start, end = idx[2], idx[3]
			}
			results = append(results, entity.Entity{
				Type:   rule.entityType,
				Start:  start,
				End:    end,
				Score:  rule.score,
				Text:   text[start:end],
				Source: entity.SourceFormat,
			})
		}
	}
	return results
}
