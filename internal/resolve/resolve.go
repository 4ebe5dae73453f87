// Package resolve deduplicates detection candidates and resolves conflicts
// when several entity types claim exactly the same span.
package resolve

import (
	"regexp"
	"sort"
	"strings"

	"github.com/srepho/allyanonimiser-go/internal/entity"
	"github.com/srepho/allyanonimiser-go/internal/validate"
)

var (
	serviceNumberRe = regexp.MustCompile(`^(1300|1800|13\d{2})\s+`)
	medicareShapeRe = regexp.MustCompile(`^\d{4}\s*\d{5}\s*\d{1}$`)
	dateShapeRe     = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`)
)

// Labels that end a span's text when the whole group is an identifier label,
// not PII.
var labelSuffixes = []string{"number", "ref", "#", "id", "identifier"}

// Entity types tied to a document structure; these outrank generic types when
// they share a span.
var docSpecificTypes = []string{
	"EMAIL_ADDRESS", "EMAIL_SUBJECT", "EMAIL_FROM", "EMAIL_TO",
	"INSURANCE_CLAIM_NUMBER", "INSURANCE_POLICY_NUMBER", "VEHICLE_REGISTRATION",
	"VEHICLE_VIN", "INCIDENT_DATE",
	"MEDICARE_NUMBER", "PATIENT_ID", "DOCTOR_ID", "DIAGNOSIS_CODE", "MEDICATION",
}

// prefixEntity maps an uppercase text prefix to the entity type it implies.
// Order matters: earlier prefixes are checked first.
var prefixEntity = []struct {
	prefix     string
	entityType string
}{
	{"POL", "INSURANCE_POLICY_NUMBER"},
	{"CL", "INSURANCE_CLAIM_NUMBER"},
	{"CLM", "INSURANCE_CLAIM_NUMBER"},
	{"INV", "INVOICE_NUMBER"},
	{"REF", "INSURANCE_CLAIM_NUMBER"},
	{"DOB", "DATE_OF_BIRTH"},
	{"DOI", "DATE_OF_INCIDENT"},
	{"VIN", "VEHICLE_VIN"},
	{"ABN", "AU_ABN"},
	{"TFN", "AU_TFN"},
	{"ACN", "AU_ACN"},
	{"MEDICARE", "MEDICARE_NUMBER"},
}

// datePriority orders date subtypes from most to least specific.
var datePriority = []string{"DATE_OF_BIRTH", "DATE_OF_INCIDENT", "INCIDENT_DATE", "DATE"}

// sourceRank orders candidates within a span group: structured format
// detections first, then model detections, then registered patterns. Within
// one source the input order is preserved.
func sourceRank(s entity.Source) int {
	switch s {
	case entity.SourceFormat:
		return 0
	case entity.SourceNER:
		return 1
	default:
		return 2
	}
}

// Resolve groups candidates by exact span, validates singletons, resolves
// multi-type conflicts, and returns the surviving entities sorted by start
// offset.
func Resolve(candidates []entity.Entity) []entity.Entity {
	groups := make(map[entity.SpanKey][]entity.Entity)
	var order []entity.SpanKey

	for _, c := range candidates {
		key := c.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	var resolved []entity.Entity
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			if validateSingleton(group[0]) {
				resolved = append(resolved, group[0])
			}
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return sourceRank(group[i].Source) < sourceRank(group[j].Source)
		})
		if winner, ok := resolveConflict(group, key.Text); ok {
			resolved = append(resolved, winner)
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Start != resolved[j].Start {
			return resolved[i].Start < resolved[j].Start
		}
		return resolved[i].End < resolved[j].End
	})
	return resolved
}

// validateSingleton runs the per-type validator for an uncontested candidate.
func validateSingleton(e entity.Entity) bool {
	switch e.Type {
	case "DATE":
		valid, kind := validate.Date(e.Text)
		if !valid {
			switch kind {
			case validate.DateKindStatePostcode, validate.DateKindPhonePrefix,
				validate.DateKindPhoneSuffix, validate.DateKindMedicare,
				validate.DateKindService:
				return false
			}
		}
	case "NUMBER":
		valid, _ := validate.Number(e.Text, "")
		return valid
	case "AU_PHONE":
		valid, _ := validate.Phone(e.Text)
		return valid
	case "AU_MEDICARE":
		valid, _ := validate.Medicare(strings.ReplaceAll(e.Text, " ", ""))
		return valid
	case "AU_TFN":
		valid, _ := validate.TFN(strings.ReplaceAll(e.Text, " ", ""))
		return valid
	case "AU_ABN":
		valid, _ := validate.ABN(strings.ReplaceAll(e.Text, " ", ""))
		return valid
	}
	return true
}

// resolveConflict picks the winning entity type for a span claimed by several
// candidates. The rules run in strict order; the first that applies decides.
func resolveConflict(group []entity.Entity, text string) (entity.Entity, bool) {
	lower := strings.ToLower(text)
	upper := strings.ToUpper(text)

	// Identifier labels are not PII at all.
	for _, suffix := range labelSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return entity.Entity{}, false
		}
	}

	// Remove PERSON claims over spans that are clearly identifiers, places,
	// or field labels.
	if hasType(group, "PERSON") && personFalsePositive(lower, upper) {
		for _, c := range group {
			if c.Type != "PERSON" {
				return c, true
			}
		}
		return entity.Entity{}, false
	}

	// A confident person detection beats everything else.
	for _, c := range group {
		if c.Type == "PERSON" && c.Score >= 0.9 {
			return c, true
		}
	}

	// Service numbers look like dates to a date detector.
	if hasType(group, "AU_PHONE") && hasType(group, "DATE") && serviceNumberRe.MatchString(text) {
		return firstOfType(group, "AU_PHONE")
	}

	// Very high confidence wins outright.
	best := group[0]
	for _, c := range group[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	if best.Score > 0.95 {
		return best, true
	}

	for _, t := range docSpecificTypes {
		if winner, ok := firstOfType(group, t); ok {
			return winner, true
		}
	}

	for _, pe := range prefixEntity {
		if strings.HasPrefix(upper, pe.prefix) {
			if winner, ok := firstOfType(group, pe.entityType); ok {
				return winner, true
			}
		}
	}

	if medicareShapeRe.MatchString(text) {
		if winner, ok := firstOfType(group, "MEDICARE_NUMBER"); ok {
			return winner, true
		}
	}

	if dateShapeRe.MatchString(text) {
		for _, t := range datePriority {
			if winner, ok := firstOfType(group, t); ok {
				return winner, true
			}
		}
	}

	return group[0], true
}

func personFalsePositive(lower, upper string) bool {
	if strings.HasPrefix(lower, "policy") ||
		strings.HasPrefix(lower, "ref") ||
		strings.HasPrefix(lower, "claim") ||
		strings.HasPrefix(upper, "POL-") ||
		strings.HasPrefix(upper, "CL-") ||
		strings.HasPrefix(upper, "CLM-") ||
		strings.Contains(lower, "number") {
		return true
	}
	for _, suffix := range []string{
		" st", " street", " rd", " road", " ave", " avenue",
		" dr", " drive", " ln", " lane", " pl", " place",
		" ct", " court", " cr", " crescent",
	} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	switch lower {
	case "medicare", "dob", "doi":
		return true
	}
	return false
}

func hasType(group []entity.Entity, entityType string) bool {
	for _, c := range group {
		if c.Type == entityType {
			return true
		}
	}
	return false
}

func firstOfType(group []entity.Entity, entityType string) (entity.Entity, bool) {
	for _, c := range group {
		if c.Type == entityType {
			return c, true
		}
	}
	return entity.Entity{}, false
}
