// Package validate contains structural and checksum validators used to reject
// false-positive detections before results are returned.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date classification outcomes.
const (
	DateKindDate          = "date"
	DateKindYear          = "year"
	DateKindStatePostcode = "state_postcode"
	DateKindPostcode      = "postcode"
	DateKindNumber        = "number"
	DateKindPhonePrefix   = "phone_prefix"
	DateKindPhoneSuffix   = "phone_suffix"
	DateKindMedicare      = "medicare_number"
	DateKindDuration      = "duration"
	DateKindService       = "service_number"
	DateKindUnknown       = "unknown"
)

// Phone classification outcomes.
const (
	PhoneKindMobile        = "mobile"
	PhoneKindLandline      = "landline"
	PhoneKindService       = "service"
	PhoneKindEmergency     = "emergency"
	PhoneKindInternational = "international"
	PhoneKindPartial       = "partial"
	PhoneKindInvalid       = "invalid"
)

var (
	statePostcodeRe = regexp.MustCompile(`(?i)^(NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\s*\d{4}$`)
	fourDigitsRe    = regexp.MustCompile(`^\d{4}$`)
	phonePrefixRe   = regexp.MustCompile(`^0\d{3}$`)
	phoneSuffixRe   = regexp.MustCompile(`^\d{4}-\d{4}$`)
	tenDigitsRe     = regexp.MustCompile(`^\d{10}$`)
	durationRe      = regexp.MustCompile(`(?i)^\d+\s+(day|week|month|year)s?$`)
	digitsOnlyRe    = regexp.MustCompile(`^\d+$`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`),
		regexp.MustCompile(`^\d{4}[/.-]\d{1,2}[/.-]\d{1,2}$`),
		regexp.MustCompile(`(?i)^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{1,2},?\s+\d{4}$`),
		regexp.MustCompile(`(?i)^\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{4}$`),
	}

	serviceNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`^1300\s+\d{3}\s+\d{3}$`),
		regexp.MustCompile(`^1800\s+\d{3}\s+\d{3}$`),
		regexp.MustCompile(`^13\d{2}\s+\d{2}$`),
	}

	phoneStripRe    = regexp.MustCompile(`[\s\-\(\)]+`)
	mobileRe        = regexp.MustCompile(`^(?:\+61|0)4\d{8}$`)
	landlineRe      = regexp.MustCompile(`^(?:\+61|0)[2378]\d{8}$`)
	servicePhoneRe  = regexp.MustCompile(`^(?:13\d{4}|1300\d{6}|1800\d{6})$`)
	internationalRe = regexp.MustCompile(`^\+\d{1,3}\d{7,14}$`)

	spacesRe   = regexp.MustCompile(`\s+`)
	nineDigits = regexp.MustCompile(`^\d{9}$`)
	elevenDig  = regexp.MustCompile(`^\d{11}$`)
)

// Date classifies a span detected as a date. It returns false with a
// classification for the common lookalikes (postcodes, phone fragments,
// service numbers) that should not survive as DATE entities.
func Date(text string) (bool, string) {
	if statePostcodeRe.MatchString(text) {
		return false, DateKindStatePostcode
	}

	if fourDigitsRe.MatchString(text) {
		num, _ := strconv.Atoi(text)
		currentYear := time.Now().Year()
		switch {
		case num >= 1900 && num <= currentYear+5:
			return true, DateKindYear
		case num >= 800 && num <= 9999:
			return false, DateKindPostcode
		default:
			return false, DateKindNumber
		}
	}

	if phonePrefixRe.MatchString(text) {
		return false, DateKindPhonePrefix
	}
	if phoneSuffixRe.MatchString(text) {
		return false, DateKindPhoneSuffix
	}
	if tenDigitsRe.MatchString(text) {
		return false, DateKindMedicare
	}

	for _, re := range datePatterns {
		if re.MatchString(text) {
			return true, DateKindDate
		}
	}

	if durationRe.MatchString(text) {
		return false, DateKindDuration
	}

	for _, re := range serviceNumberRes {
		if re.MatchString(text) {
			return false, DateKindService
		}
	}

	return false, DateKindUnknown
}

// Phone classifies a detected phone number after stripping spaces, hyphens,
// and parentheses.
func Phone(text string) (bool, string) {
	cleaned := phoneStripRe.ReplaceAllString(text, "")

	switch {
	case mobileRe.MatchString(cleaned):
		return true, PhoneKindMobile
	case landlineRe.MatchString(cleaned):
		return true, PhoneKindLandline
	case servicePhoneRe.MatchString(cleaned):
		return true, PhoneKindService
	case cleaned == "000" || cleaned == "112" || cleaned == "106":
		return true, PhoneKindEmergency
	case internationalRe.MatchString(cleaned):
		return true, PhoneKindInternational
	case len(cleaned) < 8:
		return false, PhoneKindPartial
	default:
		return false, PhoneKindInvalid
	}
}

// Medicare validates an Australian Medicare number: 10 digits, first digit
// 2-6, issue number (10th digit) nonzero.
func Medicare(text string) (bool, string) {
	cleaned := spacesRe.ReplaceAllString(text, "")

	if !tenDigitsRe.MatchString(cleaned) {
		return false, "Medicare number must be 10 digits"
	}
	if cleaned[0] < '2' || cleaned[0] > '6' {
		return false, "Medicare number should start with 2-6"
	}
	if cleaned[9] == '0' {
		return false, "Invalid IRN (10th digit cannot be 0)"
	}
	return true, ""
}

var tfnWeights = [9]int{1, 4, 3, 7, 5, 8, 6, 9, 10}

// TFN validates an Australian Tax File Number with the modulus-11 checksum.
func TFN(text string) (bool, string) {
	cleaned := spacesRe.ReplaceAllString(text, "")

	if !nineDigits.MatchString(cleaned) {
		return false, "TFN must be 9 digits"
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cleaned[i]-'0') * tfnWeights[i]
	}
	if sum%11 != 0 {
		return false, "Invalid TFN checksum"
	}
	return true, ""
}

var abnWeights = [11]int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}

// ABN validates an Australian Business Number with the modulus-89 checksum
// (first digit decremented before weighting).
func ABN(text string) (bool, string) {
	cleaned := spacesRe.ReplaceAllString(text, "")

	if !elevenDig.MatchString(cleaned) {
		return false, "ABN must be 11 digits"
	}
	sum := 0
	for i := 0; i < 11; i++ {
		d := int(cleaned[i] - '0')
		if i == 0 {
			d--
		}
		sum += d * abnWeights[i]
	}
	if sum%89 != 0 {
		return false, "Invalid ABN checksum"
	}
	return true, ""
}

var postcodeRanges = map[string][][2]int{
	"NSW": {{1000, 2599}, {2619, 2899}, {2921, 2999}},
	"VIC": {{3000, 3999}, {8000, 8999}},
	"QLD": {{4000, 4999}, {9000, 9999}},
	"SA":  {{5000, 5999}},
	"WA":  {{6000, 6999}},
	"TAS": {{7000, 7999}},
	"NT":  {{800, 899}},
	"ACT": {{200, 299}, {2600, 2618}, {2900, 2920}},
}

// Postcode validates an Australian postcode and returns the matching state.
func Postcode(text string) (bool, string) {
	if !fourDigitsRe.MatchString(text) {
		return false, ""
	}
	postcode, _ := strconv.Atoi(text)
	for state, ranges := range postcodeRanges {
		for _, r := range ranges {
			if postcode >= r[0] && postcode <= r[1] {
				return true, state
			}
		}
	}
	return false, ""
}

// Number decides whether a detected NUMBER span is meaningful, optionally
// using the surrounding context for classification.
func Number(text, context string) (bool, string) {
	if text == "#" {
		return false, "symbol"
	}
	switch strings.ToLower(text) {
	case "quarter", "half", "third":
		return false, "word"
	}

	if fourDigitsRe.MatchString(text) {
		num, _ := strconv.Atoi(text)
		currentYear := time.Now().Year()
		if num >= 1900 && num <= currentYear+5 {
			return true, "year"
		}
	}

	contextLower := strings.ToLower(context)

	for _, word := range []string{"street", " st ", "road", " rd ", "avenue", " ave "} {
		if strings.Contains(contextLower, word) {
			return true, "street_number"
		}
	}
	if strings.Contains(contextLower, "medicare") && len(text) == 10 {
		return true, "medicare_number"
	}
	for _, word := range []string{"policy", "claim", "reference"} {
		if strings.Contains(contextLower, word) {
			return true, "reference_number"
		}
	}
	for _, word := range []string{"days", "weeks", "months", "years"} {
		if strings.Contains(contextLower, word) {
			return true, "duration_number"
		}
	}

	if digitsOnlyRe.MatchString(text) {
		return true, "generic_number"
	}
	return false, "invalid"
}
