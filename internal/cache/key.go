package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Texts longer than this are keyed by prefix plus content digest instead of
// the full text.
const longTextThreshold = 200

const keyPrefixLen = 100

// textKey returns a stable identifier for the text. Long texts keep their
// first 100 characters for debuggability plus an xxhash digest of the whole
// content.
func textKey(text string) string {
	if len(text) <= longTextThreshold {
		return text
	}
	return fmt.Sprintf("%s...%016x", text[:keyPrefixLen], xxhash.Sum64String(text))
}

// ResultKey builds the composite key for the final-result cache. Two analyses
// share a key only when the text, the active type set, the score adjustments,
// and the score threshold all agree.
func ResultKey(text string, activeTypes map[string]bool, scoreAdjustment map[string]float64, minThreshold float64) string {
	var sb strings.Builder
	sb.WriteString(textKey(text))
	sb.WriteByte('|')

	if len(activeTypes) == 0 {
		sb.WriteString("all")
	} else {
		types := make([]string, 0, len(activeTypes))
		for t := range activeTypes {
			types = append(types, t)
		}
		sort.Strings(types)
		sb.WriteString(strings.Join(types, ","))
	}
	sb.WriteByte('|')

	if len(scoreAdjustment) == 0 {
		sb.WriteString("none")
	} else {
		keys := make([]string, 0, len(scoreAdjustment))
		for k := range scoreAdjustment {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%s=%g", k, scoreAdjustment[k])
		}
	}
	sb.WriteByte('|')

	fmt.Fprintf(&sb, "%g", minThreshold)
	return sb.String()
}
