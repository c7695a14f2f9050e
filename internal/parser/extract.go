package parser

import (
	"regexp"
	"strings"
)

// Compiled patterns for pharmaceutical descriptors. These back both the regex
// fallback parser and field backfill after an LLM parse.
var (
	strengthPattern = regexp.MustCompile(
		`(?i)(\d+(?:\.\d+)?)\s*(?:micrograms|mcg|mg|g|ml|%)/(?:\d+(?:\.\d+)?)?\s*(?:ml|l)?|(\d+(?:\.\d+)?)\s*(?:micrograms|mcg|mg|g|ml)`)
	formulationPattern = regexp.MustCompile(
		`(?i)(tablets?|capsules?|(?:pre-filled\s+)?syringes?|(?:transdermal\s+)?patches?|oral\s+solution|suspension|cream|ointment|injection|powder|liquid|ampoules?|bottles?)`)
	patchDurationPattern = regexp.MustCompile(
		`(?i)(\d+(?:\.\d+)?)\s*(?:day|days|hour|hours|hr|hrs)`)
	durationNormPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:day|days|hour|hours|hr|hrs)`)

	genericPrefixPattern = regexp.MustCompile(`^Generic\s+`)
	sterilePattern       = regexp.MustCompile(`\s+sterile\s+`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// MatchStrength returns the strength substring of a descriptor, or "".
func MatchStrength(medicineName string) string {
	return strengthPattern.FindString(medicineName)
}

// MatchFormulation returns the formulation substring of a descriptor, or "".
func MatchFormulation(medicineName string) string {
	return formulationPattern.FindString(medicineName)
}

// MatchPatchDuration returns the explicit patch duration in a descriptor
// normalized to "N days" or "N hours", or "".
func MatchPatchDuration(medicineName string) string {
	return CleanDuration(patchDurationPattern.FindString(medicineName))
}

// IsPatch reports whether the descriptor names a transdermal patch.
func IsPatch(medicineName string) bool {
	return strings.Contains(strings.ToLower(medicineName), "patch")
}

// CleanDuration normalizes a duration phrase to "N days" or "N hours".
// Returns "" when the phrase carries no recognizable duration.
func CleanDuration(duration string) string {
	duration = strings.ToLower(strings.TrimSpace(duration))
	if duration == "" {
		return ""
	}
	m := durationNormPattern.FindStringSubmatch(duration)
	if m == nil {
		return ""
	}
	if strings.Contains(duration, "hour") || strings.Contains(duration, "hr") {
		return m[1] + " hours"
	}
	return m[1] + " days"
}

// NormalizeName strips strength and formulation substrings plus filler words
// from a descriptor, leaving the bare medicine name.
func NormalizeName(medicineName, strength, formulation string) string {
	name := medicineName
	if strength != "" {
		name = strings.Replace(name, strength, "", 1)
	}
	if formulation != "" {
		name = strings.Replace(name, formulation, "", 1)
	}
	name = genericPrefixPattern.ReplaceAllString(name, "")
	name = sterilePattern.ReplaceAllString(name, " ")
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimRight(strings.TrimSpace(name), " -,.")
}
