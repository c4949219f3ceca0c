package utils

import (
	"strings"
	"unicode"
)

// facilityAliases maps normalized shorthand to the canonical facility label
var facilityAliases = map[string]string{
	"pool":                   "Swimming Pool",
	"swimming":               "Swimming Pool",
	"clubhouse":              "Club house / Community Center",
	"club":                   "Club house / Community Center",
	"communitycenter":        "Club house / Community Center",
	"communitycentre":        "Club house / Community Center",
	"communityhall":          "Club house / Community Center",
	"security":               "Security Personnel",
	"guard":                  "Security Personnel",
	"guards":                 "Security Personnel",
	"powerbackup":            "Power Back-up",
	"backup":                 "Power Back-up",
	"generator":              "Power Back-up",
	"highceiling":            "High Ceiling Height",
	"spacious":               "Spacious Interiors",
	"watersoftener":          "Water softening plant",
	"softener":               "Water softening plant",
	"lowdensity":             "Low Density Society",
	"shopping":               "Shopping Centre",
	"shoppingcenter":         "Shopping Centre",
	"mall":                   "Shopping Centre",
	"garden":                 "Private Garden / Terrace",
	"terrace":                "Private Garden / Terrace",
	"wifi":                   "Internet/wi-fi connectivity",
	"internet":               "Internet/wi-fi connectivity",
	"broadband":              "Internet/wi-fi connectivity",
	"centralac":              "Centrally Air Conditioned",
	"centralair":             "Centrally Air Conditioned",
	"centralairconditioning": "Centrally Air Conditioned",
}

// minContainsLen guards substring matching against very short terms
const minContainsLen = 4

// MatchFacility resolves a user-supplied facility name to one of options.
// Matching ignores case, spacing and punctuation, then tries known aliases,
// then a unique substring match. It reports false when nothing or more than
// one option matches.
func MatchFacility(term string, options []string) (string, bool) {
	needle := normalizeKey(term)
	if needle == "" {
		return "", false
	}

	// Exact match
	for _, option := range options {
		if normalizeKey(option) == needle {
			return option, true
		}
	}

	// Alias match
	if canonical, ok := facilityAliases[needle]; ok {
		for _, option := range options {
			if option == canonical {
				return option, true
			}
		}
	}

	// Contains match, only when unambiguous
	if len(needle) < minContainsLen {
		return "", false
	}
	found := ""
	for _, option := range options {
		if strings.Contains(normalizeKey(option), needle) {
			if found != "" {
				return "", false
			}
			found = option
		}
	}
	return found, found != ""
}

// normalizeKey lowercases s and keeps only letters and digits
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
