package homework

import (
	"regexp"
	"strings"
)

// SubjectKeywords is the fixed vocabulary of known subject names, tested in
// order during normalization. First match wins.
var SubjectKeywords = []string{
	"Mathematik",
	"Deutsch",
	"Englisch",
	"Geographie",
	"Geschichte",
	"Evang. Religionslehre",
	"Islamischer Unterricht",
	"Ethik",
	"Sport",
	"Kunst",
	"Informationstechnologie",
	"Informatik",
}

var (
	placeholderRe = regexp.MustCompile(`(?i)Keine Hausaufgabe eingetragen\.?`)
	// Includes Unicode separators: decoded HTML carries non-breaking spaces.
	spaceRunRe = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]{2,}`)
)

// NormalizeSubject cleans a raw subject phrase and maps it onto the known
// vocabulary. The "Keine Hausaufgabe eingetragen" placeholder is stripped and
// whitespace collapsed; the first vocabulary entry contained in the cleaned
// text (case-insensitive) wins. Unrecognized subjects pass through cleaned
// but otherwise verbatim.
func NormalizeSubject(raw string) string {
	cleaned := placeholderRe.ReplaceAllString(raw, " ")
	cleaned = strings.TrimSpace(spaceRunRe.ReplaceAllString(cleaned, " "))
	lower := strings.ToLower(cleaned)
	for _, k := range SubjectKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return k
		}
	}
	return cleaned
}

// subjectKeys assigns each vocabulary entry a stable identifier. Unknown
// subjects map to "default".
var subjectKeys = map[string]string{
	"Mathematik":              "mathematik",
	"Deutsch":                 "deutsch",
	"Englisch":                "englisch",
	"Geographie":              "geographie",
	"Geschichte":              "geschichte",
	"Evang. Religionslehre":   "evang-religionslehre",
	"Islamischer Unterricht":  "islamischer-unterricht",
	"Ethik":                   "ethik",
	"Sport":                   "sport",
	"Kunst":                   "kunst",
	"Informationstechnologie": "informationstechnologie",
	"Informatik":              "informatik",
}

// SubjectKey returns the stable key for a subject, or "default" when the
// subject is outside the vocabulary. Total over all strings.
func SubjectKey(subject string) string {
	if k, ok := subjectKeys[subject]; ok {
		return k
	}
	return "default"
}

// SubjectColor returns the display color for a subject as an HSL triple.
// Matching is substring-based so fallback subjects that merely mention a
// known discipline still pick up its hue. Religion and IT subjects share a
// hue on purpose.
func SubjectColor(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "mathematik") || strings.Contains(s, "math"):
		return "34 100% 55%"
	case strings.Contains(s, "deutsch"):
		return "350 85% 60%"
	case strings.Contains(s, "englisch") || strings.Contains(s, "english"):
		return "210 90% 55%"
	case strings.Contains(s, "geographie") || strings.Contains(s, "erdkunde"):
		return "140 60% 50%"
	case strings.Contains(s, "geschichte"):
		return "25 85% 55%"
	case strings.Contains(s, "religion") || strings.Contains(s, "islamisch") || strings.Contains(s, "evang"):
		return "280 65% 60%"
	case strings.Contains(s, "sport"):
		return "120 50% 50%"
	case strings.Contains(s, "kunst"):
		return "320 80% 60%"
	case strings.Contains(s, "informatik") || strings.Contains(s, "informationstechnologie") || strings.Contains(s, "it"):
		return "200 80% 55%"
	case strings.Contains(s, "ethik"):
		return "180 60% 50%"
	}
	return "262 83% 58%"
}
