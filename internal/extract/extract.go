package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

// header marks a subject/teacher announcement in the source text. Every
// due-date occurrence is attributed to the nearest preceding header.
type header struct {
	offset  int
	subject string
	teacher string
}

var (
	// "<subject> - Lehrkraft: <teacher>" with the teacher phrase running
	// until an opening parenthesis, a section marker, or end of text. The
	// terminator is consumed rather than looked ahead at (RE2 has no
	// lookahead); only the match start offset and the capture groups are
	// used, so that makes no difference downstream.
	headerRe = regexp.MustCompile(`(?:#\s*)?([A-Za-zÄÖÜäöüß .()/\-]+?)\s*-\s*Lehrkraft:\s*([^()#\n]+?)(?:\s*\(|\s*Unterrichtsinhalt|\s*Hausaufgabe|\s*$)`)

	dueRe = regexp.MustCompile(`(?i)Zu\s*Erledigen\s*bis:\s*(\d{2})\.(\d{2})\.(\d{4})`)

	lessonRe = regexp.MustCompile(`(?is)Unterrichtsinhalt:?\s*(.*?)(?:\s*#?\s*Hausaufgabe|$)`)

	hausaufgabeRe = regexp.MustCompile(`(?i)hausaufgabe`)

	placeholderRe = regexp.MustCompile(`(?i)Keine Hausaufgabe eingetragen\.?`)
	lessonLabelRe = regexp.MustCompile(`(?i)#?\s*Unterrichtsinhalt:?`)
	hwLabelRe     = regexp.MustCompile(`(?i)#?\s*Hausaufgabe:?`)
	rosterRe      = regexp.MustCompile(`(?i)Klassenbuch der Klasse.*?den\s*\d{2}\.\d{2}\.\d{4}`)
	teacherLblRe  = regexp.MustCompile(`(?i)Lehrkraft:`)
	// Includes Unicode separators: decoded HTML carries non-breaking spaces.
	spaceRunRe = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]{2,}`)

	leadingPunctRe  = regexp.MustCompile(`^[:‑\-\s]+`)
	trailingPunctRe = regexp.MustCompile(`[:‑\-\s]+$`)
)

// Extract scans already-decoded Klassenbuch text and returns one homework
// record per attributable due-date occurrence. It is a pure function of its
// inputs and never fails: malformed headers or orphaned due dates degrade to
// fewer records, not errors.
func Extract(text, documentID string) []homework.Record {
	headers := findHeaders(text)

	var records []homework.Record
	for _, m := range dueRe.FindAllStringSubmatchIndex(text, -1) {
		idx := m[0]
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month, _ := strconv.Atoi(text[m[4]:m[5]])
		year, _ := strconv.Atoi(text[m[6]:m[7]])
		due := homework.Date(year, month, day)

		h, ok := nearestBefore(headers, idx)
		if !ok {
			// No subject context to attribute this date to.
			continue
		}

		section := text[h.offset:idx]
		description := cleanDescription(descriptionSource(section))
		if utf8.RuneCountInString(description) <= 2 {
			continue
		}

		records = append(records, homework.Record{
			ID:            newID(h.subject, due.UnixMilli()),
			Subject:       h.subject,
			Teacher:       h.teacher,
			Description:   description,
			LessonContent: lessonContent(section),
			DueDate:       due,
			SourceFileIDs: []string{documentID},
		})
	}
	return records
}

func findHeaders(text string) []header {
	var out []header
	for _, m := range headerRe.FindAllStringSubmatchIndex(text, -1) {
		rawSubject := text[m[2]:m[3]]
		rawTeacher := text[m[4]:m[5]]
		// Placeholder sections announce the absence of homework; they are
		// not genuine subject headers.
		if strings.Contains(strings.ToLower(rawSubject), "keine hausaufgabe") {
			continue
		}
		out = append(out, header{
			offset:  m[0],
			subject: homework.NormalizeSubject(rawSubject),
			teacher: strings.TrimSpace(spaceRunRe.ReplaceAllString(rawTeacher, " ")),
		})
	}
	return out
}

// nearestBefore returns the header with the greatest offset <= idx. Headers
// arrive sorted by discovery offset, so a binary search suffices.
func nearestBefore(headers []header, idx int) (header, bool) {
	i := sort.Search(len(headers), func(i int) bool { return headers[i].offset > idx })
	if i == 0 {
		return header{}, false
	}
	return headers[i-1], true
}

// descriptionSource slices the section after its last "hausaufgabe" marker,
// or returns the whole section when the marker is absent. The marker is
// located case-insensitively on the section itself: lowercasing a copy and
// reusing its indices would drift on runes whose byte width changes under
// case mapping.
func descriptionSource(section string) string {
	if locs := hausaufgabeRe.FindAllStringIndex(section, -1); len(locs) > 0 {
		return section[locs[len(locs)-1][1]:]
	}
	return section
}

func cleanDescription(raw string) string {
	s := placeholderRe.ReplaceAllString(raw, " ")
	s = lessonLabelRe.ReplaceAllString(s, " ")
	s = hwLabelRe.ReplaceAllString(s, " ")
	s = rosterRe.ReplaceAllString(s, " ")
	s = teacherLblRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
	s = leadingPunctRe.ReplaceAllString(s, "")
	s = trailingPunctRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func lessonContent(section string) string {
	m := lessonRe.FindStringSubmatch(section)
	if m == nil {
		return ""
	}
	s := placeholderRe.ReplaceAllString(m[1], " ")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func newID(subject string, epochMillis int64) string {
	return subject + "-" + strconv.FormatInt(epochMillis, 10) + "-" + uuid.NewString()
}
