package homework

import "time"

// Record is one homework assignment extracted from a Klassenbuch document.
// DueDate carries date-only semantics: it is always constructed at UTC
// midnight and compared at day granularity.
type Record struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	Teacher       string    `json:"teacher,omitempty"`
	Description   string    `json:"description"`
	LessonContent string    `json:"lessonContent,omitempty"`
	DueDate       time.Time `json:"dueDate"`
	Completed     bool      `json:"completed"`
	// SourceFileIDs lists every document the record was extracted from or
	// merged with. It is never empty while the record exists; duplicates are
	// suppressed and insertion order is preserved.
	SourceFileIDs []string `json:"sourceFileIds"`
}

// Date builds a date-only due date at UTC midnight. Out-of-range components
// are normalized by time.Date (e.g. 32.01. becomes 01.02.); calendar
// validation is left to callers that distrust their source text.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two due dates fall on the same calendar day,
// ignoring any time component.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
