// Package report renders the merged record set for people: a calendar-style
// grouping by due date and a printable PDF schedule.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

// DayGroup collects every assignment due on one calendar day.
type DayGroup struct {
	Date        time.Time
	DayName     string
	Assignments []homework.Record
}

var germanDays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

// DayName returns the German weekday name for a date.
func DayName(t time.Time) string {
	return germanDays[int(t.Weekday())]
}

// GroupByDate buckets records per calendar day, ascending by date. Within a
// day, records keep their input order.
func GroupByDate(records []homework.Record) []DayGroup {
	byDay := map[string]*DayGroup{}
	var keys []string
	for _, r := range records {
		key := r.DueDate.Format("2006-01-02")
		g, ok := byDay[key]
		if !ok {
			g = &DayGroup{Date: r.DueDate, DayName: DayName(r.DueDate)}
			byDay[key] = g
			keys = append(keys, key)
		}
		g.Assignments = append(g.Assignments, r)
	}
	sort.Strings(keys)

	out := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDay[k])
	}
	return out
}

// WritePDF renders the grouped schedule as a simple A4 document: one heading
// per day, one block per assignment. Core fonts are cp1252, so all text runs
// through the unicode translator to keep umlauts intact.
func WritePDF(groups []DayGroup, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Hausaufgaben"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, g := range groups {
		pdf.SetFont("Helvetica", "B", 13)
		heading := fmt.Sprintf("%s, %s", g.DayName, g.Date.Format("02.01.2006"))
		pdf.CellFormat(0, 8, tr(heading), "", 1, "L", false, 0, "")

		for _, r := range g.Assignments {
			pdf.SetFont("Helvetica", "B", 11)
			title := r.Subject
			if r.Teacher != "" {
				title += " - " + r.Teacher
			}
			if r.Completed {
				title += " (erledigt)"
			}
			pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")

			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 5, tr(r.Description), "", "L", false)
			if r.LessonContent != "" {
				pdf.SetFont("Helvetica", "I", 10)
				pdf.MultiCell(0, 5, tr("Unterrichtsinhalt: "+r.LessonContent), "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}

	return pdf.OutputFileAndClose(outPath)
}
