package extract

import (
	"strings"
	"testing"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

const sampleText = `Klassenbuch der Klasse 7a vom Montag, den 10.03.2025
# Mathematik - Lehrkraft: Herr Weber (StR)
# Unterrichtsinhalt: Bruchrechnung mit gemischten Zahlen
# Hausaufgabe: Buch S. 42 Nr. 1-3 Zu Erledigen bis: 14.03.2025
# Deutsch - Lehrkraft: Frau  Braun Hausaufgabe: Gedicht auswendig lernen Zu Erledigen bis: 12.03.2025
# Englisch - Lehrkraft: Mr Smith Hausaufgabe: Vokabeln Unit 4 wiederholen Zu Erledigen bis: 13.03.2025`

func TestExtract_EmptyAndHeaderlessText(t *testing.T) {
	if got := Extract("", "doc"); len(got) != 0 {
		t.Fatalf("expected no records from empty text, got %d", len(got))
	}
	if got := Extract("nur Fliesstext ohne jede Struktur", "doc"); len(got) != 0 {
		t.Fatalf("expected no records without headers or due dates, got %d", len(got))
	}
}

func TestExtract_DueDateWithoutHeaderDropped(t *testing.T) {
	got := Extract("Zu Erledigen bis: 14.03.2025", "doc")
	if len(got) != 0 {
		t.Fatalf("unattributable due date must be dropped, got %d records", len(got))
	}
}

func TestExtract_FullSections(t *testing.T) {
	got := Extract(sampleText, "doc-1")
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}

	math := got[0]
	if math.Subject != "Mathematik" {
		t.Errorf("subject = %q, want Mathematik", math.Subject)
	}
	if math.Teacher != "Herr Weber" {
		t.Errorf("teacher = %q, want Herr Weber", math.Teacher)
	}
	if math.Description != "Buch S. 42 Nr. 1-3" {
		t.Errorf("description = %q", math.Description)
	}
	if math.LessonContent != "Bruchrechnung mit gemischten Zahlen" {
		t.Errorf("lesson content = %q", math.LessonContent)
	}
	if !math.DueDate.Equal(homework.Date(2025, 3, 14)) {
		t.Errorf("due date = %v", math.DueDate)
	}
	if len(math.SourceFileIDs) != 1 || math.SourceFileIDs[0] != "doc-1" {
		t.Errorf("source file ids = %v", math.SourceFileIDs)
	}
	if math.Completed {
		t.Error("new records must not be completed")
	}

	if got[1].Subject != "Deutsch" || got[2].Subject != "Englisch" {
		t.Fatalf("unexpected subjects: %q, %q", got[1].Subject, got[2].Subject)
	}
	if got[1].Description != "Gedicht auswendig lernen" {
		t.Errorf("deutsch description = %q", got[1].Description)
	}
	if got[2].Description != "Vokabeln Unit 4 wiederholen" {
		t.Errorf("englisch description = %q", got[2].Description)
	}
}

func TestExtract_TeacherWhitespaceCollapsed(t *testing.T) {
	got := Extract(sampleText, "doc")
	if got[1].Teacher != "Frau Braun" {
		t.Fatalf("teacher = %q, want whitespace collapsed", got[1].Teacher)
	}
}

func TestExtract_CaseFoldWideningRunesBeforeMarker(t *testing.T) {
	// U+023A lowercases to U+2C65, growing from two bytes to three. Byte
	// offsets into the section must stay valid regardless.
	noise := strings.Repeat("Ⱥ", 50)
	text := "Mathematik - Lehrkraft: Herr Weber " + noise + " Hausaufgabe: Seite 9 wiederholen Zu Erledigen bis: 14.03.2025"
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Description != "Seite 9 wiederholen" {
		t.Fatalf("description = %q, want Seite 9 wiederholen", got[0].Description)
	}

	short := "Mathematik - Lehrkraft: Herr Weber " + noise + " Hausaufgabe: ok Zu Erledigen bis: 14.03.2025"
	if got := Extract(short, "doc"); len(got) != 0 {
		t.Fatalf("short description must still be dropped, got %+v", got)
	}
}

func TestExtract_NonBreakingSpaceRunCollapsed(t *testing.T) {
	text := "Deutsch - Lehrkraft: Frau\u00a0\u00a0Braun Hausaufgabe: Gedicht auswendig lernen Zu Erledigen bis: 12.03.2025"
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Teacher != "Frau Braun" {
		t.Fatalf("teacher = %q, want non-breaking spaces collapsed", got[0].Teacher)
	}
}

func TestExtract_AttributesToNearestPrecedingHeader(t *testing.T) {
	text := `Deutsch - Lehrkraft: Frau Braun Hausaufgabe: Aufsatz schreiben
Mathematik - Lehrkraft: Herr Weber Hausaufgabe: Arbeitsblatt rechnen Zu Erledigen bis: 14.03.2025`
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Subject != "Mathematik" {
		t.Fatalf("attributed to %q, want the nearer Mathematik header", got[0].Subject)
	}
}

func TestExtract_SiblingDueDatesShareHeader(t *testing.T) {
	text := `Mathematik - Lehrkraft: Herr Weber Hausaufgabe: Buch Seite 12 lesen Zu Erledigen bis: 11.03.2025 dazu Aufgaben rechnen Zu Erledigen bis: 12.03.2025`
	got := Extract(text, "doc")
	if len(got) != 2 {
		t.Fatalf("expected 2 records under one header, got %d", len(got))
	}
	for _, r := range got {
		if r.Subject != "Mathematik" || r.Teacher != "Herr Weber" {
			t.Fatalf("both records must carry the shared header context, got %+v", r)
		}
	}
}

func TestExtract_PlaceholderHeaderRejected(t *testing.T) {
	text := `Keine Hausaufgabe eingetragen - Lehrkraft: Frau Kunz Hausaufgabe: irgendwas steht hier Zu Erledigen bis: 14.03.2025`
	got := Extract(text, "doc")
	if len(got) != 0 {
		t.Fatalf("placeholder header must not anchor records, got %+v", got)
	}
}

func TestExtract_ShortDescriptionDropped(t *testing.T) {
	text := `Mathematik - Lehrkraft: Herr Weber Hausaufgabe: ok Zu Erledigen bis: 14.03.2025`
	got := Extract(text, "doc")
	if len(got) != 0 {
		t.Fatalf("descriptions of <= 2 characters must be dropped, got %+v", got)
	}
}

func TestExtract_NeverEmitsDegenerateDescriptions(t *testing.T) {
	for _, r := range Extract(sampleText, "doc") {
		if len([]rune(r.Description)) <= 2 {
			t.Fatalf("record with degenerate description emitted: %+v", r)
		}
	}
}

func TestExtract_SubjectFallback(t *testing.T) {
	text := `Werken und Gestalten - Lehrkraft: Frau Huber Hausaufgabe: Vogelhaus fertig bauen Zu Erledigen bis: 20.03.2025`
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Subject != "Werken und Gestalten" {
		t.Fatalf("unknown subject must pass through verbatim, got %q", got[0].Subject)
	}
}

func TestExtract_StripsRosterBoilerplate(t *testing.T) {
	text := `Mathematik - Lehrkraft: Herr Weber Hausaufgabe: Seite 9 wiederholen Klassenbuch der Klasse 7a vom Montag, den 10.03.2025 Zu Erledigen bis: 14.03.2025`
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Description != "Seite 9 wiederholen" {
		t.Fatalf("roster boilerplate not stripped: %q", got[0].Description)
	}
}

func TestExtract_MissingLessonContentIsEmpty(t *testing.T) {
	text := `Mathematik - Lehrkraft: Herr Weber Hausaufgabe: Arbeitsblatt fertig rechnen Zu Erledigen bis: 14.03.2025`
	got := Extract(text, "doc")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].LessonContent != "" {
		t.Fatalf("lesson content should be empty, got %q", got[0].LessonContent)
	}
}

func TestExtract_IDsAreUnique(t *testing.T) {
	got := Extract(sampleText, "doc")
	seen := map[string]bool{}
	for _, r := range got {
		if r.ID == "" {
			t.Fatal("record without id")
		}
		if !strings.HasPrefix(r.ID, r.Subject+"-") {
			t.Errorf("id %q does not start with subject prefix", r.ID)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
	}
}
