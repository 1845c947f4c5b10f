package talenthub

import (
	"testing"
	"time"
)

func TestResolveCategoryPrecedence(t *testing.T) {
	cases := []struct {
		name       string
		candidate  string
		structured string
		flat       string
		want       string
	}{
		{"candidate wins", "Engineering", "Sales", "Support", "Engineering"},
		{"structured next", "", "Sales", "Support", "Sales"},
		{"flat next", "", "", "Support", "Support"},
		{"default last", "", "", "", "General"},
		{"whitespace is empty", "  ", "\t", " Support ", "Support"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCategory(tc.candidate, tc.structured, tc.flat)
			if got != tc.want {
				t.Fatalf("ResolveCategory(%q,%q,%q) = %q, want %q", tc.candidate, tc.structured, tc.flat, got, tc.want)
			}
		})
	}
}

func TestDecodeDocumentNestedCandidateShape(t *testing.T) {
	payload := map[string]any{
		"id": "cv-1",
		"candidate": map[string]any{
			"name":             "Alice Nguyen",
			"category":         "Engineering",
			"experience_years": 7.5,
		},
		"structured_info": map[string]any{
			"category": "ignored",
			"skills":   []any{"go", "sql", "k8s"},
		},
		"category":    "also ignored",
		"notes_count": 2,
		"upload_date": "2025-06-01T10:00:00Z",
	}

	doc, err := DecodeDocument(KindCV, payload)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.DisplayName != "Alice Nguyen" {
		t.Fatalf("unexpected name %q", doc.DisplayName)
	}
	if doc.Category != "Engineering" {
		t.Fatalf("candidate category must win, got %q", doc.Category)
	}
	if doc.ExperienceYears != 7.5 {
		t.Fatalf("unexpected experience %v", doc.ExperienceYears)
	}
	if doc.SkillsCount != 3 {
		t.Fatalf("unexpected skills count %d", doc.SkillsCount)
	}
	if doc.NotesCount != 2 {
		t.Fatalf("unexpected notes count %d", doc.NotesCount)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !doc.UploadedAt.Equal(want) {
		t.Fatalf("unexpected upload date %v", doc.UploadedAt)
	}
}

func TestDecodeDocumentFlatShapeWithWeakTypes(t *testing.T) {
	// numbers arrive as strings in the oldest payloads
	payload := map[string]any{
		"id":               "jd-1",
		"title":            "Backend Engineer",
		"experience_years": "3",
		"skills_count":     "4",
		"upload_date":      "2025-05-20",
	}

	doc, err := DecodeDocument(KindJD, payload)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.DisplayName != "Backend Engineer" {
		t.Fatalf("unexpected name %q", doc.DisplayName)
	}
	if doc.Category != "General" {
		t.Fatalf("expected default category, got %q", doc.Category)
	}
	if doc.ExperienceYears != 3 || doc.SkillsCount != 4 {
		t.Fatalf("weak typing failed: %v %d", doc.ExperienceYears, doc.SkillsCount)
	}
	if doc.UploadedAt.IsZero() {
		t.Fatal("expected parsed date-only upload date")
	}
}

func TestDecodeDocumentMissingID(t *testing.T) {
	if _, err := DecodeDocument(KindCV, map[string]any{"name": "nameless"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestDecodeDocumentFallsBackToIDForName(t *testing.T) {
	doc, err := DecodeDocument(KindCV, map[string]any{"id": "cv-9"})
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.DisplayName != "cv-9" {
		t.Fatalf("expected id fallback, got %q", doc.DisplayName)
	}
}
