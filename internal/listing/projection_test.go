package listing

import (
	"testing"
	"time"

	"recruiting-console/internal/inventory"
)

func sampleDocs() []inventory.Summary {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []inventory.Summary{
		{ID: "cv-1", DisplayName: "Alice Nguyen", Category: "Engineering", ExperienceYears: 7, NotesCount: 2, UploadedAt: base},
		{ID: "cv-2", DisplayName: "Bob Marsh", Category: "Sales", ExperienceYears: 3, UploadedAt: base.Add(48 * time.Hour)},
		{ID: "cv-3", DisplayName: "Carla Diaz", Category: "Engineering", ExperienceYears: 12, NotesCount: 1, UploadedAt: base.Add(24 * time.Hour)},
		{ID: "cv-4", DisplayName: "dan alvarez", Category: "General", ExperienceYears: 1, UploadedAt: base.Add(72 * time.Hour)},
	}
}

func ids(items []inventory.Summary) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplySearchCaseInsensitive(t *testing.T) {
	page := Apply(sampleDocs(), Query{Search: "AL"})
	if !equal(ids(page.Items), []string{"cv-1", "cv-4"}) {
		t.Fatalf("expected alice and dan, got %v", ids(page.Items))
	}
}

func TestApplyCategoryAndNotesFilters(t *testing.T) {
	page := Apply(sampleDocs(), Query{Category: "Engineering"})
	if page.Total != 2 {
		t.Fatalf("expected 2 engineering docs, got %d", page.Total)
	}

	page = Apply(sampleDocs(), Query{NotesOnly: true})
	if !equal(ids(page.Items), []string{"cv-1", "cv-3"}) {
		t.Fatalf("expected only docs with notes, got %v", ids(page.Items))
	}
}

func TestApplySortOrders(t *testing.T) {
	page := Apply(sampleDocs(), Query{Sort: SortExperience})
	if !equal(ids(page.Items), []string{"cv-3", "cv-1", "cv-2", "cv-4"}) {
		t.Fatalf("unexpected experience order: %v", ids(page.Items))
	}

	page = Apply(sampleDocs(), Query{Sort: SortUploaded})
	if !equal(ids(page.Items), []string{"cv-4", "cv-2", "cv-3", "cv-1"}) {
		t.Fatalf("unexpected uploaded order: %v", ids(page.Items))
	}

	page = Apply(sampleDocs(), Query{Sort: SortName})
	if !equal(ids(page.Items), []string{"cv-1", "cv-2", "cv-3", "cv-4"}) {
		t.Fatalf("unexpected name order: %v", ids(page.Items))
	}
}

func TestApplyPaginationClamps(t *testing.T) {
	page := Apply(sampleDocs(), Query{Page: 2, PageSize: 3})
	if page.TotalPages != 2 || len(page.Items) != 1 {
		t.Fatalf("expected last page with 1 item, got pages=%d items=%d", page.TotalPages, len(page.Items))
	}

	// out-of-range page clamps to the last page instead of returning empty
	page = Apply(sampleDocs(), Query{Page: 99, PageSize: 3})
	if page.Page != 2 || len(page.Items) != 1 {
		t.Fatalf("expected clamp to page 2, got page=%d items=%d", page.Page, len(page.Items))
	}

	page = Apply(sampleDocs(), Query{Page: -1})
	if page.Page != 1 {
		t.Fatalf("expected clamp to page 1, got %d", page.Page)
	}
}

func TestApplyEmptyInput(t *testing.T) {
	page := Apply(nil, Query{})
	if page.Total != 0 || page.TotalPages != 1 || len(page.Items) != 0 {
		t.Fatalf("unexpected empty projection: %+v", page)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	docs := sampleDocs()
	Apply(docs, Query{Sort: SortExperience})
	if docs[0].ID != "cv-1" {
		t.Fatalf("input slice was reordered, first id %s", docs[0].ID)
	}
}
