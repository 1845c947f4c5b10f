package inventory

import (
	"testing"

	"recruiting-console/internal/talenthub"
)

func TestReplaceIsWholesale(t *testing.T) {
	s := NewStore()
	s.Replace("u", talenthub.KindCV, []Summary{{ID: "cv-1"}, {ID: "cv-2"}})
	s.Replace("u", talenthub.KindCV, []Summary{{ID: "cv-3"}})

	docs := s.Snapshot("u", talenthub.KindCV)
	if len(docs) != 1 || docs[0].ID != "cv-3" {
		t.Fatalf("expected only cv-3, got %v", docs)
	}
}

func TestRemoveDropsOneDocument(t *testing.T) {
	s := NewStore()
	s.Replace("u", talenthub.KindCV, []Summary{{ID: "cv-1"}, {ID: "cv-2"}, {ID: "cv-3"}})
	s.Remove("u", talenthub.KindCV, "cv-2")

	ids := s.IDs("u", talenthub.KindCV)
	if len(ids) != 2 {
		t.Fatalf("expected 2 docs, got %v", ids)
	}
	if _, ok := ids["cv-2"]; ok {
		t.Fatal("cv-2 should be gone")
	}

	// removing an unknown id is a no-op
	s.Remove("u", talenthub.KindCV, "ghost")
	if len(s.IDs("u", talenthub.KindCV)) != 2 {
		t.Fatal("no-op remove changed the mirror")
	}
}

func TestUpsertReplacesOrAppends(t *testing.T) {
	s := NewStore()
	s.Upsert("u", talenthub.KindJD, Summary{ID: "jd-1", DisplayName: "old"})
	s.Upsert("u", talenthub.KindJD, Summary{ID: "jd-1", DisplayName: "new"})
	s.Upsert("u", talenthub.KindJD, Summary{ID: "jd-2"})

	docs := s.Snapshot("u", talenthub.KindJD)
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].DisplayName != "new" {
		t.Fatalf("expected replaced doc, got %q", docs[0].DisplayName)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Replace("u", talenthub.KindCV, []Summary{{ID: "cv-1", DisplayName: "original"}})

	docs := s.Snapshot("u", talenthub.KindCV)
	docs[0].DisplayName = "mutated"

	if s.Snapshot("u", talenthub.KindCV)[0].DisplayName != "original" {
		t.Fatal("snapshot mutation leaked into the mirror")
	}
}

func TestKindsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Replace("u", talenthub.KindCV, []Summary{{ID: "cv-1"}})
	s.Replace("u", talenthub.KindJD, []Summary{{ID: "jd-1"}})
	s.Replace("u", talenthub.KindCV, nil)

	if len(s.Snapshot("u", talenthub.KindJD)) != 1 {
		t.Fatal("jd mirror affected by cv replace")
	}
}
