package inventory

import (
	"context"
	"errors"
	"fmt"

	"recruiting-console/internal/shared/telemetry"
	"recruiting-console/internal/talenthub"
)

// Reconciler is notified after every mirror mutation so dependent state can
// drop references to documents that no longer exist.
type Reconciler interface {
	Reconcile(owner string, kind talenthub.Kind, live map[string]struct{})
}

// Service keeps the local mirrors in sync with the hub.
type Service struct {
	Hub         talenthub.Client
	Store       *Store
	Reconcilers []Reconciler
}

// Refresh pulls the full list for owner+kind and swaps the mirror. A failed
// fetch leaves the previous mirror untouched.
func (s *Service) Refresh(ctx context.Context, owner string, kind talenthub.Kind) ([]Summary, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	docs, err := s.Hub.ListDocuments(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("refresh %s inventory: %w", kind, err)
	}

	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, FromHub(doc))
	}
	s.Store.Replace(owner, kind, summaries)
	s.reconcile(owner, kind)

	telemetry.Info("inventory.refreshed", map[string]any{
		"owner": owner,
		"kind":  string(kind),
		"count": len(summaries),
	})
	return summaries, nil
}

// Delete removes a document server-side, then optimistically from the mirror.
func (s *Service) Delete(ctx context.Context, owner string, kind talenthub.Kind, id string) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if _, ok := s.Store.IDs(owner, kind)[id]; !ok {
		return ErrNotFound
	}
	if err := s.Hub.DeleteDocument(ctx, kind, id); err != nil {
		return err
	}
	s.Store.Remove(owner, kind, id)
	s.reconcile(owner, kind)
	return nil
}

// DeleteAll removes every mirrored document of the kind. Partial failures
// stop the loop; a refresh then converges the mirror with the hub.
func (s *Service) DeleteAll(ctx context.Context, owner string, kind talenthub.Kind) (int, error) {
	if !kind.Valid() {
		return 0, ErrUnknownKind
	}
	deleted := 0
	for _, doc := range s.Store.Snapshot(owner, kind) {
		if err := s.Hub.DeleteDocument(ctx, kind, doc.ID); err != nil {
			if _, refreshErr := s.Refresh(ctx, owner, kind); refreshErr != nil {
				telemetry.Error("inventory.delete_all.refresh_failed", map[string]any{
					"owner": owner,
					"kind":  string(kind),
					"error": refreshErr.Error(),
				})
			}
			return deleted, err
		}
		s.Store.Remove(owner, kind, doc.ID)
		deleted++
	}
	s.reconcile(owner, kind)
	return deleted, nil
}

// Reprocess asks the hub to re-extract a document, then refreshes the mirror
// so the updated summary lands locally. A failed refresh keeps the stale
// entry visible rather than dropping it.
func (s *Service) Reprocess(ctx context.Context, owner string, kind talenthub.Kind, id string) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if _, ok := s.Store.IDs(owner, kind)[id]; !ok {
		return ErrNotFound
	}
	if err := s.Hub.ReprocessDocument(ctx, kind, id); err != nil {
		return err
	}
	if _, err := s.Refresh(ctx, owner, kind); err != nil {
		telemetry.Error("inventory.reprocess.refresh_failed", map[string]any{
			"owner": owner,
			"kind":  string(kind),
			"id":    id,
			"error": err.Error(),
		})
	}
	return nil
}

// CategoryDocuments proxies the hub's category drill-in listing.
func (s *Service) CategoryDocuments(ctx context.Context, category string) ([]Summary, error) {
	if category == "" {
		return nil, errors.New("category is required")
	}
	docs, err := s.Hub.ListDocumentsInCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, FromHub(doc))
	}
	return out, nil
}

func (s *Service) reconcile(owner string, kind talenthub.Kind) {
	live := s.Store.IDs(owner, kind)
	for _, r := range s.Reconcilers {
		r.Reconcile(owner, kind, live)
	}
}
