package catalog

import (
	"context"
	"fmt"
	"strings"
)

// WriteResult reports the outcome of an idempotent write. Inserted is false
// when a row with the same external id already existed.
type WriteResult struct {
	ID       string
	Inserted bool
}

// Writer performs the per-resource upsert used by imports.
type Writer struct {
	repo Repository
}

func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// Upsert inserts a unless an asset with the same external id exists. The
// existing row is left untouched.
func (w *Writer) Upsert(ctx context.Context, a Asset) (WriteResult, error) {
	a.MediaURL = strings.TrimSpace(a.MediaURL)
	if a.MediaURL == "" {
		return WriteResult{}, ErrNoMediaURL
	}
	if a.UserID == "" {
		return WriteResult{}, ErrOwnerRequired
	}
	normalize(&a)

	inserted, err := w.repo.InsertIfAbsent(ctx, &a)
	if err != nil {
		return WriteResult{}, fmt.Errorf("insert asset: %w", err)
	}
	return WriteResult{ID: a.ID, Inserted: inserted}, nil
}

// Repair fills in enrichment for an already imported asset whose coordinates
// are still unknown. It reports whether a row changed.
func (w *Writer) Repair(ctx context.Context, externalID string, e Enrichment) (bool, error) {
	if externalID == "" || (e.CapturedAt == nil && (e.Lat == nil || e.Lng == nil)) {
		return false, nil
	}
	if e.Lat == nil || e.Lng == nil {
		e.Lat, e.Lng = nil, nil
	}
	changed, err := w.repo.Repair(ctx, externalID, e)
	if err != nil {
		return false, fmt.Errorf("repair asset %s: %w", externalID, err)
	}
	return changed, nil
}

// normalize trims optional text and turns blanks into nulls so that place
// filters compare exact values.
func normalize(a *Asset) {
	a.ExternalID = trimOrNil(a.ExternalID)
	a.Folder = trimOrNil(a.Folder)
	a.Caption = trimOrNil(a.Caption)
	a.Country = trimOrNil(a.Country)
	a.City = trimOrNil(a.City)
	if a.Lat == nil || a.Lng == nil {
		a.Lat, a.Lng = nil, nil
	}
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
