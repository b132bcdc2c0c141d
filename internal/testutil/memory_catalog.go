package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Randallflagg19/travel/internal/catalog"
)

// MemoryCatalog is an in-memory catalog.Repository with the same uniqueness
// and ordering rules as the Postgres table.
type MemoryCatalog struct {
	mu   sync.Mutex
	rows []catalog.Asset
	Now  func() time.Time
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{Now: func() time.Time { return time.Now().UTC() }}
}

var _ catalog.Repository = (*MemoryCatalog)(nil)

// Seed stores rows as given, generating ids where missing.
func (m *MemoryCatalog) Seed(rows ...catalog.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range rows {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = a.CreatedAt
		}
		m.rows = append(m.rows, a)
	}
}

// All returns a snapshot of every row in insertion order.
func (m *MemoryCatalog) All() []catalog.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]catalog.Asset(nil), m.rows...)
}

func (m *MemoryCatalog) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MemoryCatalog) indexByExternalID(externalID string) int {
	for i, r := range m.rows {
		if r.ExternalID != nil && *r.ExternalID == externalID {
			return i
		}
	}
	return -1
}

func (m *MemoryCatalog) insertLocked(a *catalog.Asset) {
	now := m.Now()
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	m.rows = append(m.rows, *a)
}

func (m *MemoryCatalog) Insert(_ context.Context, a *catalog.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ExternalID != nil && m.indexByExternalID(*a.ExternalID) >= 0 {
		return catalog.ErrDuplicateExternalID
	}
	m.insertLocked(a)
	return nil
}

func (m *MemoryCatalog) InsertIfAbsent(_ context.Context, a *catalog.Asset) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ExternalID != nil && m.indexByExternalID(*a.ExternalID) >= 0 {
		return false, nil
	}
	m.insertLocked(a)
	return true, nil
}

func (m *MemoryCatalog) Repair(_ context.Context, externalID string, e catalog.Enrichment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexByExternalID(externalID)
	if i < 0 || m.rows[i].Lat != nil {
		return false, nil
	}
	row := &m.rows[i]
	hasCoords := e.Lat != nil && e.Lng != nil
	newTime := e.CapturedAt != nil && !e.CapturedAt.Equal(row.CreatedAt)
	if !hasCoords && !newTime {
		return false, nil
	}
	if hasCoords {
		lat, lng := *e.Lat, *e.Lng
		row.Lat, row.Lng = &lat, &lng
	}
	if e.CapturedAt != nil {
		row.CreatedAt = e.CapturedAt.UTC()
	}
	row.UpdatedAt = m.Now()
	return true, nil
}

func (m *MemoryCatalog) GetByID(_ context.Context, id string) (catalog.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return catalog.Asset{}, catalog.ErrNotFound
}

func (m *MemoryCatalog) Delete(_ context.Context, id string) (catalog.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return r, nil
		}
	}
	return catalog.Asset{}, catalog.ErrNotFound
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func matches(f catalog.Filter, a catalog.Asset) bool {
	switch f.Kind {
	case catalog.FilterPlace:
		return a.Country != nil && a.City != nil && *a.Country == f.Country && *a.City == f.City
	case catalog.FilterUnknown:
		return blank(a.Country) || blank(a.City)
	}
	return true
}

// compare orders a against c by created_at, then by id. Lowercase uuid
// strings sort the same way Postgres sorts uuid values.
func compare(a catalog.Asset, c catalog.Cursor) int {
	switch {
	case a.CreatedAt.Before(c.CreatedAt):
		return -1
	case a.CreatedAt.After(c.CreatedAt):
		return 1
	}
	return strings.Compare(strings.ToLower(a.ID), strings.ToLower(c.ID))
}

func (m *MemoryCatalog) ListPage(_ context.Context, q catalog.PageQuery) ([]catalog.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []catalog.Asset
	for _, r := range m.rows {
		if !matches(q.Filter, r) {
			continue
		}
		if q.After != nil {
			c := compare(r, *q.After)
			if (q.Desc && c >= 0) || (!q.Desc && c <= 0) {
				continue
			}
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		c := compare(out[i], catalog.CursorFor(out[j]))
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryCatalog) Places(_ context.Context) ([]catalog.PlaceCount, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct{ country, city string }
	counts := make(map[key]int)
	var order []key
	unknown := 0
	for _, r := range m.rows {
		if blank(r.Country) || blank(r.City) {
			unknown++
			continue
		}
		k := key{strings.TrimSpace(*r.Country), strings.TrimSpace(*r.City)}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]catalog.PlaceCount, 0, len(order))
	for _, k := range order {
		out = append(out, catalog.PlaceCount{Country: k.country, City: k.city, Count: counts[k]})
	}
	return out, unknown, nil
}
