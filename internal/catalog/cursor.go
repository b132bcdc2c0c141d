package catalog

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const cursorVersion = 1

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position of a row in (created_at, id) order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type cursorData struct {
	V  int    `json:"v"`
	T  string `json:"t"`
	ID string `json:"id"`
}

// CursorFor returns the position of a.
func CursorFor(a Asset) Cursor {
	return Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
}

// EncodeCursor encodes c as unpadded base64url JSON.
func EncodeCursor(c Cursor) string {
	b, _ := json.Marshal(cursorData{
		V:  cursorVersion,
		T:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID: c.ID,
	})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor is the strict inverse of EncodeCursor. Every failure wraps
// ErrInvalidCursor.
func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", ErrInvalidCursor)
	}

	var d cursorData
	if err := json.Unmarshal(raw, &d); err != nil {
		return Cursor{}, fmt.Errorf("%w: not a cursor record", ErrInvalidCursor)
	}
	if d.V != cursorVersion {
		return Cursor{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidCursor, d.V)
	}

	t, err := time.Parse(time.RFC3339Nano, d.T)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad id", ErrInvalidCursor)
	}
	return Cursor{CreatedAt: t.UTC(), ID: id.String()}, nil
}
