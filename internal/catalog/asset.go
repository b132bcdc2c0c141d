package catalog

import (
	"errors"
	"time"

	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
)

var (
	ErrNotFound            = errors.New("asset not found")
	ErrInvalidID           = errors.New("invalid asset id")
	ErrDuplicateExternalID = errors.New("asset with this external id already exists")
	ErrNoMediaURL          = errors.New("no media url could be determined")
	ErrOwnerRequired       = errors.New("owning user is required")
	ErrUnknownOwner        = errors.New("owning user does not exist")
)

// MediaKind is the catalog's media classification.
type MediaKind string

const (
	MediaPhoto MediaKind = "PHOTO"
	MediaVideo MediaKind = "VIDEO"
	MediaAudio MediaKind = "AUDIO"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaPhoto, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// ResourceKind maps a media kind back to the DAM resource type that stores it.
// Audio lives under the provider's video type.
func (k MediaKind) ResourceKind() cloudinary.ResourceKind {
	if k == MediaVideo || k == MediaAudio {
		return cloudinary.KindVideo
	}
	return cloudinary.KindImage
}

// Asset is one row of the catalog.
type Asset struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MediaKind  MediaKind `json:"media_type"`
	MediaURL   string    `json:"media_url"`
	ExternalID *string   `json:"external_id"`
	Folder     *string   `json:"folder"`
	Caption    *string   `json:"caption"`
	Country    *string   `json:"country"`
	City       *string   `json:"city"`
	Lat        *float64  `json:"lat"`
	Lng        *float64  `json:"lng"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Enrichment carries metadata learned after (or independently of) the first
// write. Nil fields are unknown.
type Enrichment struct {
	CapturedAt *time.Time
	Lat        *float64
	Lng        *float64
}

// PlaceCount is one (country, city) bucket of the catalog.
type PlaceCount struct {
	Country string
	City    string
	Count   int
}
