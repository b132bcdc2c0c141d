package cloudinary

import (
	"fmt"
	"strings"
	"time"
)

// ResourceKind is Cloudinary's resource_type. Audio files are stored as video.
type ResourceKind string

const (
	KindImage ResourceKind = "image"
	KindVideo ResourceKind = "video"
	KindRaw   ResourceKind = "raw"
)

// Resource is one entry of a search or listing response.
type Resource struct {
	PublicID     string `json:"public_id"`
	AssetFolder  string `json:"asset_folder"`
	Folder       string `json:"folder"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	SecureURL    string `json:"secure_url"`
	URL          string `json:"url"`
	CreatedAt    string `json:"created_at"`
	Bytes        int64  `json:"bytes"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Created returns the provider's upload time when it parses.
func (r Resource) Created() (time.Time, bool) {
	if r.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ResourcePage is one page of a listing. NextCursor is empty on the last page.
type ResourcePage struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"next_cursor"`
	TotalCount int        `json:"total_count"`
}

// ResourceDetails is the single-resource response requested with
// media_metadata=true.
type ResourceDetails struct {
	Resource
	ImageMetadata map[string]any `json:"image_metadata"`
	VideoMetadata struct {
		Format struct {
			Tags map[string]any `json:"tags"`
		} `json:"format"`
	} `json:"video_metadata"`
}

// Tags merges image EXIF fields and video container tags into one string map.
func (d ResourceDetails) Tags() map[string]string {
	out := make(map[string]string, len(d.ImageMetadata)+len(d.VideoMetadata.Format.Tags))
	for k, v := range d.ImageMetadata {
		out[k] = stringify(v)
	}
	for k, v := range d.VideoMetadata.Format.Tags {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

type folderEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type folderPage struct {
	Folders    []folderEntry `json:"folders"`
	NextCursor string        `json:"next_cursor"`
}

type searchRequest struct {
	Expression string              `json:"expression"`
	MaxResults int                 `json:"max_results"`
	NextCursor string              `json:"next_cursor,omitempty"`
	SortBy     []map[string]string `json:"sort_by,omitempty"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudinary: status %d: %s", e.Status, e.Message)
}

// Temporary reports whether retrying later could help.
func (e *APIError) Temporary() bool {
	return e.Status == 429 || e.Status >= 500
}

// DeliveryURL builds the public HTTPS URL of an uploaded resource without any
// network call. The format extension is omitted when unknown.
func DeliveryURL(cloudName string, kind ResourceKind, publicID, format string) string {
	if cloudName == "" || publicID == "" {
		return ""
	}
	if kind == "" {
		kind = KindImage
	}
	u := fmt.Sprintf("https://res.cloudinary.com/%s/%s/upload/%s", cloudName, kind, publicID)
	if format != "" {
		u += "." + format
	}
	return u
}

// SecureURL upgrades a plain http delivery URL to https.
func SecureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
