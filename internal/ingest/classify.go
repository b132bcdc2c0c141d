package ingest

import (
	"strings"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
)

// Audio uploads are stored under the provider's video type and told apart by
// their format.
var audioFormats = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"wav":  true,
	"aac":  true,
	"ogg":  true,
	"flac": true,
	"opus": true,
}

// Classify maps a provider resource type and format to a catalog media kind.
func Classify(resourceType, format string) catalog.MediaKind {
	switch cloudinary.ResourceKind(strings.ToLower(resourceType)) {
	case cloudinary.KindImage:
		return catalog.MediaPhoto
	case cloudinary.KindVideo:
		if audioFormats[strings.ToLower(format)] {
			return catalog.MediaAudio
		}
		return catalog.MediaVideo
	}
	return catalog.MediaPhoto
}

// FolderOf returns the folder a resource lives in: the explicit asset folder,
// then the legacy folder field, then the public id up to its last slash.
func FolderOf(r cloudinary.Resource) string {
	if f := normalizeFolder(r.AssetFolder); f != "" {
		return f
	}
	if f := normalizeFolder(r.Folder); f != "" {
		return f
	}
	if i := strings.LastIndex(r.PublicID, "/"); i > 0 {
		return normalizeFolder(r.PublicID[:i])
	}
	return ""
}

// PlaceOf reads country and city from the second and third non-empty
// segments of a folder path, as in "travel/Vietnam/Hanoi".
func PlaceOf(folder string) (country, city *string) {
	var segments []string
	for _, s := range strings.Split(folder, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 1 {
		country = &segments[1]
	}
	if len(segments) > 2 {
		city = &segments[2]
	}
	return country, city
}

func normalizeFolder(p string) string {
	return strings.TrimRight(strings.TrimSpace(p), "/")
}

// mediaURL prefers the provider's delivery URLs and falls back to building
// one from the public id.
func mediaURL(cloudName string, kind cloudinary.ResourceKind, r cloudinary.Resource) string {
	if r.SecureURL != "" {
		return cloudinary.SecureURL(r.SecureURL)
	}
	if r.URL != "" {
		return cloudinary.SecureURL(r.URL)
	}
	return cloudinary.DeliveryURL(cloudName, kind, r.PublicID, r.Format)
}
