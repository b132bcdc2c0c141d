package mediameta

import "time"

// Metadata is what enrichment can learn about a resource. Nil fields are
// unknown.
type Metadata struct {
	CapturedAt *time.Time
	Lat        *float64
	Lng        *float64
}

// HasCoordinates reports whether both coordinates are known.
func (m Metadata) HasCoordinates() bool {
	return m.Lat != nil && m.Lng != nil
}

// IsZero reports whether nothing was learned.
func (m Metadata) IsZero() bool {
	return m.CapturedAt == nil && m.Lat == nil && m.Lng == nil
}

var (
	photoTimeKeys   = []string{"DateTimeOriginal", "CreateDate", "ModifyDate"}
	photoOffsetKeys = []string{"OffsetTimeOriginal", "OffsetTimeDigitized", "OffsetTime"}
	videoTimeKeys   = []string{"creation_time", "com.apple.quicktime.creationdate", "CreationDate", "MediaCreateDate", "CreateDate"}
)

// FromPhoto extracts capture time and GPS position from an image metadata
// map. Coordinates are only reported when both axes parse.
func FromPhoto(tags map[string]string) Metadata {
	var out Metadata

	offset := firstNonEmpty(tags, photoOffsetKeys)
	for _, key := range photoTimeKeys {
		if t, ok := ParseShotDate(tags[key], offset); ok {
			out.CapturedAt = &t
			break
		}
	}

	lat, latOK := ParseLatitude(tags["GPSLatitude"])
	lng, lngOK := ParseLongitude(tags["GPSLongitude"])
	if latOK && lngOK {
		out.Lat = &lat
		out.Lng = &lng
	}
	return out
}

// FromVideo extracts the capture time of a video or audio container. Position
// is not attempted.
func FromVideo(tags map[string]string) Metadata {
	var out Metadata
	for _, key := range videoTimeKeys {
		if t, ok := ParseShotDate(tags[key], ""); ok {
			out.CapturedAt = &t
			break
		}
	}
	return out
}

func firstNonEmpty(tags map[string]string, keys []string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
