package mediameta

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"north", `13 deg 44' 12.34" N`, 13.7367611, true},
		{"south is negative", `33 deg 52' 4.00" S`, -33.8677778, true},
		{"west is negative", `122 deg 25' 9.60" W`, -122.4193333, true},
		{"east", `100 deg 30' 0.00" E`, 100.5, true},
		{"lowercase hemisphere", `1 deg 0' 0" e`, 1, true},
		{"surrounding space", `  10 deg 0' 0" N `, 10, true},
		{"decimal string", "13.7367", 0, false},
		{"empty", "", 0, false},
		{"missing hemisphere", `13 deg 44' 12.34"`, 0, false},
		{"minutes out of range", `13 deg 61' 0" N`, 0, false},
		{"latitude above 90", `91 deg 0' 0" N`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCoordinate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-7)
			}
		})
	}
}

func TestParseCoordinate_RoundTrip(t *testing.T) {
	for _, v := range []float64{0.5, 13.7367611, 45.1234567, 89.9999999, 179.25} {
		for _, hemi := range []string{"N", "S", "E", "W"} {
			if v > 90 && (hemi == "N" || hemi == "S") {
				continue
			}
			deg := math.Floor(v)
			minutes := math.Floor((v - deg) * 60)
			seconds := ((v-deg)*60 - minutes) * 60
			s := fmt.Sprintf(`%.0f deg %.0f' %.6f" %s`, deg, minutes, seconds, hemi)

			got, ok := ParseCoordinate(s)
			require.True(t, ok, s)

			want := v
			if hemi == "S" || hemi == "W" {
				want = -v
			}
			assert.InDelta(t, want, got, 1e-7, s)
			assert.Equal(t, math.Round(got*1e7)/1e7, got, "rounded to 7 places")
		}
	}
}

func TestParseShotDate(t *testing.T) {
	tests := []struct {
		name   string
		local  string
		offset string
		want   time.Time
		ok     bool
	}{
		{"positive offset", "2026:01:19 13:18:00", "+07:00", time.Date(2026, 1, 19, 6, 18, 0, 0, time.UTC), true},
		{"negative offset", "2026:01:19 13:18:00", "-05:00", time.Date(2026, 1, 19, 18, 18, 0, 0, time.UTC), true},
		{"no offset is utc", "2026:01:19 13:18:00", "", time.Date(2026, 1, 19, 13, 18, 0, 0, time.UTC), true},
		{"dashed date", "2026-01-19 13:18:00", "+00:00", time.Date(2026, 1, 19, 13, 18, 0, 0, time.UTC), true},
		{"utc prefix", "UTC 2026:01:19 13:18:00", "", time.Date(2026, 1, 19, 13, 18, 0, 0, time.UTC), true},
		{"offset crosses day", "2026:01:01 02:00:00", "+03:00", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), true},
		{"iso container value", "2024-06-02T10:11:12.000000Z", "", time.Date(2024, 6, 2, 10, 11, 12, 0, time.UTC), true},
		{"embedded offset", "2024-06-02T17:11:12+0700", "", time.Date(2024, 6, 2, 10, 11, 12, 0, time.UTC), true},
		{"separate offset wins", "2024-06-02T17:11:12+0700", "+02:00", time.Date(2024, 6, 2, 15, 11, 12, 0, time.UTC), true},
		{"malformed offset ignored", "2026:01:19 13:18:00", "seven", time.Date(2026, 1, 19, 13, 18, 0, 0, time.UTC), true},
		{"zero exif date", "0000:00:00 00:00:00", "", time.Time{}, false},
		{"impossible day", "2026:02:30 10:00:00", "", time.Time{}, false},
		{"hour out of range", "2026:01:19 25:00:00", "", time.Time{}, false},
		{"garbage", "yesterday", "+07:00", time.Time{}, false},
		{"empty", "", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseShotDate(tt.local, tt.offset)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestParseLatitudeLongitude(t *testing.T) {
	lat, ok := ParseLatitude(`33 deg 52' 4.00" s`)
	require.True(t, ok)
	assert.InDelta(t, -33.8677778, lat, 1e-7)

	_, ok = ParseLatitude(`120 deg 0' 0.00" E`)
	assert.False(t, ok)

	lng, ok := ParseLongitude(`151 deg 12' 36.00" E`)
	require.True(t, ok)
	assert.InDelta(t, 151.21, lng, 1e-7)

	_, ok = ParseLongitude(`45 deg 0' 0.00" N`)
	assert.False(t, ok)
}

func TestFromPhoto(t *testing.T) {
	t.Run("preference order and gps", func(t *testing.T) {
		m := FromPhoto(map[string]string{
			"DateTimeOriginal":   "",
			"CreateDate":         "2025:03:04 10:00:00",
			"ModifyDate":         "2025:03:05 10:00:00",
			"OffsetTime":         "+01:00",
			"OffsetTimeOriginal": "+07:00",
			"GPSLatitude":        `13 deg 44' 12.34" N`,
			"GPSLongitude":       `100 deg 30' 0.00" E`,
		})
		require.NotNil(t, m.CapturedAt)
		assert.Equal(t, time.Date(2025, 3, 4, 3, 0, 0, 0, time.UTC), *m.CapturedAt)
		require.True(t, m.HasCoordinates())
		assert.InDelta(t, 13.7367611, *m.Lat, 1e-7)
		assert.InDelta(t, 100.5, *m.Lng, 1e-7)
	})

	t.Run("falls through unparseable keys", func(t *testing.T) {
		m := FromPhoto(map[string]string{
			"DateTimeOriginal": "0000:00:00 00:00:00",
			"ModifyDate":       "2025:03:05 10:00:00",
		})
		require.NotNil(t, m.CapturedAt)
		assert.Equal(t, 5, m.CapturedAt.Day())
	})

	t.Run("hemisphere must match the axis", func(t *testing.T) {
		tests := []struct {
			name string
			lat  string
			lng  string
		}{
			{"latitude with east", `120 deg 0' 0.00" E`, `100 deg 30' 0.00" E`},
			{"latitude with west", `45 deg 0' 0.00" W`, `100 deg 30' 0.00" E`},
			{"longitude with north", `13 deg 44' 12.34" N`, `45 deg 0' 0.00" N`},
			{"axes swapped", `100 deg 30' 0.00" E`, `13 deg 44' 12.34" N`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := FromPhoto(map[string]string{"GPSLatitude": tt.lat, "GPSLongitude": tt.lng})
				assert.False(t, m.HasCoordinates())
			})
		}
	})

	t.Run("one axis is not a position", func(t *testing.T) {
		m := FromPhoto(map[string]string{"GPSLatitude": `13 deg 44' 12.34" N`})
		assert.False(t, m.HasCoordinates())
		assert.Nil(t, m.Lat)
		assert.True(t, m.IsZero())
	})
}

func TestFromVideo(t *testing.T) {
	m := FromVideo(map[string]string{
		"com.apple.quicktime.creationdate": "2024-06-02T17:11:12+0700",
		"CreateDate":                       "2020:01:01 00:00:00",
		"GPSLatitude":                      `13 deg 44' 12.34" N`,
	})
	require.NotNil(t, m.CapturedAt)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 11, 12, 0, time.UTC), *m.CapturedAt)
	assert.False(t, m.HasCoordinates())

	assert.True(t, FromVideo(nil).IsZero())
}
