// Package mediameta turns provider-reported EXIF/container strings into
// decimal coordinates and UTC instants. Parsing never fails loudly: values
// that do not match the expected shape are reported as absent.
package mediameta

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	coordinateRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"\s*([NSEWnsew])$`)
	shotDateRe   = regexp.MustCompile(`^(?:UTC\s*)?(\d{4})[:-](\d{2})[:-](\d{2})[ T](\d{2}):(\d{2}):(\d{2})(?:\.\d+)?\s*(Z|[+-]\d{2}:?\d{2})?$`)
	offsetRe     = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`)
)

// ParseCoordinate converts `D deg M' S" H` into signed decimal degrees rounded
// to 7 places. S and W are negative.
func ParseCoordinate(s string) (float64, bool) {
	return parseAxis(s, "NSEW")
}

// ParseLatitude is ParseCoordinate restricted to the N and S hemispheres.
func ParseLatitude(s string) (float64, bool) {
	return parseAxis(s, "NS")
}

// ParseLongitude is ParseCoordinate restricted to the E and W hemispheres.
func ParseLongitude(s string) (float64, bool) {
	return parseAxis(s, "EW")
}

func parseAxis(s, hemispheres string) (float64, bool) {
	m := coordinateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || !strings.Contains(hemispheres, strings.ToUpper(m[4])) {
		return 0, false
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	mins, _ := strconv.ParseFloat(m[2], 64)
	sec, _ := strconv.ParseFloat(m[3], 64)
	if mins >= 60 || sec >= 60 {
		return 0, false
	}

	v := deg + mins/60 + sec/3600
	hemisphere := strings.ToUpper(m[4])
	limit := 180.0
	if hemisphere == "N" || hemisphere == "S" {
		limit = 90
	}
	if v > limit {
		return 0, false
	}
	if hemisphere == "S" || hemisphere == "W" {
		v = -v
	}
	return math.Round(v*1e7) / 1e7, true
}

// ParseShotDate parses `YYYY:MM:DD HH:MM:SS` (dashes allowed in the date,
// optional "UTC" prefix) as wall-clock time and converts it to UTC by
// subtracting offset (±HH:MM). An empty offset means the value is already UTC
// unless the value itself ends in a zone designator.
func ParseShotDate(local, offset string) (time.Time, bool) {
	m := shotDateRe.FindStringSubmatch(strings.TrimSpace(local))
	if m == nil {
		return time.Time{}, false
	}

	f := make([]int, 6)
	for i := range f {
		f[i], _ = strconv.Atoi(m[i+1])
	}
	year, month, day, hour, minute, second := f[0], f[1], f[2], f[3], f[4], f[5]
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		// time.Date normalized an impossible day such as Feb 30.
		return time.Time{}, false
	}

	zone := strings.TrimSpace(offset)
	if zone == "" {
		zone = m[7]
	}
	if d, ok := parseOffset(zone); ok {
		t = t.Add(-d)
	}
	return t, true
}

func parseOffset(s string) (time.Duration, bool) {
	if s == "" || s == "Z" {
		return 0, false
	}
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	if h > 14 || mm > 59 {
		return 0, false
	}
	d := time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute
	if m[1] == "-" {
		d = -d
	}
	return d, true
}
