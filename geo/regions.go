// Package geo holds the fixed region → coordinate table used to place
// dataset rows on the map.
package geo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Center is the initial map view over the Korean peninsula.
var Center = Coordinate{Lat: 36.5, Lon: 127.8}

// provinces covers the 17 first-level administrative regions of South Korea,
// keyed by their short names. Never mutated after init.
var provinces = map[string]Coordinate{
	"서울": {37.5665, 126.9780},
	"부산": {35.1796, 129.0756},
	"대구": {35.8714, 128.6014},
	"인천": {37.4563, 126.7052},
	"광주": {35.1595, 126.8526},
	"대전": {36.3504, 127.3845},
	"울산": {35.5384, 129.3114},
	"세종": {36.4801, 127.2890},
	"경기": {37.4138, 127.5183},
	"강원": {37.8228, 128.1555},
	"충북": {36.6358, 127.4917},
	"충남": {36.5184, 126.8000},
	"전북": {35.7167, 127.1442},
	"전남": {34.8161, 126.4630},
	"경북": {36.4919, 128.8889},
	"경남": {35.4606, 128.2132},
	"제주": {33.4996, 126.5312},
}

// nameAliases maps official full names that don't reduce to a short key by
// suffix stripping alone.
var nameAliases = map[string]string{
	"충청북도":    "충북",
	"충청남도":    "충남",
	"전라북도":    "전북",
	"전북특별자치도": "전북",
	"전라남도":    "전남",
	"경상북도":    "경북",
	"경상남도":    "경남",
}

// adminSuffixes lists administrative designations appended to region names.
// Order matters: longer suffixes must come first so "특별자치도" is tried
// before "도".
var adminSuffixes = []string{
	"특별자치시", "특별자치도", "특별시", "광역시", "도",
}

// Table is an immutable name → coordinate lookup.
type Table struct {
	coords map[string]Coordinate
}

// Default returns the table of the 17 first-level regions.
func Default() Table {
	return Table{coords: provinces}
}

// With returns a copy of t that also resolves name to c. The receiver is left
// untouched.
func (t Table) With(name string, c Coordinate) Table {
	next := make(map[string]Coordinate, len(t.coords)+1)
	for k, v := range t.coords {
		next[k] = v
	}
	next[strings.TrimSpace(name)] = c
	return Table{coords: next}
}

// Len reports the number of named regions.
func (t Table) Len() int { return len(t.coords) }

// Names returns the region names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.coords))
	for k := range t.coords {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a region name by exact key after trimming whitespace.
// Official long forms such as "서울특별시" are not keys; pass them through
// Canonical first to accept them. Unknown names report false; there is no
// fallback coordinate.
func (t Table) Lookup(name string) (Coordinate, bool) {
	c, ok := t.coords[strings.TrimSpace(name)]
	return c, ok
}

// Canonical maps a region name onto the key used by t. Names the table
// doesn't know are returned trimmed but otherwise unchanged.
func (t Table) Canonical(name string) string {
	s := strings.TrimSpace(name)
	if _, ok := t.coords[s]; ok {
		return s
	}
	if alias, ok := nameAliases[s]; ok {
		if _, ok := t.coords[alias]; ok {
			return alias
		}
	}
	if base := stripAdminSuffix(s); base != s {
		if _, ok := t.coords[base]; ok {
			return base
		}
	}
	return s
}

// stripAdminSuffix removes one trailing administrative designation. A name
// that is nothing but the suffix is returned unchanged.
func stripAdminSuffix(name string) string {
	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Geohash encodes c at the library's default precision.
func Geohash(c Coordinate) string {
	return geohash.Encode(c.Lat, c.Lon)
}

// ParseEntry parses a "name=lat,lon" table entry.
func ParseEntry(s string) (string, Coordinate, error) {
	name, pos, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", Coordinate{}, fmt.Errorf("region entry %q: want name=lat,lon", s)
	}
	latStr, lonStr, ok := strings.Cut(pos, ",")
	if !ok {
		return "", Coordinate{}, fmt.Errorf("region entry %q: want name=lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return "", Coordinate{}, fmt.Errorf("region entry %q: bad latitude %q", s, latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return "", Coordinate{}, fmt.Errorf("region entry %q: bad longitude %q", s, lonStr)
	}
	return name, Coordinate{Lat: lat, Lon: lon}, nil
}
