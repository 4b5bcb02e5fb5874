// Package geocode resolves place names to coordinates from a static lookup
// table. It stands in for a real geocoding provider: the table covers the
// locations the service has station data or synthetic coverage for.
package geocode

import (
	"strings"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
)

// Table is a static name→place resolver. It implements domain.Locator.
// Lookups are case-insensitive and tolerate surrounding whitespace.
type Table struct {
	places map[string]domain.Place
}

// NewTable creates the built-in lookup table.
func NewTable() *Table {
	t := &Table{places: make(map[string]domain.Place, len(builtin))}
	for _, p := range builtin {
		t.places[normalizeKey(p.Name)] = p
	}
	return t
}

// Lookup resolves a place name. ok is false when the name is unknown.
func (t *Table) Lookup(name string) (domain.Place, bool) {
	p, ok := t.places[normalizeKey(name)]
	return p, ok
}

// Names returns the resolvable place names.
func (t *Table) Names() []string {
	names := make([]string, 0, len(builtin))
	for _, p := range builtin {
		names = append(names, p.Name)
	}
	return names
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

var builtin = []domain.Place{
	{Name: "Austin", Lat: 30.2672, Lon: -97.7431},
	{Name: "Chicago", Lat: 41.8781, Lon: -87.6298},
	{Name: "Denver", Lat: 39.7392, Lon: -104.9903},
	{Name: "Houston", Lat: 29.7604, Lon: -95.3698},
	{Name: "Miami", Lat: 25.7617, Lon: -80.1918},
	{Name: "New Orleans", Lat: 29.9511, Lon: -90.0715},
	{Name: "New York", Lat: 40.7128, Lon: -74.0060},
	{Name: "Oklahoma City", Lat: 35.4676, Lon: -97.5164},
	{Name: "Phoenix", Lat: 33.4484, Lon: -112.0740},
	{Name: "Seattle", Lat: 47.6062, Lon: -122.3321},
}
