package domain

// Place is a resolved location.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Locator resolves a location name to coordinates.
type Locator interface {
	// Lookup resolves a place name. ok is false when the name is unknown.
	Lookup(name string) (Place, bool)
}
