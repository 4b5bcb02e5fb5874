package domain

// SentinelMissing is the fill value marking a missing measurement in source
// files. Compared by exact equality so legitimate negatives are never dropped.
const SentinelMissing = -9999.0

// TimeColumn is the name of the timestamp column in source files. The header
// line is identified by this prefix.
const TimeColumn = "time"

// VariableKind distinguishes how a variable's daily aggregate is derived.
type VariableKind string

const (
	// KindAccumulation marks variables whose daily total is derived from
	// window-averaged rates (e.g. precipitation).
	KindAccumulation VariableKind = "accumulation"
	// KindInstantaneous marks variables whose daily value is the plain mean of
	// point readings (wind, humidity, temperature).
	KindInstantaneous VariableKind = "instantaneous"
)

// Operator is the comparison defining adverse conditions for a variable.
type Operator string

const (
	OpAtLeast Operator = ">="
	OpAtMost  Operator = "<="
)

// Satisfied reports whether value crosses threshold in the adverse direction.
func (op Operator) Satisfied(value, threshold float64) bool {
	if op == OpAtMost {
		return value <= threshold
	}
	return value >= threshold
}

// CategoryBand is one half-open band of a categorical scale: values in
// [previous band's UpTo, UpTo) receive Label. The final band is open-ended.
type CategoryBand struct {
	UpTo  float64
	Label string
}

// VariableDescriptor is the static metadata for one supported variable.
// Descriptors are immutable and shared; consumers must not modify them.
type VariableDescriptor struct {
	ID         string
	Unit       string
	Kind       VariableKind
	Adverse    Operator
	DataSource string

	// ColumnName is the variable's column header in source files.
	ColumnName string
	// WindowHours is the reporting interval one reading covers.
	WindowHours float64
	// Scale and Offset convert a raw reading to physical units:
	// normalized = raw*Scale + Offset. Applied once at parse time.
	Scale  float64
	Offset float64

	// Categories is the qualitative scale applied to the daily mean, nil for
	// variables without one.
	Categories []CategoryBand

	// AdvisoryThreshold is the daily-mean level counted as an adverse day in
	// monthly rollups.
	AdvisoryThreshold float64
}

// Normalize converts a raw reading into the descriptor's physical unit.
func (d VariableDescriptor) Normalize(raw float64) float64 {
	return raw*d.Scale + d.Offset
}

// Categorize returns the qualitative label for a daily mean, or "" when the
// variable has no categorical scale. Bands are half-open with the top band
// open-ended.
func (d VariableDescriptor) Categorize(mean float64) string {
	if len(d.Categories) == 0 {
		return ""
	}
	for _, band := range d.Categories[:len(d.Categories)-1] {
		if mean < band.UpTo {
			return band.Label
		}
	}
	return d.Categories[len(d.Categories)-1].Label
}

// Supported variable ids.
const (
	VarPrecipitation = "precipitation"
	VarWindSpeed     = "windspeed"
	VarHumidity      = "humidity"
	VarTemperature   = "temperature"
)

// windBands is a Beaufort-derived simplification of wind force on the daily
// mean (m/s). The top band is open-ended.
var windBands = []CategoryBand{
	{UpTo: 2.0, Label: "calm"},
	{UpTo: 5.5, Label: "light"},
	{UpTo: 10.8, Label: "moderate"},
	{UpTo: 17.2, Label: "strong"},
	{Label: "gale"},
}

var registry = map[string]VariableDescriptor{
	VarPrecipitation: {
		ID:                VarPrecipitation,
		Unit:              "mm/h",
		Kind:              KindAccumulation,
		Adverse:           OpAtLeast,
		DataSource:        "GLDAS Noah Rainf_f_tavg",
		ColumnName:        "Rainf_f_tavg",
		WindowHours:       3,
		Scale:             3600, // kg/m²/s → mm/h
		AdvisoryThreshold: 0.4,  // ≈10mm/day sustained
	},
	VarWindSpeed: {
		ID:                VarWindSpeed,
		Unit:              "m/s",
		Kind:              KindInstantaneous,
		Adverse:           OpAtLeast,
		DataSource:        "GLDAS Noah Wind_f_inst",
		ColumnName:        "Wind_f_inst",
		WindowHours:       3,
		Scale:             1,
		Categories:        windBands,
		AdvisoryThreshold: 10.8, // "strong" band onset
	},
	VarHumidity: {
		ID:                VarHumidity,
		Unit:              "g/kg",
		Kind:              KindInstantaneous,
		Adverse:           OpAtMost, // dangerously dry air
		DataSource:        "GLDAS Noah Qair_f_inst",
		ColumnName:        "Qair_f_inst",
		WindowHours:       3,
		Scale:             1000, // kg/kg → g/kg
		AdvisoryThreshold: 3,
	},
	VarTemperature: {
		ID:                VarTemperature,
		Unit:              "°C",
		Kind:              KindInstantaneous,
		Adverse:           OpAtLeast,
		DataSource:        "GLDAS Noah Tair_f_inst",
		ColumnName:        "Tair_f_inst",
		WindowHours:       3,
		Scale:             1,
		Offset:            -273.15, // K → °C
		AdvisoryThreshold: 35,
	},
}

// DescribeVariable looks up the descriptor for a variable id.
func DescribeVariable(id string) (VariableDescriptor, bool) {
	d, ok := registry[id]
	return d, ok
}

// Variables returns the supported variable ids in stable order.
func Variables() []string {
	return []string{VarPrecipitation, VarWindSpeed, VarHumidity, VarTemperature}
}
