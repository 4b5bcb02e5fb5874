// Package domain models multi-year instrument log data and the aggregate and
// risk types derived from it.
//
// # Data Source
//
// Time-series files are per-variable CSV exports of land data assimilation
// readings (GLDAS-style point subsets). Each file covers one variable at one
// station, with 3-hourly readings spanning many years. Files carry an arbitrary
// metadata preamble before the column header, so the header is located by
// pattern rather than by line number: it is the first line that begins with the
// time column ("time") and also contains the variable's own column name.
//
// # File Conventions
//
// Timestamp format:
//
//	"YYYY-MM-DD HH:MM" (sometimes with seconds), split on the first space into
//	a calendar date and a time-of-day. No timezone conversion is performed;
//	all analysis happens in the timestamps' native timezone.
//
// Missing data:
//
//	-9999 is the fill value for a missing measurement. It is matched by exact
//	equality, never by range, so legitimate negative readings (sub-zero
//	temperatures) survive. Rows with too few columns or non-numeric values are
//	expected noise in long-running sensor logs and are skipped, not fatal.
//
// Units and normalization (applied once at parse time):
//
//	precipitation  Rainf_f_tavg   kg/m²/s  → mm/h   (×3600)
//	windspeed      Wind_f_inst    m/s      → m/s    (as-is)
//	humidity       Qair_f_inst    kg/kg    → g/kg   (×1000)
//	temperature    Tair_f_inst    K        → °C     (−273.15)
//
// NormalizedValue is the only value downstream consumers may use; raw values
// are retained for diagnostics only.
//
// # Daily Derivations
//
// Precipitation readings are window-averaged rates, so the daily total
// multiplies each reading's hourly-equivalent rate by the 3-hour reporting
// window instead of assuming 24 hours of coverage. Wind days are labelled with
// a Beaufort-derived category from fixed half-open bands on the daily mean,
// with the top band open-ended.
//
// # Adverse Operators
//
// Each variable defines which direction of excursion is adverse: ≥ for
// precipitation, wind, and temperature; ≤ for specific humidity (dangerously
// dry air). The risk engine counts threshold exceedances with this operator.
package domain
