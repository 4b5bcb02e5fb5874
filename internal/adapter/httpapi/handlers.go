package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/stats"
)

// variableInfo is the /api/v1/variables entry for one descriptor.
type variableInfo struct {
	ID         string `json:"id"`
	Unit       string `json:"unit"`
	Kind       string `json:"kind"`
	Adverse    string `json:"adverse_operator"`
	DataSource string `json:"data_source"`
	Loaded     bool   `json:"loaded"`
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	out := make([]variableInfo, 0, len(domain.Variables()))
	for _, id := range domain.Variables() {
		d, _ := domain.DescribeVariable(id)
		out = append(out, variableInfo{
			ID:         d.ID,
			Unit:       d.Unit,
			Kind:       string(d.Kind),
			Adverse:    string(d.Adverse),
			DataSource: d.DataSource,
			Loaded:     s.store.Loaded(id),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	variable, ok := requireVariable(w, r)
	if !ok {
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	agg, ok := s.store.AggregateFor(variable, date)
	if !ok {
		writeError(w, http.StatusNotFound, "no data for that date")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	variable, ok := requireVariable(w, r)
	if !ok {
		return
	}
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date, want YYYY-MM-DD")
		return
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxRangeDays {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("range spans %d days, maximum is %d", days, maxRangeDays))
		return
	}

	out, err := s.store.RangeQuery(variable, start, end)
	if err != nil {
		var rangeErr *domain.InvalidRangeError
		if errors.As(err, &rangeErr) {
			writeError(w, http.StatusBadRequest, rangeErr.Error())
			return
		}
		s.logger.Error("range query failed", "variable", variable, "error", err)
		writeError(w, http.StatusInternalServerError, "range query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"variable": variable,
		"count":    len(out),
		"days":     out,
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	variable, ok := requireVariable(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	agg, ok := s.store.MonthlyAggregate(variable, year, month)
	if !ok {
		writeError(w, http.StatusNotFound, "no data for that month")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// riskResponse is the full /api/v1/risk payload: the computed statistics plus
// the resolved request context.
type riskResponse struct {
	Place  domain.Place          `json:"place"`
	Month  int                   `json:"month"`
	Day    int                   `json:"day"`
	Source string                `json:"source"` // "observed" or "synthetic"
	Risk   domain.RiskStatistics `json:"risk"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	variable, ok := requireVariable(w, r)
	if !ok {
		return
	}
	threshold, err := strconv.ParseFloat(q.Get("threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid threshold, want a number")
		return
	}
	month, err := parseMonth(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	day, err := strconv.Atoi(q.Get("day"))
	if err != nil || day < 1 || day > 31 {
		writeError(w, http.StatusBadRequest, "invalid day, want 1-31")
		return
	}

	place, ok := s.resolvePlace(w, q.Get("location"), q.Get("lat"), q.Get("lon"))
	if !ok {
		return
	}

	key := cacheKey(variable, threshold, month, day, place)
	if resp, ok := s.cache.get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	sample := s.store.YearlySampleFor(variable, month, day)
	source := "observed"
	if len(sample) == 0 {
		sample, err = s.generator.Sample(variable, place, month, day)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		source = "synthetic"
	}

	start := time.Now()
	result, err := stats.Compute(sample, threshold, variable)
	if err != nil {
		var inputErr *domain.InvalidInputError
		if errors.As(err, &inputErr) {
			writeError(w, http.StatusBadRequest, inputErr.Error())
			return
		}
		s.logger.Error("risk computation failed", "variable", variable, "error", err)
		writeError(w, http.StatusInternalServerError, "risk computation failed")
		return
	}
	s.metrics.RiskComputeDuration.Observe(time.Since(start).Seconds())
	s.metrics.RiskQueries.WithLabelValues(variable, source).Inc()

	resp := riskResponse{
		Place:  place,
		Month:  int(month),
		Day:    day,
		Source: source,
		Risk:   result,
	}
	s.cache.put(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// resolvePlace turns either a location name or a lat/lon pair into a Place.
// On failure it writes the error response and returns ok=false.
func (s *Server) resolvePlace(w http.ResponseWriter, location, latStr, lonStr string) (domain.Place, bool) {
	if location != "" {
		place, ok := s.locator.Lookup(location)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown location %q", location))
			return domain.Place{}, false
		}
		return place, true
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "provide location, or valid lat and lon")
		return domain.Place{}, false
	}
	return domain.Place{Name: fmt.Sprintf("%.4f,%.4f", lat, lon), Lat: lat, Lon: lon}, true
}

// requireVariable reads and validates the variable query parameter.
func requireVariable(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("variable")
	if _, ok := domain.DescribeVariable(id); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown variable %q", id))
		return "", false
	}
	return id, true
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.Date(t.Year(), t.Month(), t.Day()), nil
}

func parseMonth(s string) (time.Month, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, errors.New("invalid month, want 1-12")
	}
	return time.Month(m), nil
}

// cacheKey identifies one cacheable risk response. Responses are only shared
// across requests with the exact same parameter tuple.
func cacheKey(variable string, threshold float64, month time.Month, day int, place domain.Place) string {
	return fmt.Sprintf("%s|%g|%d-%d|%s", variable, threshold, month, day, strings.ToLower(place.Name))
}
