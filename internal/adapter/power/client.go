package power

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/observability"
)

// DefaultBaseURL is the NASA POWER daily point endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// noDataSentinel is POWER's marker for a missing daily value.
const noDataSentinel = -999

// parameters requested from POWER, all from the agricultural community
// dataset.
var parameters = []string{
	"T2M",               // mean temperature at 2m (°C)
	"T2M_MAX",           // max temperature at 2m (°C)
	"T2M_MIN",           // min temperature at 2m (°C)
	"RH2M",              // relative humidity at 2m (%)
	"PRECTOTCORR",       // corrected precipitation (mm/day)
	"WS2M",              // wind speed at 2m (m/s)
	"ALLSKY_SFC_SW_DWN", // all-sky surface shortwave irradiance (MJ/m²/day)
}

// Client fetches daily agro-meteorology from NASA POWER.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a POWER client. POWER needs no credentials.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
		metrics:    metrics,
	}
}

// DailyObservations returns one observation per day in [start, end] for the
// location, dates ascending. Days where POWER reported its no-data sentinel
// carry nil for the affected fields.
func (c *Client) DailyObservations(ctx context.Context, loc domain.Point, start, end time.Time) ([]domain.WeatherObservation, error) {
	if !domain.ValidCoordinates(loc.Lat, loc.Lon) {
		return nil, domain.Validationf("power: coordinates out of range: lat=%g lon=%g", loc.Lat, loc.Lon)
	}
	if end.Before(start) {
		return nil, domain.Validationf("power: end date %s before start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	params := url.Values{
		"parameters": {strings.Join(parameters, ",")},
		"community":  {"AG"},
		"latitude":   {fmt.Sprintf("%g", loc.Lat)},
		"longitude":  {fmt.Sprintf("%g", loc.Lon)},
		"start":      {start.Format("20060102")},
		"end":        {end.Format("20060102")},
		"format":     {"JSON"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("power: create request: %w", err)
	}

	reqStart := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderRequestDuration.WithLabelValues("power").Observe(time.Since(reqStart).Seconds())
	if err != nil {
		c.metrics.ProviderErrors.WithLabelValues("power").Inc()
		return nil, domain.Transientf("power: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderErrors.WithLabelValues("power").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return nil, domain.Transientf("power: status %d: %s", resp.StatusCode, body)
		}
		return nil, fmt.Errorf("power: status %d: %s", resp.StatusCode, body)
	}

	var pr response
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("power: decode response: %w", err)
	}
	if pr.Properties.Parameter == nil {
		return nil, fmt.Errorf("power: response has no parameter block")
	}

	return c.buildObservations(pr.Properties.Parameter), nil
}

// buildObservations pivots POWER's parameter→date→value layout into per-day
// records. Dates that fail to parse are logged and skipped.
func (c *Client) buildObservations(params map[string]map[string]float64) []domain.WeatherObservation {
	dates := make(map[string]struct{})
	for _, series := range params {
		for d := range series {
			dates[d] = struct{}{}
		}
	}

	ordered := make([]string, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	obs := make([]domain.WeatherObservation, 0, len(ordered))
	for _, ds := range ordered {
		day, err := time.Parse("20060102", ds)
		if err != nil {
			c.metrics.RowsSkipped.WithLabelValues("power").Inc()
			c.logger.Warn("skipping POWER record with bad date", "date", ds, "error", err)
			continue
		}
		obs = append(obs, domain.WeatherObservation{
			Date:           day,
			TemperatureMin: value(params, "T2M_MIN", ds),
			TemperatureMax: value(params, "T2M_MAX", ds),
			TemperatureAvg: value(params, "T2M", ds),
			Humidity:       value(params, "RH2M", ds),
			Precipitation:  value(params, "PRECTOTCORR", ds),
			WindSpeed:      value(params, "WS2M", ds),
			SolarRadiation: value(params, "ALLSKY_SFC_SW_DWN", ds),
		})
	}
	return obs
}

// value reads one parameter for one day, mapping the no-data sentinel and
// absent entries to nil.
func value(params map[string]map[string]float64, name, date string) *float64 {
	series, ok := params[name]
	if !ok {
		return nil
	}
	v, ok := series[date]
	if !ok || v == noDataSentinel {
		return nil
	}
	return &v
}

// POWER API response types.

type response struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}
