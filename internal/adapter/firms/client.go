package firms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/observability"
)

// DefaultBaseURL is the public FIRMS API host.
const DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov/api"

// DefaultSource is the fire detection product queried when none is given.
const DefaultSource = "MODIS_NRT"

// Client fetches active fire detections from NASA FIRMS
// (Fire Information for Resource Management System).
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a FIRMS client. The API key may be empty, in which case
// every query fails with domain.ErrNotConfigured.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
		metrics:    metrics,
	}
}

// ActiveFires returns detections inside bbox over the trailing daysBack days.
// Malformed CSV rows are logged and skipped, never fatal.
func (c *Client) ActiveFires(ctx context.Context, bbox domain.BoundingBox, daysBack int, source string) ([]domain.FireDetection, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("firms: %w", domain.ErrNotConfigured)
	}
	if daysBack < 1 {
		return nil, domain.Validationf("firms: daysBack must be positive, got %d", daysBack)
	}
	if source == "" {
		source = DefaultSource
	}

	u := fmt.Sprintf("%s/area/csv/%s/%s/%s/%d", c.baseURL, c.apiKey, source, bbox, daysBack)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("firms: create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderRequestDuration.WithLabelValues("firms").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderErrors.WithLabelValues("firms").Inc()
		return nil, domain.Transientf("firms: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderErrors.WithLabelValues("firms").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return nil, domain.Transientf("firms: status %d: %s", resp.StatusCode, body)
		}
		return nil, fmt.Errorf("firms: status %d: %s", resp.StatusCode, body)
	}

	return c.parseCSV(resp.Body), nil
}

// FiresNearPoint returns detections within radiusKm of center, nearest
// first, each annotated with its distance.
func (c *Client) FiresNearPoint(ctx context.Context, center domain.Point, radiusKm float64, daysBack int, source string) ([]domain.FireDetection, error) {
	if !domain.ValidCoordinates(center.Lat, center.Lon) {
		return nil, domain.Validationf("firms: coordinates out of range: lat=%g lon=%g", center.Lat, center.Lon)
	}
	if radiusKm <= 0 {
		return nil, domain.Validationf("firms: radius must be positive, got %g", radiusKm)
	}

	bbox := domain.BoundingBoxAround(center, radiusKm)
	fires, err := c.ActiveFires(ctx, bbox, daysBack, source)
	if err != nil {
		return nil, err
	}
	return domain.WithinRadius(center, fires, radiusKm), nil
}

// parseCSV converts a FIRMS area CSV into detections. The header row names
// the columns; rows with a mismatched column count or unparsable numerics
// are skipped.
func (c *Client) parseCSV(body io.Reader) []domain.FireDetection {
	r := csv.NewReader(body)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var fires []domain.FireDetection
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.metrics.RowsSkipped.WithLabelValues("firms").Inc()
			c.logger.Warn("skipping unreadable FIRMS row", "error", err)
			continue
		}
		if len(row) != len(header) {
			c.metrics.RowsSkipped.WithLabelValues("firms").Inc()
			c.logger.Warn("skipping FIRMS row with wrong column count", "columns", len(row))
			continue
		}

		f, err := parseRow(col, row)
		if err != nil {
			c.metrics.RowsSkipped.WithLabelValues("firms").Inc()
			c.logger.Warn("skipping malformed FIRMS row", "error", err)
			continue
		}
		fires = append(fires, f)
	}
	return fires
}

func parseRow(col map[string]int, row []string) (domain.FireDetection, error) {
	lat, err := floatField(col, row, "latitude")
	if err != nil {
		return domain.FireDetection{}, err
	}
	lon, err := floatField(col, row, "longitude")
	if err != nil {
		return domain.FireDetection{}, err
	}
	brightness, err := floatField(col, row, "brightness")
	if err != nil {
		return domain.FireDetection{}, err
	}
	confidence, err := floatField(col, row, "confidence")
	if err != nil {
		return domain.FireDetection{}, err
	}
	frp, err := floatField(col, row, "frp")
	if err != nil {
		return domain.FireDetection{}, err
	}

	f := domain.FireDetection{
		Point:      domain.Point{Lat: lat, Lon: lon},
		Brightness: brightness,
		Confidence: confidence,
		FRP:        frp,
	}

	if acquired, err := parseAcquired(stringField(col, row, "acq_date"), stringField(col, row, "acq_time")); err == nil {
		f.AcquiredAt = acquired
	}
	return f, nil
}

// parseAcquired combines acq_date ("2006-01-02") with acq_time, an HHMM
// integer FIRMS strips leading zeros from ("54" means 00:54).
func parseAcquired(date, hhmm string) (time.Time, error) {
	for len(hhmm) < 4 {
		hhmm = "0" + hhmm
	}
	return time.Parse("2006-01-02 15:04", fmt.Sprintf("%s %s:%s", date, hhmm[:2], hhmm[2:]))
}

func stringField(col map[string]int, row []string, name string) string {
	i, ok := col[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func floatField(col map[string]int, row []string, name string) (float64, error) {
	i, ok := col[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return v, nil
}
