package modis

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

// Default endpoints.
const (
	DefaultSubsetBaseURL = "https://modis.ornl.gov/rst/api/v1"
	DefaultCMRBaseURL    = "https://cmr.earthdata.nasa.gov/search"
)

// Vegetation-index products, Terra and Aqua.
const (
	ProductTerra = "MOD13Q1"
	ProductAqua  = "MYD13Q1"
)

// landsatCollection is the CMR concept id for Landsat 8 Collection 2.
const landsatCollection = "C1711961296-LPCLOUD"

// MODIS subset sentinels: NDVI is scaled by 10000 and -3000 means no data.
const (
	ndviScale      = 10000.0
	ndviNoData     = -3000
	ndviColumn     = "_250m_16_days_NDVI"
	qualityColumn  = "_250m_16_days_VI_Quality"
	subsetDateForm = "2006-01-02"
)

// Client fetches MODIS vegetation-index subsets from the ORNL DAAC and
// Landsat scene listings from NASA CMR.
type Client struct {
	httpClient    *http.Client
	subsetBaseURL string
	cmrBaseURL    string
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewClient creates a satellite data client. Neither endpoint needs
// credentials.
func NewClient(subsetBaseURL, cmrBaseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if subsetBaseURL == "" {
		subsetBaseURL = DefaultSubsetBaseURL
	}
	if cmrBaseURL == "" {
		cmrBaseURL = DefaultCMRBaseURL
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		subsetBaseURL: subsetBaseURL,
		cmrBaseURL:    cmrBaseURL,
		logger:        logger,
		metrics:       metrics,
	}
}

// NDVISeries returns NDVI samples for the location across both the Terra and
// Aqua products, sorted by date. A failure of one product degrades to the
// other's samples; both failing is an error.
func (c *Client) NDVISeries(ctx context.Context, loc domain.Point, start, end time.Time) ([]domain.NDVISample, error) {
	if !domain.ValidCoordinates(loc.Lat, loc.Lon) {
		return nil, domain.Validationf("modis: coordinates out of range: lat=%g lon=%g", loc.Lat, loc.Lon)
	}
	if end.Before(start) {
		return nil, domain.Validationf("modis: end date before start date")
	}

	var samples []domain.NDVISample
	var firstErr error
	for _, product := range []string{ProductTerra, ProductAqua} {
		s, err := c.subset(ctx, loc, start, end, product)
		if err != nil {
			c.logger.Warn("MODIS subset query failed", "product", product, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		samples = append(samples, s...)
	}

	if samples == nil && firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })
	return samples, nil
}

func (c *Client) subset(ctx context.Context, loc domain.Point, start, end time.Time, product string) ([]domain.NDVISample, error) {
	params := url.Values{
		"latitude":     {fmt.Sprintf("%g", loc.Lat)},
		"longitude":    {fmt.Sprintf("%g", loc.Lon)},
		"startDate":    {start.Format(subsetDateForm)},
		"endDate":      {end.Format(subsetDateForm)},
		"kmAboveBelow": {"0"},
		"kmLeftRight":  {"0"},
	}
	u := fmt.Sprintf("%s/%s/subset?%s", c.subsetBaseURL, product, params.Encode())

	var sr subsetResponse
	if err := c.getJSON(ctx, u, "modis", &sr); err != nil {
		return nil, err
	}

	satellite := "MODIS_Terra"
	if product == ProductAqua {
		satellite = "MODIS_Aqua"
	}

	samples := make([]domain.NDVISample, 0, len(sr.Subset))
	for _, rec := range sr.Subset {
		day, err := time.Parse(subsetDateForm, rec.CalendarDate)
		if err != nil {
			c.metrics.RowsSkipped.WithLabelValues("modis").Inc()
			c.logger.Warn("skipping MODIS record with bad date", "date", rec.CalendarDate, "error", err)
			continue
		}
		ndvi, ok := rec.value(ndviColumn)
		if !ok || ndvi == ndviNoData || ndvi == 0 {
			continue
		}
		quality, _ := rec.value(qualityColumn)
		samples = append(samples, domain.NDVISample{
			Date:      day,
			NDVI:      ndvi / ndviScale,
			Satellite: satellite,
			Product:   product,
			Quality:   int(quality),
		})
	}
	return samples, nil
}

// SearchLandsatScenes lists Landsat 8 granules intersecting bbox in the
// window, via the CMR granule search.
func (c *Client) SearchLandsatScenes(ctx context.Context, bbox domain.BoundingBox, start, end time.Time) ([]domain.SatelliteScene, error) {
	params := url.Values{
		"collection_concept_id": {landsatCollection},
		"bounding_box":          {bbox.String()},
		"temporal": {fmt.Sprintf("%sT00:00:00Z,%sT23:59:59Z",
			start.Format(subsetDateForm), end.Format(subsetDateForm))},
		"page_size": {"50"},
	}
	u := fmt.Sprintf("%s/granules.json?%s", c.cmrBaseURL, params.Encode())

	var gr granuleResponse
	if err := c.getJSON(ctx, u, "cmr", &gr); err != nil {
		return nil, err
	}

	scenes := make([]domain.SatelliteScene, 0, len(gr.Feed.Entry))
	for _, e := range gr.Feed.Entry {
		scene := domain.SatelliteScene{
			ID:        e.ID,
			Title:     e.Title,
			BrowseURL: browseLink(e.Links),
		}
		if e.Updated != "" {
			updated, err := time.Parse(time.RFC3339, e.Updated)
			if err != nil {
				c.metrics.RowsSkipped.WithLabelValues("cmr").Inc()
				c.logger.Warn("skipping Landsat granule with bad timestamp", "id", e.ID, "error", err)
				continue
			}
			scene.UpdatedAt = updated
		}
		if e.CloudCover != nil {
			scene.CloudCoverage = e.CloudCover
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func (c *Client) getJSON(ctx context.Context, u, provider string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderErrors.WithLabelValues(provider).Inc()
		return domain.Transientf("%s: request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderErrors.WithLabelValues(provider).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return domain.Transientf("%s: status %d: %s", provider, resp.StatusCode, body)
		}
		return fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

// browseLink picks the first browse/thumbnail href from a granule's links.
func browseLink(links []granuleLink) string {
	for _, l := range links {
		href := strings.ToLower(l.Href)
		if strings.Contains(href, "browse") || strings.Contains(href, "thumbnail") {
			return l.Href
		}
	}
	return ""
}

// ORNL subset response types. Non-date columns arrive as arbitrary JSON
// numbers keyed by band name, so the record keeps a raw map.

type subsetResponse struct {
	Subset []subsetRecord `json:"subset"`
}

type subsetRecord struct {
	CalendarDate string `json:"calendar_date"`
	raw          map[string]json.RawMessage
}

func (r *subsetRecord) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if d, ok := m["calendar_date"]; ok {
		if err := json.Unmarshal(d, &r.CalendarDate); err != nil {
			return err
		}
	}
	r.raw = m
	return nil
}

func (r *subsetRecord) value(column string) (float64, bool) {
	data, ok := r.raw[column]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, false
	}
	return v, true
}

// CMR granule search response types.

type granuleResponse struct {
	Feed struct {
		Entry []granuleEntry `json:"entry"`
	} `json:"feed"`
}

type granuleEntry struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Updated    string        `json:"updated"`
	CloudCover *float64      `json:"cloud_cover,string,omitempty"`
	Links      []granuleLink `json:"links"`
}

type granuleLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}
