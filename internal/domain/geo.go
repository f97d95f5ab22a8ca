package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	kmPerDegreeLat = 111.0
)

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ValidCoordinates reports whether lat/lon fall inside the WGS-84 ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundingBox is a geographic extent in decimal degrees.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// String formats the box as "minLon,minLat,maxLon,maxLat", the parameter
// order both FIRMS and CMR expect.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Polygon is a field boundary ring in vertex order. A closing vertex equal
// to the first is tolerated but not required.
type Polygon []Point

// ParsePolygon decodes the JSON ring stored on a field record.
func ParsePolygon(data []byte) (Polygon, error) {
	var p Polygon
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse boundary polygon: %w", err)
	}
	if len(p) < 3 {
		return nil, fmt.Errorf("boundary polygon needs at least 3 vertices, got %d", len(p))
	}
	for _, v := range p {
		if !ValidCoordinates(v.Lat, v.Lon) {
			return nil, fmt.Errorf("boundary vertex out of range: lat=%g lon=%g", v.Lat, v.Lon)
		}
	}
	return p, nil
}

// Centroid returns the vertex average, ignoring a duplicate closing vertex.
// For the small, convex-ish parcels this system deals in, the vertex mean is
// indistinguishable from the true area centroid.
func (p Polygon) Centroid() Point {
	ring := p
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) == 0 {
		return Point{}
	}
	var sumLat, sumLon float64
	for _, v := range ring {
		sumLat += v.Lat
		sumLon += v.Lon
	}
	n := float64(len(ring))
	return Point{Lat: sumLat / n, Lon: sumLon / n}
}

// Extent returns the bounding box of the ring.
func (p Polygon) Extent() BoundingBox {
	if len(p) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{MinLon: p[0].Lon, MinLat: p[0].Lat, MaxLon: p[0].Lon, MaxLat: p[0].Lat}
	for _, v := range p[1:] {
		b.MinLon = math.Min(b.MinLon, v.Lon)
		b.MinLat = math.Min(b.MinLat, v.Lat)
		b.MaxLon = math.Max(b.MaxLon, v.Lon)
		b.MaxLat = math.Max(b.MaxLat, v.Lat)
	}
	return b
}

// BoundingBoxAround builds a box spanning radiusKm in every direction from
// center, using 1° lat ≈ 111 km and 1° lon ≈ 111·cos(lat) km.
func BoundingBoxAround(center Point, radiusKm float64) BoundingBox {
	latOffset := radiusKm / kmPerDegreeLat
	lonOffset := radiusKm / (kmPerDegreeLat * math.Abs(math.Cos(center.Lat*math.Pi/180)))
	return BoundingBox{
		MinLon: center.Lon - lonOffset,
		MinLat: center.Lat - latOffset,
		MaxLon: center.Lon + lonOffset,
		MaxLat: center.Lat + latOffset,
	}
}

// DistanceKm approximates the distance between two points by treating degree
// offsets as planar, with the longitude axis scaled by cos(lat) of the first
// point. Good to within ~1% at the sub-50km ranges fire buffers use.
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * kmPerDegreeLat
	dLon := (b.Lon - a.Lon) * kmPerDegreeLat * math.Cos(a.Lat*math.Pi/180)
	return math.Hypot(dLat, dLon)
}
