// Package domain models agricultural monitoring data and the pure scoring
// functions applied to it.
//
// # Data Sources
//
// Measurements come from three NASA programs, each wrapped by a client in
// internal/adapter:
//
//	FIRMS:  active fire detections (MODIS/VIIRS thermal anomalies), CSV.
//	POWER:  daily agro-meteorology (temperature, humidity, precipitation,
//	        wind, solar radiation), JSON. -999 is the "no data" sentinel.
//	MODIS:  16-day vegetation index subsets (MOD13Q1 Terra, MYD13Q1 Aqua).
//	        NDVI values are scaled by 10000; -3000 is the "no data" sentinel.
//
// # NDVI Conventions
//
// NDVI (Normalized Difference Vegetation Index) lives in [-1, 1]. Dense
// healthy vegetation sits around 0.6–0.9, sparse vegetation 0.2–0.5, bare
// soil near 0.1, and water/snow below zero.
//
// Status thresholds (inclusive lower bounds, first match wins):
//
//	≥0.7 excellent | ≥0.5 good | ≥0.3 fair | ≥0.1 poor | else critical
//
// Two health-score normalizations are in use and intentionally NOT unified:
//
//	HealthScore:     (ndvi+1)/2 · 100, rounded to 2 decimals. The generic
//	                 auto-fill used when a health record carries no score.
//	VegetationScore: (ndvi+0.2)/1.2 · 100, rounded to 1 decimal. The
//	                 satellite-ingestion normalization, which treats NDVI
//	                 below -0.2 as uniformly dead rather than spending half
//	                 the scale on water pixels.
//
// Callers must not swap one for the other; stored scores differ between the
// two paths and historical data depends on each path keeping its formula.
//
// # Fire Risk
//
// Fire risk for a field is scored from detections within a buffer radius of
// the field centroid:
//
//	score = min(100, total·5 + within5km·15 + confidence≥80·10 + last3days·20)
//	level = high (≥70) | medium (≥40) | low
//
// Distances use the flat-earth degree approximation (1° lat ≈ 111 km,
// 1° lon ≈ 111·cos(lat) km), which is accurate to well under a kilometer at
// field-buffer scales.
package domain
