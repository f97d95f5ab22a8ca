package ingest

import (
	"context"
	"fmt"
)

// BulkResult aggregates a bulk run over active fields. Per-field failures
// are collected, never aborting the rest of the run.
type BulkResult struct {
	Status        string   `json:"status"`
	TotalFields   int      `json:"total_fields"`
	Processed     int      `json:"processed"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	AlertsCreated int      `json:"alerts_created,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// BulkIngestWeather runs weather ingestion for every active field, or one
// owner's when ownerID is non-empty.
func (s *Service) BulkIngestWeather(ctx context.Context, ownerID string, days int, force bool) (*BulkResult, error) {
	fields, err := s.fields.ActiveFields(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Status: StatusSuccess, TotalFields: len(fields)}
	for _, f := range fields {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		r, err := s.IngestWeather(ctx, f.ID, days, force)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("field %s: %v", f.ID, err))
			s.logger.Warn("bulk weather: field failed", "field_id", f.ID, "error", err)
			continue
		}
		if r.Status == StatusSkipped {
			res.Skipped++
			continue
		}
		res.Processed++
	}

	s.logger.Info("bulk weather ingestion complete",
		"fields", res.TotalFields, "processed", res.Processed,
		"skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// BulkIngestSatellite runs satellite ingestion and trend processing for every
// active field.
func (s *Service) BulkIngestSatellite(ctx context.Context, ownerID string, days int) (*BulkResult, error) {
	fields, err := s.fields.ActiveFields(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Status: StatusSuccess, TotalFields: len(fields)}
	for _, f := range fields {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := s.IngestSatellite(ctx, f.ID, days); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("field %s: %v", f.ID, err))
			s.logger.Warn("bulk satellite: field failed", "field_id", f.ID, "error", err)
			continue
		}
		if _, err := s.ProcessTrend(ctx, f.ID); err != nil {
			s.logger.Warn("bulk satellite: trend processing failed", "field_id", f.ID, "error", err)
		}
		res.Processed++
	}

	s.logger.Info("bulk satellite ingestion complete",
		"fields", res.TotalFields, "processed", res.Processed, "failed", res.Failed)
	return res, nil
}

// BulkCheckFires runs a fire check for every active field.
func (s *Service) BulkCheckFires(ctx context.Context, bufferKm float64, days int) (*BulkResult, error) {
	fields, err := s.fields.ActiveFields(ctx, "")
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Status: StatusSuccess, TotalFields: len(fields)}
	for _, f := range fields {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		r, err := s.CheckFire(ctx, f.ID, bufferKm, days)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("field %s: %v", f.ID, err))
			s.logger.Warn("bulk fire check: field failed", "field_id", f.ID, "error", err)
			continue
		}
		res.Processed++
		if r.AlertCreated {
			res.AlertsCreated++
		}
	}

	s.logger.Info("bulk fire check complete",
		"fields", res.TotalFields, "processed", res.Processed,
		"failed", res.Failed, "alerts_created", res.AlertsCreated)
	return res, nil
}
