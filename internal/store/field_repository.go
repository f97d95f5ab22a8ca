package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrisat/field-monitor/internal/domain"
	"gorm.io/gorm"
)

// FieldRepository reads and writes farms and fields.
type FieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository creates a field repository.
func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// CreateFarm persists a new farm.
func (r *FieldRepository) CreateFarm(ctx context.Context, farm *Farm) error {
	if err := r.db.WithContext(ctx).Create(farm).Error; err != nil {
		return fmt.Errorf("create farm: %w", err)
	}
	return nil
}

// CreateField persists a new field.
func (r *FieldRepository) CreateField(ctx context.Context, field *Field) error {
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return fmt.Errorf("create field: %w", err)
	}
	return nil
}

// FieldByID fetches one field, returning domain.ErrFieldNotFound when it does
// not exist.
func (r *FieldRepository) FieldByID(ctx context.Context, id string) (*Field, error) {
	var f Field
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("field %s: %w", id, domain.ErrFieldNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch field %s: %w", id, err)
	}
	return &f, nil
}

// ActiveFields lists active fields, restricted to one owner when ownerID is
// non-empty, ordered by creation time.
func (r *FieldRepository) ActiveFields(ctx context.Context, ownerID string) ([]Field, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	var fields []Field
	if err := q.Order("created_at").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("list active fields: %w", err)
	}
	return fields, nil
}
