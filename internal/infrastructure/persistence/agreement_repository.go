package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
)

// GormAgreementRepository implements agreement-record storage using GORM
type GormAgreementRepository struct {
	db *gorm.DB
}

// NewGormAgreementRepository creates a new GormAgreementRepository
func NewGormAgreementRepository(db *gorm.DB) *GormAgreementRepository {
	return &GormAgreementRepository{db: db}
}

// Create stores a new agreement record
func (r *GormAgreementRepository) Create(ctx context.Context, record *agreement.Record) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = agreement.StatusSent
	}

	return r.db.WithContext(ctx).Create(AgreementModelFromDomain(record)).Error
}

// FindByAgreementNumber finds a record by its agreement number
func (r *GormAgreementRepository) FindByAgreementNumber(ctx context.Context, number string) (*agreement.Record, error) {
	var model AgreementModel
	if err := r.db.WithContext(ctx).First(&model, "agreement_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateStatus transitions a record's signature status
func (r *GormAgreementRepository) UpdateStatus(ctx context.Context, number string, status agreement.RecordStatus) error {
	result := r.db.WithContext(ctx).
		Model(&AgreementModel{}).
		Where("agreement_number = ?", number).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns recent records, newest first
func (r *GormAgreementRepository) List(ctx context.Context, limit int) ([]agreement.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	var recordModels []AgreementModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]agreement.Record, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}
