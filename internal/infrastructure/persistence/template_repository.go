package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/futurosresidentes/backoffice/internal/domain/template"
)

// ErrNotFound is returned when a queried row does not exist
var ErrNotFound = errors.New("persistence: record not found")

// GormTemplateRepository implements template storage using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindBySlug finds a template by its slug
func (r *GormTemplateRepository) FindBySlug(ctx context.Context, slug string) (*template.DocumentTemplate, error) {
	var model DocumentTemplateModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the template or replaces the stored content for its slug
func (r *GormTemplateRepository) Upsert(ctx context.Context, t *template.DocumentTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	model := DocumentTemplateModelFromDomain(t)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "html_content", "updated_at"}),
		}).
		Create(model).Error
}

// List returns all templates ordered by slug
func (r *GormTemplateRepository) List(ctx context.Context) ([]template.DocumentTemplate, error) {
	var templateModels []DocumentTemplateModel
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]template.DocumentTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}
