package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
	"github.com/futurosresidentes/backoffice/internal/domain/template"
)

// DocumentTemplateModel is the GORM model for the document_templates table
type DocumentTemplateModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(200)"`
	HTMLContent string    `gorm:"column:html_content;type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for DocumentTemplateModel
func (DocumentTemplateModel) TableName() string {
	return "document_templates"
}

// ToDomain converts DocumentTemplateModel to domain DocumentTemplate
func (m *DocumentTemplateModel) ToDomain() *template.DocumentTemplate {
	return &template.DocumentTemplate{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		HTMLContent: m.HTMLContent,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// DocumentTemplateModelFromDomain creates a DocumentTemplateModel from a domain DocumentTemplate
func DocumentTemplateModelFromDomain(t *template.DocumentTemplate) *DocumentTemplateModel {
	return &DocumentTemplateModel{
		ID:          t.ID,
		Slug:        t.Slug,
		Name:        t.Name,
		HTMLContent: t.HTMLContent,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// AgreementModel is the GORM model for the agreements table
type AgreementModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	AgreementNumber  string    `gorm:"column:agreement_number;type:varchar(50);not null;uniqueIndex"`
	DebtorName       string    `gorm:"column:debtor_name;type:varchar(200);not null"`
	DebtorDocumentID string    `gorm:"column:debtor_document_id;type:varchar(30);not null"`
	VendorDocumentID string    `gorm:"column:vendor_document_id;type:varchar(100)"`
	Status           string    `gorm:"type:varchar(20);not null;default:'ENVIADO'"`
	ArchiveKey       string    `gorm:"column:archive_key;type:varchar(300)"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for AgreementModel
func (AgreementModel) TableName() string {
	return "agreements"
}

// ToDomain converts AgreementModel to domain Record
func (m *AgreementModel) ToDomain() *agreement.Record {
	return &agreement.Record{
		ID:               m.ID,
		AgreementNumber:  m.AgreementNumber,
		DebtorName:       m.DebtorName,
		DebtorDocumentID: m.DebtorDocumentID,
		VendorDocumentID: m.VendorDocumentID,
		Status:           agreement.RecordStatus(m.Status),
		ArchiveKey:       m.ArchiveKey,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// AgreementModelFromDomain creates an AgreementModel from a domain Record
func AgreementModelFromDomain(r *agreement.Record) *AgreementModel {
	return &AgreementModel{
		ID:               r.ID,
		AgreementNumber:  r.AgreementNumber,
		DebtorName:       r.DebtorName,
		DebtorDocumentID: r.DebtorDocumentID,
		VendorDocumentID: r.VendorDocumentID,
		Status:           string(r.Status),
		ArchiveKey:       r.ArchiveKey,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
