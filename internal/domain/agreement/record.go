package agreement

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus tracks where a generated agreement stands in the signature
// flow.
type RecordStatus string

const (
	StatusSent   RecordStatus = "ENVIADO"
	StatusSigned RecordStatus = "FIRMADO"
	StatusVoided RecordStatus = "ANULADO"
)

// Record is the stored trace of one generated agreement document.
type Record struct {
	ID               uuid.UUID
	AgreementNumber  string
	DebtorName       string
	DebtorDocumentID string
	VendorDocumentID string
	Status           RecordStatus
	ArchiveKey       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
