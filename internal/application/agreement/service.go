// Package agreement implements the payment-agreement document pipeline:
// template fetch, token substitution, PDF rendering and e-signature upload.
package agreement

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
	"github.com/futurosresidentes/backoffice/internal/domain/template"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/auco"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/config"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/idempotency"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/rendering"
)

// PDF margins in millimeters. The header needs the tall top margin; the
// footer block needs the bottom one.
var documentMargins = rendering.Margins{Top: 38, Bottom: 35, Left: 20, Right: 20}

// TemplateStore fetches agreement templates by slug.
type TemplateStore interface {
	FindBySlug(ctx context.Context, slug string) (*template.DocumentTemplate, error)
}

// Signer uploads documents to the e-signature vendor.
type Signer interface {
	UploadDocument(ctx context.Context, req *auco.UploadDocumentRequest) (*auco.UploadDocumentResponse, error)
}

// PDFArchiver stores generated PDFs. Failures are non-fatal for the
// signature flow.
type PDFArchiver interface {
	ArchivePDF(ctx context.Context, name string, pdf []byte) (string, error)
}

// Recorder persists a trace of each generated agreement.
type Recorder interface {
	Create(ctx context.Context, record *agreement.Record) error
}

// Result is the outcome of one generation run.
type Result struct {
	Success          bool            `json:"success"`
	DocumentID       string          `json:"documentId"`
	VendorResponse   json.RawMessage `json:"vendorResponse,omitempty"`
	HTMLPreview      string          `json:"htmlPreview,omitempty"`
	AlreadyGenerated bool            `json:"alreadyGenerated,omitempty"`
}

// Service runs the agreement-document pipeline.
type Service struct {
	templates TemplateStore
	renderer  rendering.Renderer
	signer    Signer
	archive   PDFArchiver
	recorder  Recorder
	idem      idempotency.Store
	logger    *zap.Logger

	templateSlug   string
	logoPath       string
	companyName    string
	companyTaxID   string
	companyContact string
	idempotencyTTL time.Duration

	logoOnce  sync.Once
	logoCache string

	now func() time.Time
}

// ServiceOption is a functional option for configuring the Service
type ServiceOption func(*Service)

// WithClock overrides the generation-time clock (for tests)
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the pipeline. Archive and recorder may be nil; those
// steps are skipped when absent.
func NewService(
	cfg *config.AgreementConfig,
	templates TemplateStore,
	renderer rendering.Renderer,
	signer Signer,
	archive PDFArchiver,
	recorder Recorder,
	idem idempotency.Store,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		templates:      templates,
		renderer:       renderer,
		signer:         signer,
		archive:        archive,
		recorder:       recorder,
		idem:           idem,
		logger:         logger,
		templateSlug:   cfg.TemplateSlug,
		logoPath:       cfg.LogoPath,
		companyName:    cfg.CompanyName,
		companyTaxID:   cfg.CompanyTaxID,
		companyContact: cfg.CompanyContact,
		idempotencyTTL: cfg.IdempotencyTTL,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAndUpload runs the full pipeline for one agreement. Template
// lookup and vendor upload are the only fatal steps; archive, record and
// idempotency writes degrade to warnings.
func (s *Service) GenerateAndUpload(ctx context.Context, req *agreement.Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("agreement_number", req.AgreementNumber))

	// A repeated request returns the already-issued document instead of
	// sending the debtor a duplicate legal document to sign.
	if s.idem != nil {
		if docID, found, err := s.idem.Get(ctx, req.AgreementNumber); err != nil {
			log.Warn("idempotency lookup failed, continuing", zap.Error(err))
		} else if found {
			log.Info("agreement already generated", zap.String("document_id", docID))
			return &Result{Success: true, DocumentID: docID, AlreadyGenerated: true}, nil
		}
	}

	slug := req.TemplateSlug
	if slug == "" {
		slug = s.templateSlug
	}
	tmpl, err := s.templates.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("agreement template %q: %w", slug, err)
	}

	html := substituteTokens(tmpl.HTMLContent, s.tokenValues(req, s.now()))
	html = injectBaseStyles(html)
	html = wrapSignatureRegion(html)
	preview := previewHTML(html)

	rendered, err := s.renderer.Render(ctx, &rendering.RenderRequest{
		HTML:       html,
		Margins:    documentMargins,
		HeaderHTML: headerHTML(s.logoDataURI()),
		FooterHTML: footerHTML(s.companyName, s.companyTaxID, s.companyContact),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering agreement %s: %w", req.AgreementNumber, err)
	}

	uploaded, err := s.signer.UploadDocument(ctx, &auco.UploadDocumentRequest{
		Subject: "Acuerdo de pago " + req.AgreementNumber,
		Message: s.signatureMessage(req),
		PDF:     rendered.PDFData,
		Signer: auco.Signer{
			Name:  req.DebtorFullName(),
			Email: req.DebtorEmail,
			Phone: req.DebtorPhone,
		},
	})
	if err != nil {
		return nil, err
	}

	archiveKey := s.archivePDF(ctx, req, rendered.PDFData, log)
	s.recordAgreement(ctx, req, uploaded.DocumentID, archiveKey, log)

	if s.idem != nil {
		if err := s.idem.Set(ctx, req.AgreementNumber, uploaded.DocumentID, s.idempotencyTTL); err != nil {
			log.Warn("idempotency write failed", zap.Error(err))
		}
	}

	log.Info("agreement generated and sent for signature",
		zap.String("document_id", uploaded.DocumentID),
		zap.Int("pdf_bytes", len(rendered.PDFData)))

	return &Result{
		Success:        true,
		DocumentID:     uploaded.DocumentID,
		VendorResponse: uploaded.Raw,
		HTMLPreview:    preview,
	}, nil
}

// signatureMessage builds the body of the signature request email: it points
// the debtor at their first installment.
func (s *Service) signatureMessage(req *agreement.Request) string {
	msg := fmt.Sprintf("Firma tu acuerdo de pago %s.", req.AgreementNumber)
	if !req.FirstInstallmentAmount.IsZero() {
		msg += fmt.Sprintf(" Primera cuota: $ %s", formatMonto(req.FirstInstallmentAmount))
		if req.FirstInstallmentDueDate != "" {
			msg += fmt.Sprintf(" con fecha límite %s", formatDueDate(req.FirstInstallmentDueDate))
		}
		msg += "."
	}
	if req.FirstPaymentLink != "" {
		msg += " Paga aquí: " + req.FirstPaymentLink
	}
	return msg
}

func (s *Service) archivePDF(ctx context.Context, req *agreement.Request, pdf []byte, log *zap.Logger) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.ArchivePDF(ctx, req.AgreementNumber+".pdf", pdf)
	if err != nil {
		log.Warn("PDF archive failed", zap.Error(err))
		return ""
	}
	return key
}

func (s *Service) recordAgreement(ctx context.Context, req *agreement.Request, documentID, archiveKey string, log *zap.Logger) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Create(ctx, &agreement.Record{
		AgreementNumber:  req.AgreementNumber,
		DebtorName:       req.DebtorFullName(),
		DebtorDocumentID: req.DebtorDocumentID,
		VendorDocumentID: documentID,
		Status:           agreement.StatusSent,
		ArchiveKey:       archiveKey,
	})
	if err != nil {
		log.Warn("agreement record write failed", zap.Error(err))
	}
}
