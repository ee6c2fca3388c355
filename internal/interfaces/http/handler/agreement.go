package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	agreementapp "github.com/futurosresidentes/backoffice/internal/application/agreement"
	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/persistence"
)

// AgreementRecords lists persisted agreement traces.
type AgreementRecords interface {
	List(ctx context.Context, limit int) ([]agreement.Record, error)
	FindByAgreementNumber(ctx context.Context, number string) (*agreement.Record, error)
}

// AgreementHandler handles agreement generation endpoints
type AgreementHandler struct {
	BaseHandler
	service *agreementapp.Service
	records AgreementRecords
}

// NewAgreementHandler creates a new AgreementHandler
func NewAgreementHandler(service *agreementapp.Service, records AgreementRecords) *AgreementHandler {
	return &AgreementHandler{service: service, records: records}
}

// InstallmentRequest is one payment-plan entry in the generation request
type InstallmentRequest struct {
	Number      int             `json:"number" binding:"min=0"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     string          `json:"due_date" binding:"required"`
	PaymentLink string          `json:"payment_link"`
}

// GenerateAgreementRequest is the body of POST /acuerdos
type GenerateAgreementRequest struct {
	TemplateSlug string `json:"template_slug"`

	AgreementNumber   string `json:"agreement_number" binding:"required"`
	ProductName       string `json:"product_name"`
	DebtorGivenNames  string `json:"debtor_given_names"`
	DebtorFamilyNames string `json:"debtor_family_names"`
	DebtorName        string `json:"debtor_name"`
	DebtorDocumentID  string `json:"debtor_document_id" binding:"required"`
	DebtorEmail       string `json:"debtor_email" binding:"required,email"`
	DebtorPhone       string `json:"debtor_phone"`

	TotalAmount  decimal.Decimal      `json:"total_amount" binding:"required"`
	Installments []InstallmentRequest `json:"installments"`

	PlatformStartPolicy string `json:"platform_start_policy"`
	SalesRepName        string `json:"sales_rep_name"`

	FirstPaymentLink        string          `json:"first_payment_link"`
	FirstInstallmentAmount  decimal.Decimal `json:"first_installment_amount"`
	FirstInstallmentDueDate string          `json:"first_installment_due_date"`
}

func (r *GenerateAgreementRequest) toDomain() *agreement.Request {
	req := &agreement.Request{
		TemplateSlug:            r.TemplateSlug,
		AgreementNumber:         r.AgreementNumber,
		ProductName:             r.ProductName,
		DebtorName:              r.DebtorName,
		DebtorGivenNames:        r.DebtorGivenNames,
		DebtorFamilyNames:       r.DebtorFamilyNames,
		DebtorDocumentID:        r.DebtorDocumentID,
		DebtorEmail:             r.DebtorEmail,
		DebtorPhone:             r.DebtorPhone,
		TotalAmount:             r.TotalAmount,
		PlatformStartPolicy:     r.PlatformStartPolicy,
		SalesRepName:            r.SalesRepName,
		FirstPaymentLink:        r.FirstPaymentLink,
		FirstInstallmentAmount:  r.FirstInstallmentAmount,
		FirstInstallmentDueDate: r.FirstInstallmentDueDate,
	}
	for _, i := range r.Installments {
		req.Installments = append(req.Installments, agreement.Installment{
			Number:      i.Number,
			Amount:      i.Amount,
			DueDate:     i.DueDate,
			PaymentLink: i.PaymentLink,
		})
	}
	return req
}

// Generate godoc
// @Summary      Generate an agreement document and send it for signature
// @Tags         acuerdos
// @Accept       json
// @Produce      json
// @Param        request body GenerateAgreementRequest true "Agreement data"
// @Success      200 {object} dto.Response{data=agreementapp.Result}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /acuerdos [post]
func (h *AgreementHandler) Generate(c *gin.Context) {
	var req GenerateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GenerateAndUpload(c.Request.Context(), req.toDomain())
	if err != nil {
		switch {
		case isAgreementValidationError(err):
			h.BadRequest(c, err.Error())
		case errors.Is(err, persistence.ErrNotFound):
			h.NotFound(c, err.Error())
		default:
			h.BadGateway(c, err.Error())
		}
		return
	}

	h.Success(c, result)
}

// AgreementRecordResponse is one persisted agreement trace
type AgreementRecordResponse struct {
	AgreementNumber  string `json:"agreement_number"`
	DebtorName       string `json:"debtor_name"`
	DebtorDocumentID string `json:"debtor_document_id"`
	VendorDocumentID string `json:"vendor_document_id"`
	Status           string `json:"status"`
	ArchiveKey       string `json:"archive_key,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// List godoc
// @Summary      List generated agreements
// @Tags         acuerdos
// @Produce      json
// @Success      200 {object} dto.Response{data=[]AgreementRecordResponse}
// @Router       /acuerdos [get]
func (h *AgreementHandler) List(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), 0)
	if err != nil {
		h.InternalError(c, "could not list agreements")
		return
	}
	out := make([]AgreementRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResponse(&r))
	}
	h.SuccessWithMeta(c, out, int64(len(out)))
}

// Get godoc
// @Summary      Get one agreement by its number
// @Tags         acuerdos
// @Produce      json
// @Success      200 {object} dto.Response{data=AgreementRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /acuerdos/{numero} [get]
func (h *AgreementHandler) Get(c *gin.Context) {
	record, err := h.records.FindByAgreementNumber(c.Request.Context(), c.Param("numero"))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.NotFound(c, "agreement not found")
			return
		}
		h.InternalError(c, "could not load agreement")
		return
	}
	h.Success(c, toRecordResponse(record))
}

func toRecordResponse(r *agreement.Record) AgreementRecordResponse {
	return AgreementRecordResponse{
		AgreementNumber:  r.AgreementNumber,
		DebtorName:       r.DebtorName,
		DebtorDocumentID: r.DebtorDocumentID,
		VendorDocumentID: r.VendorDocumentID,
		Status:           string(r.Status),
		ArchiveKey:       r.ArchiveKey,
		CreatedAt:        r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func isAgreementValidationError(err error) bool {
	return errors.Is(err, agreement.ErrMissingAgreementNumber) ||
		errors.Is(err, agreement.ErrMissingDebtorName) ||
		errors.Is(err, agreement.ErrMissingDebtorDocument) ||
		errors.Is(err, agreement.ErrMissingDebtorEmail) ||
		errors.Is(err, agreement.ErrInvalidTotalAmount)
}

// RegisterRoutes registers all agreement routes
func (h *AgreementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	acuerdos := rg.Group("/acuerdos")
	{
		acuerdos.POST("", h.Generate)
		acuerdos.GET("", h.List)
		acuerdos.GET("/:numero", h.Get)
	}
}
