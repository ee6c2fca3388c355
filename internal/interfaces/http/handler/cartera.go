package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	carteraapp "github.com/futurosresidentes/backoffice/internal/application/cartera"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/membership"
)

// CarteraHandler handles receivables, member blocking and payments
type CarteraHandler struct {
	BaseHandler
	service *carteraapp.Service
}

// NewCarteraHandler creates a new CarteraHandler
func NewCarteraHandler(service *carteraapp.Service) *CarteraHandler {
	return &CarteraHandler{service: service}
}

// List godoc
// @Summary      List receivables with delinquency buckets
// @Tags         cartera
// @Produce      json
// @Success      200 {object} dto.Response{data=[]carteraapp.Row}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cartera [get]
func (h *CarteraHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		h.BadGateway(c, err.Error())
		return
	}
	h.SuccessWithMeta(c, rows, int64(len(rows)))
}

// Export godoc
// @Summary      Export receivables as a CSV attachment
// @Tags         cartera
// @Produce      text/csv
// @Success      200 {string} string "CSV file"
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cartera/export [get]
func (h *CarteraHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("cartera-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.service.WriteCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; the truncated body signals the failure.
		c.Status(502)
		return
	}
	c.Status(200)
}

// Block godoc
// @Summary      Block a delinquent member
// @Tags         miembros
// @Produce      json
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /miembros/{id}/bloquear [post]
func (h *CarteraHandler) Block(c *gin.Context) {
	if err := h.service.Block(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			h.NotFound(c, "member not found")
			return
		}
		h.BadGateway(c, err.Error())
		return
	}
	h.NoContent(c)
}

// Unblock godoc
// @Summary      Unblock a member
// @Tags         miembros
// @Produce      json
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /miembros/{id}/desbloquear [post]
func (h *CarteraHandler) Unblock(c *gin.Context) {
	if err := h.service.Unblock(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			h.NotFound(c, "member not found")
			return
		}
		h.BadGateway(c, err.Error())
		return
	}
	h.NoContent(c)
}

// RecordPaymentRequest is the body of POST /pagos
type RecordPaymentRequest struct {
	MemberID  string          `json:"member_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	CityName  string          `json:"city_name"`
	Concept   string          `json:"concept"`
}

// RecordPayment godoc
// @Summary      Record a payment and issue its invoice
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "Payment data"
// @Success      200 {object} dto.Response{data=carteraapp.PaymentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pagos [post]
func (h *CarteraHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), &carteraapp.Payment{
		MemberID:  req.MemberID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		CityName:  req.CityName,
		Concept:   req.Concept,
	})
	if err != nil {
		switch {
		case errors.Is(err, membership.ErrMemberNotFound):
			h.NotFound(c, "member not found")
		case errors.Is(err, carteraapp.ErrMissingMemberID), errors.Is(err, carteraapp.ErrInvalidAmount):
			h.BadRequest(c, err.Error())
		default:
			h.BadGateway(c, err.Error())
		}
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all cartera routes
func (h *CarteraHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cartera := rg.Group("/cartera")
	{
		cartera.GET("", h.List)
		cartera.GET("/export", h.Export)
	}

	miembros := rg.Group("/miembros")
	{
		miembros.POST("/:id/bloquear", h.Block)
		miembros.POST("/:id/desbloquear", h.Unblock)
	}

	rg.POST("/pagos", h.RecordPayment)
}
