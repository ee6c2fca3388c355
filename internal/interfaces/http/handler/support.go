package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	supportapp "github.com/futurosresidentes/backoffice/internal/application/support"
)

// SupportHandler handles support ticket endpoints
type SupportHandler struct {
	BaseHandler
	service *supportapp.Service
}

// NewSupportHandler creates a new SupportHandler
func NewSupportHandler(service *supportapp.Service) *SupportHandler {
	return &SupportHandler{service: service}
}

// FileTicketRequest is the body of POST /soporte/tickets
type FileTicketRequest struct {
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description"`
	MemberID    string `json:"member_id"`
	ReporterID  string `json:"reporter_id"`
	Urgent      bool   `json:"urgent"`
}

// FileTicket godoc
// @Summary      File a support ticket
// @Tags         soporte
// @Accept       json
// @Produce      json
// @Param        request body FileTicketRequest true "Ticket data"
// @Success      201 {object} dto.Response{data=supportapp.Filed}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /soporte/tickets [post]
func (h *SupportHandler) FileTicket(c *gin.Context) {
	var req FileTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filed, err := h.service.FileTicket(c.Request.Context(), &supportapp.Ticket{
		Subject:     req.Subject,
		Description: req.Description,
		MemberID:    req.MemberID,
		ReporterID:  req.ReporterID,
		Urgent:      req.Urgent,
	})
	if err != nil {
		if errors.Is(err, supportapp.ErrMissingSubject) {
			h.BadRequest(c, err.Error())
			return
		}
		h.BadGateway(c, err.Error())
		return
	}

	h.Created(c, filed)
}

// RegisterRoutes registers all support routes
func (h *SupportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/soporte/tickets", h.FileTicket)
}
