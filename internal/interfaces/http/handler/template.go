package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/futurosresidentes/backoffice/internal/domain/template"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/persistence"
)

// TemplateAdmin is the repository slice the template endpoints use.
type TemplateAdmin interface {
	FindBySlug(ctx context.Context, slug string) (*template.DocumentTemplate, error)
	Upsert(ctx context.Context, t *template.DocumentTemplate) error
	List(ctx context.Context) ([]template.DocumentTemplate, error)
}

// TemplateHandler handles document template administration
type TemplateHandler struct {
	BaseHandler
	templates TemplateAdmin
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templates TemplateAdmin) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// UpsertTemplateRequest is the body of PUT /plantillas/:slug
type UpsertTemplateRequest struct {
	Name        string `json:"name"`
	HTMLContent string `json:"html_content" binding:"required"`
}

// TemplateResponse is a document template without its HTML body
type TemplateResponse struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
}

// Upsert godoc
// @Summary      Create or replace a document template
// @Tags         plantillas
// @Accept       json
// @Produce      json
// @Param        request body UpsertTemplateRequest true "Template content"
// @Success      200 {object} dto.Response{data=TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /plantillas/{slug} [put]
func (h *TemplateHandler) Upsert(c *gin.Context) {
	var req UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tmpl := &template.DocumentTemplate{
		Slug:        c.Param("slug"),
		Name:        req.Name,
		HTMLContent: req.HTMLContent,
	}
	if err := h.templates.Upsert(c.Request.Context(), tmpl); err != nil {
		if errors.Is(err, template.ErrMissingSlug) || errors.Is(err, template.ErrMissingContent) {
			h.BadRequest(c, err.Error())
			return
		}
		h.InternalError(c, "could not save template")
		return
	}

	h.Success(c, toTemplateResponse(tmpl))
}

// Get godoc
// @Summary      Get one template including its HTML body
// @Tags         plantillas
// @Produce      json
// @Success      200 {object} dto.Response{data=template.DocumentTemplate}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /plantillas/{slug} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tmpl, err := h.templates.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.NotFound(c, "template not found")
			return
		}
		h.InternalError(c, "could not load template")
		return
	}
	h.Success(c, tmpl)
}

// List godoc
// @Summary      List document templates
// @Tags         plantillas
// @Produce      json
// @Success      200 {object} dto.Response{data=[]TemplateResponse}
// @Router       /plantillas [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		h.InternalError(c, "could not list templates")
		return
	}
	out := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, toTemplateResponse(&templates[i]))
	}
	h.SuccessWithMeta(c, out, int64(len(out)))
}

func toTemplateResponse(t *template.DocumentTemplate) TemplateResponse {
	return TemplateResponse{
		Slug:      t.Slug,
		Name:      t.Name,
		UpdatedAt: t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RegisterRoutes registers all template routes
func (h *TemplateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plantillas := rg.Group("/plantillas")
	{
		plantillas.GET("", h.List)
		plantillas.GET("/:slug", h.Get)
		plantillas.PUT("/:slug", h.Upsert)
	}
}
