package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agreementapp "github.com/futurosresidentes/backoffice/internal/application/agreement"
	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
	"github.com/futurosresidentes/backoffice/internal/domain/template"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/auco"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/config"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/persistence"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/rendering"
)

type handlerTemplates struct {
	tmpl *template.DocumentTemplate
}

func (f *handlerTemplates) FindBySlug(ctx context.Context, slug string) (*template.DocumentTemplate, error) {
	if f.tmpl == nil || f.tmpl.Slug != slug {
		return nil, persistence.ErrNotFound
	}
	return f.tmpl, nil
}

type handlerRenderer struct{}

func (handlerRenderer) Render(ctx context.Context, req *rendering.RenderRequest) (*rendering.RenderResult, error) {
	return &rendering.RenderResult{PDFData: []byte("%PDF-1.4 test")}, nil
}

type handlerSigner struct{}

func (handlerSigner) UploadDocument(ctx context.Context, req *auco.UploadDocumentRequest) (*auco.UploadDocumentResponse, error) {
	return &auco.UploadDocumentResponse{DocumentID: "doc-99"}, nil
}

type handlerRecords struct {
	records []agreement.Record
}

func (f *handlerRecords) List(ctx context.Context, limit int) ([]agreement.Record, error) {
	return f.records, nil
}

func (f *handlerRecords) FindByAgreementNumber(ctx context.Context, number string) (*agreement.Record, error) {
	for i := range f.records {
		if f.records[i].AgreementNumber == number {
			return &f.records[i], nil
		}
	}
	return nil, persistence.ErrNotFound
}

func newAgreementTestRouter(t *testing.T, records *handlerRecords) *gin.Engine {
	t.Helper()
	service := agreementapp.NewService(
		&config.AgreementConfig{TemplateSlug: "acuerdo-de-pago", IdempotencyTTL: time.Hour},
		&handlerTemplates{tmpl: &template.DocumentTemplate{
			Slug:        "acuerdo-de-pago",
			HTMLContent: "<html><body><p>Acuerdo {{consecutivo}}</p>{{firma}}</body></html>",
		}},
		handlerRenderer{},
		handlerSigner{},
		nil,
		nil,
		nil,
		nil,
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewAgreementHandler(service, records).RegisterRoutes(api)
	return engine
}

func TestAgreementHandlerGenerate(t *testing.T) {
	engine := newAgreementTestRouter(t, &handlerRecords{})

	t.Run("generates document", func(t *testing.T) {
		body := `{
			"agreement_number": "FR-100",
			"debtor_given_names": "Laura",
			"debtor_family_names": "Gomez",
			"debtor_document_id": "1020304050",
			"debtor_email": "laura@example.com",
			"total_amount": "1500000"
		}`
		req := httptest.NewRequest("POST", "/api/v1/acuerdos", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "doc-99", data["documentId"])
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/acuerdos", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/acuerdos", strings.NewReader(`{"agreement_number":"FR-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown template slug maps to 404", func(t *testing.T) {
		body := `{
			"template_slug": "no-existe",
			"agreement_number": "FR-101",
			"debtor_given_names": "Laura",
			"debtor_family_names": "Gomez",
			"debtor_document_id": "1020304050",
			"debtor_email": "laura@example.com",
			"total_amount": "1500000"
		}`
		req := httptest.NewRequest("POST", "/api/v1/acuerdos", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAgreementHandlerRecords(t *testing.T) {
	records := &handlerRecords{records: []agreement.Record{
		{AgreementNumber: "FR-1", DebtorName: "Laura Gomez", Status: agreement.StatusSent},
		{AgreementNumber: "FR-2", DebtorName: "Pedro Ruiz", Status: agreement.StatusSigned},
	}}
	engine := newAgreementTestRouter(t, records)

	t.Run("lists records", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/acuerdos", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data, ok := resp.Data.([]interface{})
		require.True(t, ok)
		assert.Len(t, data, 2)
	})

	t.Run("fetches one record", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/acuerdos/FR-2", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Pedro Ruiz", data["debtor_name"])
	})

	t.Run("unknown number is 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/acuerdos/FR-404", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
