package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	carteraapp "github.com/futurosresidentes/backoffice/internal/application/cartera"
	"github.com/futurosresidentes/backoffice/internal/domain/cartera"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/membership"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/worldoffice"
)

type handlerMembers struct {
	receivables []cartera.Receivable
	member      *membership.Member
	blocked     []string
}

func (f *handlerMembers) ListReceivables(ctx context.Context) ([]cartera.Receivable, error) {
	return f.receivables, nil
}

func (f *handlerMembers) GetMember(ctx context.Context, memberID string) (*membership.Member, error) {
	if f.member == nil || f.member.ID != memberID {
		return nil, membership.ErrMemberNotFound
	}
	return f.member, nil
}

func (f *handlerMembers) BlockMember(ctx context.Context, memberID string) error {
	f.blocked = append(f.blocked, memberID)
	return nil
}

func (f *handlerMembers) UnblockMember(ctx context.Context, memberID string) error {
	return nil
}

func (f *handlerMembers) RecordPayment(ctx context.Context, record *membership.PaymentRecord) error {
	return nil
}

type handlerInvoicer struct {
	invoiceID int
}

func (f *handlerInvoicer) CreateInvoice(ctx context.Context, inv *worldoffice.Invoice) (int, error) {
	return f.invoiceID, nil
}

func newCarteraTestRouter(members *handlerMembers) *gin.Engine {
	service := carteraapp.NewService(members, nil, &handlerInvoicer{invoiceID: 7}, nil, "aviso", 1, nil)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewCarteraHandler(service).RegisterRoutes(api)
	return engine
}

func TestCarteraHandlerList(t *testing.T) {
	members := &handlerMembers{receivables: []cartera.Receivable{
		{MemberID: "m1", MemberName: "Laura Gomez", Balance: decimal.NewFromInt(500000), DaysOverdue: 45},
		{MemberID: "m2", MemberName: "Pedro Ruiz", Balance: decimal.NewFromInt(90000), DaysOverdue: 5},
	}}
	engine := newCarteraTestRouter(members)

	req := httptest.NewRequest("GET", "/api/v1/cartera", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)

	first, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "MORA_TARDIA", first["bucket"])
}

func TestCarteraHandlerExport(t *testing.T) {
	members := &handlerMembers{receivables: []cartera.Receivable{
		{MemberID: "m1", MemberName: "Laura Gomez", DocumentID: "123", Balance: decimal.NewFromInt(500000), DaysOverdue: 45},
	}}
	engine := newCarteraTestRouter(members)

	req := httptest.NewRequest("GET", "/api/v1/cartera/export", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "miembro,documento,producto")
	assert.Contains(t, w.Body.String(), "Laura Gomez")
}

func TestCarteraHandlerBlock(t *testing.T) {
	members := &handlerMembers{member: &membership.Member{ID: "m1", Name: "Laura Gomez"}}
	engine := newCarteraTestRouter(members)

	t.Run("blocks existing member", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/miembros/m1/bloquear", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"m1"}, members.blocked)
	})

	t.Run("unknown member is 404", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/miembros/nope/bloquear", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCarteraHandlerRecordPayment(t *testing.T) {
	members := &handlerMembers{member: &membership.Member{ID: "m1", Name: "Laura Gomez", DocumentID: "123"}}
	engine := newCarteraTestRouter(members)

	t.Run("records payment and issues invoice", func(t *testing.T) {
		body := `{"member_id":"m1","amount":"250000","method":"pse","reference":"ref-1"}`
		req := httptest.NewRequest("POST", "/api/v1/pagos", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, data["recorded"])
		assert.Equal(t, float64(7), data["invoiceId"])
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		body := `{"member_id":"m1","amount":"0"}`
		req := httptest.NewRequest("POST", "/api/v1/pagos", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown member is 404", func(t *testing.T) {
		body := `{"member_id":"nope","amount":"1000"}`
		req := httptest.NewRequest("POST", "/api/v1/pagos", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
