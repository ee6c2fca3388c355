// Package worldoffice wraps the World Office accounting API: city directory
// listing (backing the city cache) and sales-invoice creation.
package worldoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from World Office (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors for World Office configuration and responses
var (
	ErrMissingBaseURL    = errors.New("worldoffice: base URL is required")
	ErrMissingToken      = errors.New("worldoffice: API token is required")
	ErrVendorStatus      = errors.New("worldoffice: vendor reported non-OK status")
	ErrInvalidResponse   = errors.New("worldoffice: invalid vendor response")
	ErrInvoiceIncomplete = errors.New("worldoffice: invoice is missing required fields")
)

// Config holds World Office API settings
type Config struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

// Validate validates the World Office configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// City is one entry of the vendor's city directory.
// NormalizedName is filled by the cache, not by the vendor.
type City struct {
	ID             int
	Name           string
	NormalizedName string
	Code           string
	StateID        int
	StateName      string
}

// Invoice is a sales invoice to register against the accounting system.
type Invoice struct {
	CustomerName       string
	CustomerDocumentID string
	CityID             int
	Amount             decimal.Decimal
	Concept            string
}

// Client is the World Office API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new World Office client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

type listCitiesRequest struct {
	ColumnaOrdenar     string `json:"columnaOrdenar"`
	Pagina             int    `json:"pagina"`
	RegistrosPorPagina int    `json:"registrosPorPagina"`
	Orden              string `json:"orden"`
	RegistroInicial    int    `json:"registroInicial"`
}

type cityRow struct {
	ID                    int    `json:"id"`
	Nombre                string `json:"nombre"`
	Codigo                string `json:"codigo"`
	UbicacionDepartamento struct {
		ID     int    `json:"id"`
		Nombre string `json:"nombre"`
	} `json:"ubicacionDepartamento"`
}

type listCitiesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Content []cityRow `json:"content"`
	} `json:"data"`
}

// ListCities fetches the vendor's city directory in a single page.
// The directory is ~1100 rows, well under the 2000-row page size.
func (c *Client) ListCities(ctx context.Context) ([]City, error) {
	body := listCitiesRequest{
		ColumnaOrdenar:     "id",
		Pagina:             0,
		RegistrosPorPagina: 2000,
		Orden:              "ASC",
		RegistroInicial:    0,
	}

	respBody, err := c.doPost(ctx, "/api/v1/ciudad/listarCiudades", body)
	if err != nil {
		return nil, err
	}

	var resp listCitiesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: %q", ErrVendorStatus, resp.Status)
	}

	cities := make([]City, 0, len(resp.Data.Content))
	for _, row := range resp.Data.Content {
		cities = append(cities, City{
			ID:        row.ID,
			Name:      row.Nombre,
			Code:      row.Codigo,
			StateID:   row.UbicacionDepartamento.ID,
			StateName: row.UbicacionDepartamento.Nombre,
		})
	}

	return cities, nil
}

type createInvoiceRequest struct {
	TerceroNombre    string `json:"terceroNombre"`
	TerceroDocumento string `json:"terceroDocumento"`
	CiudadID         int    `json:"ciudadId"`
	Valor            string `json:"valor"`
	Concepto         string `json:"concepto"`
}

type createInvoiceResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID int `json:"id"`
	} `json:"data"`
}

// CreateInvoice registers a sales invoice and returns the vendor-assigned id.
func (c *Client) CreateInvoice(ctx context.Context, inv *Invoice) (int, error) {
	if inv == nil || inv.CustomerDocumentID == "" || inv.CityID == 0 || !inv.Amount.IsPositive() {
		return 0, ErrInvoiceIncomplete
	}

	body := createInvoiceRequest{
		TerceroNombre:    inv.CustomerName,
		TerceroDocumento: inv.CustomerDocumentID,
		CiudadID:         inv.CityID,
		Valor:            inv.Amount.StringFixed(2),
		Concepto:         inv.Concept,
	}

	respBody, err := c.doPost(ctx, "/api/v1/documentoventa/crearDocumentoVenta", body)
	if err != nil {
		return 0, err
	}

	var resp createInvoiceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Status != "OK" {
		return 0, fmt.Errorf("%w: %q", ErrVendorStatus, resp.Status)
	}

	return resp.Data.ID, nil
}

// doPost sends a JSON POST to the vendor and returns the raw response body.
func (c *Client) doPost(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("worldoffice: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("worldoffice: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worldoffice: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("worldoffice: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("World Office returned non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("worldoffice: %s returned status %d: %s", path, resp.StatusCode, truncate(respBody, 512))
	}

	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
