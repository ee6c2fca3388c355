// Package auco wraps the Auco e-signature API. The only operation this
// service needs is uploading a PDF with a signer profile and getting back the
// vendor-assigned document id.
package auco

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxResponseSize = 1 * 1024 * 1024

// Errors for Auco configuration and responses
var (
	ErrMissingBaseURL     = errors.New("auco: base URL is required")
	ErrMissingAPIKey      = errors.New("auco: API key is required")
	ErrMissingSender      = errors.New("auco: sender email is required")
	ErrEmptyPDF           = errors.New("auco: document PDF is empty")
	ErrMissingSigner      = errors.New("auco: signer name and email are required")
	ErrMissingDocumentID  = errors.New("auco: vendor response did not include a document id")
)

// Config holds Auco API settings
type Config struct {
	BaseURL        string
	APIKey         string
	SenderEmail    string
	TimeoutSeconds int
}

// Validate validates the Auco configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.SenderEmail == "" {
		return ErrMissingSender
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Signer identifies the person who must sign the document.
type Signer struct {
	Name  string
	Email string
	Phone string
}

// UploadDocumentRequest carries one document upload.
type UploadDocumentRequest struct {
	Subject string
	Message string
	PDF     []byte
	Signer  Signer
}

// UploadDocumentResponse is the parsed vendor reply.
type UploadDocumentResponse struct {
	DocumentID string
	Raw        json.RawMessage
}

// Client is the Auco API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Auco client with the given configuration
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

type signProfileEntry struct {
	Order int    `json:"order"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Label bool   `json:"label"`
}

type uploadOptions struct {
	Whatsapp bool `json:"whatsapp"`
}

type uploadPayload struct {
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Message     string             `json:"message"`
	File        string             `json:"file"`
	SignProfile []signProfileEntry `json:"signProfile"`
	Options     uploadOptions      `json:"options"`
}

type uploadResponse struct {
	Document string `json:"document"`
}

// UploadDocument sends the PDF and signer metadata to the vendor. A non-2xx
// reply is fatal and carries the vendor body in the error, since a skipped
// legal document must surface loudly.
func (c *Client) UploadDocument(ctx context.Context, req *UploadDocumentRequest) (*UploadDocumentResponse, error) {
	if len(req.PDF) == 0 {
		return nil, ErrEmptyPDF
	}
	if req.Signer.Name == "" || req.Signer.Email == "" {
		return nil, ErrMissingSigner
	}

	payload := uploadPayload{
		Name:    req.Subject,
		Email:   c.config.SenderEmail,
		Message: req.Message,
		File:    base64.StdEncoding.EncodeToString(req.PDF),
		SignProfile: []signProfileEntry{{
			Order: 0,
			Name:  req.Signer.Name,
			Email: req.Signer.Email,
			Phone: req.Signer.Phone,
			Label: true,
		}},
		Options: uploadOptions{Whatsapp: false},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("auco: failed to encode upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/ext/document/upload", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auco: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Auco expects the raw key, not a Bearer prefix
	httpReq.Header.Set("Authorization", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("auco: upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("auco: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("document upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("auco: document upload failed with status %d: %s", resp.StatusCode, respBody)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("auco: invalid upload response: %w", err)
	}
	if parsed.Document == "" {
		return nil, ErrMissingDocumentID
	}

	c.logger.Info("document uploaded for signature",
		zap.String("document_id", parsed.Document),
		zap.Int("pdf_bytes", len(req.PDF)))

	return &UploadDocumentResponse{
		DocumentID: parsed.Document,
		Raw:        json.RawMessage(respBody),
	}, nil
}
