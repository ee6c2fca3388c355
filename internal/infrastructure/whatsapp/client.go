// Package whatsapp sends template notifications through the WhatsApp Business
// Cloud API. Used for best-effort notices (blocks, reminders); callers treat
// failures as non-fatal.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Errors for WhatsApp configuration and requests
var (
	ErrMissingBaseURL = errors.New("whatsapp: base URL is required")
	ErrMissingToken   = errors.New("whatsapp: access token is required")
	ErrMissingPhoneID = errors.New("whatsapp: phone number id is required")
	ErrMissingTo      = errors.New("whatsapp: recipient phone is required")
)

// Config holds WhatsApp Cloud API settings
type Config struct {
	BaseURL        string
	AccessToken    string
	PhoneNumberID  string
	TimeoutSeconds int
}

// Validate validates the WhatsApp configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.AccessToken == "" {
		return ErrMissingToken
	}
	if c.PhoneNumberID == "" {
		return ErrMissingPhoneID
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// TemplateMessage is one outbound template send.
type TemplateMessage struct {
	To           string
	TemplateName string
	LanguageCode string
	BodyParams   []string
}

// Client is the WhatsApp Cloud API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new WhatsApp client with the given configuration
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

type templateParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string          `json:"type"`
	Parameters []templateParam `json:"parameters"`
}

type templatePayload struct {
	Name       string              `json:"name"`
	Language   map[string]string   `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type messagePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

// SendTemplateMessage delivers one pre-approved template to a recipient.
func (c *Client) SendTemplateMessage(ctx context.Context, msg *TemplateMessage) error {
	if msg.To == "" {
		return ErrMissingTo
	}
	lang := msg.LanguageCode
	if lang == "" {
		lang = "es_CO"
	}

	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template: templatePayload{
			Name:     msg.TemplateName,
			Language: map[string]string{"code": lang},
		},
	}
	if len(msg.BodyParams) > 0 {
		params := make([]templateParam, 0, len(msg.BodyParams))
		for _, p := range msg.BodyParams {
			params = append(params, templateParam{Type: "text", Text: p})
		}
		payload.Template.Components = []templateComponent{{Type: "body", Parameters: params}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.config.BaseURL, c.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whatsapp: send failed with status %d: %s", resp.StatusCode, respBody)
	}

	c.logger.Debug("template message sent",
		zap.String("template", msg.TemplateName),
		zap.String("to", msg.To))
	return nil
}
