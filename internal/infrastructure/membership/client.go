// Package membership wraps the internal membership platform API: receivables,
// member lookup, access blocking and payment recording.
package membership

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

	"github.com/futurosresidentes/backoffice/internal/domain/cartera"
)

const maxResponseSize = 10 * 1024 * 1024

// Errors for membership configuration and responses
var (
	ErrMissingBaseURL = errors.New("membership: base URL is required")
	ErrMissingAPIKey  = errors.New("membership: API key is required")
	ErrMemberNotFound = errors.New("membership: member not found")
)

// Config holds membership API settings
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Validate validates the membership configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	return nil
}

// Member is a member profile as reported by the platform.
type Member struct {
	ID         string
	Name       string
	DocumentID string
	Email      string
	Phone      string
	Blocked    bool
}

// PaymentRecord registers one payment against a member's balance.
type PaymentRecord struct {
	MemberID  string
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
}

// Client is the membership API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new membership client with the given configuration
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

type receivableWire struct {
	MemberID    string `json:"memberId"`
	MemberName  string `json:"memberName"`
	DocumentID  string `json:"documentId"`
	ProductName string `json:"productName"`
	Balance     string `json:"balance"`
	DaysOverdue int    `json:"daysOverdue"`
	Blocked     bool   `json:"blocked"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type memberWire struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DocumentID string `json:"documentId"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Blocked    bool   `json:"blocked"`
}

// ListReceivables fetches every member with an outstanding balance.
func (c *Client) ListReceivables(ctx context.Context) ([]cartera.Receivable, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/receivables", nil)
	if err != nil {
		return nil, err
	}

	var wire []receivableWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("membership: invalid receivables response: %w", err)
	}

	rows := make([]cartera.Receivable, 0, len(wire))
	for _, w := range wire {
		balance, err := decimal.NewFromString(w.Balance)
		if err != nil {
			c.logger.Warn("skipping receivable with unparsable balance",
				zap.String("member_id", w.MemberID),
				zap.String("balance", w.Balance))
			continue
		}
		rows = append(rows, cartera.Receivable{
			MemberID:    w.MemberID,
			MemberName:  w.MemberName,
			DocumentID:  w.DocumentID,
			ProductName: w.ProductName,
			Balance:     balance,
			DaysOverdue: w.DaysOverdue,
			Blocked:     w.Blocked,
			Email:       w.Email,
			Phone:       w.Phone,
		})
	}
	return rows, nil
}

// GetMember fetches one member profile by platform id.
func (c *Client) GetMember(ctx context.Context, memberID string) (*Member, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/members/"+memberID, nil)
	if err != nil {
		return nil, err
	}

	var wire memberWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("membership: invalid member response: %w", err)
	}
	return &Member{
		ID:         wire.ID,
		Name:       wire.Name,
		DocumentID: wire.DocumentID,
		Email:      wire.Email,
		Phone:      wire.Phone,
		Blocked:    wire.Blocked,
	}, nil
}

// BlockMember suspends a member's platform access.
func (c *Client) BlockMember(ctx context.Context, memberID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/members/"+memberID+"/block", nil)
	return err
}

// UnblockMember restores a member's platform access.
func (c *Client) UnblockMember(ctx context.Context, memberID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/members/"+memberID+"/unblock", nil)
	return err
}

// RecordPayment registers a payment on the member's account.
func (c *Client) RecordPayment(ctx context.Context, record *PaymentRecord) error {
	payload := map[string]interface{}{
		"memberId":  record.MemberID,
		"amount":    record.Amount.String(),
		"method":    record.Method,
		"reference": record.Reference,
		"paidAt":    record.PaidAt.UTC().Format(time.RFC3339),
	}
	_, err := c.do(ctx, http.MethodPost, "/api/payments", payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("membership: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("membership: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("membership: request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("membership: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrMemberNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("membership: %s %s returned status %d: %s",
			method, path, resp.StatusCode, truncate(body, 512))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
