// Package clickup creates support tickets as tasks in a ClickUp list.
package clickup

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

// Errors for ClickUp configuration and responses
var (
	ErrMissingBaseURL = errors.New("clickup: base URL is required")
	ErrMissingToken   = errors.New("clickup: API token is required")
	ErrMissingListID  = errors.New("clickup: list id is required")
	ErrMissingName    = errors.New("clickup: task name is required")
)

// Config holds ClickUp API settings
type Config struct {
	BaseURL        string
	APIToken       string
	ListID         string
	TimeoutSeconds int
}

// Validate validates the ClickUp configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.APIToken == "" {
		return ErrMissingToken
	}
	if c.ListID == "" {
		return ErrMissingListID
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// Task is one support ticket to file.
type Task struct {
	Name        string
	Description string
	Priority    int
	Tags        []string
}

// CreatedTask is the vendor's reply for a filed task.
type CreatedTask struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client is the ClickUp API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ClickUp client with the given configuration
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

// CreateTask files a task in the configured list and returns its id and URL.
func (c *Client) CreateTask(ctx context.Context, task *Task) (*CreatedTask, error) {
	if task.Name == "" {
		return nil, ErrMissingName
	}

	payload := map[string]interface{}{
		"name":        task.Name,
		"description": task.Description,
	}
	if task.Priority > 0 {
		payload["priority"] = task.Priority
	}
	if len(task.Tags) > 0 {
		payload["tags"] = task.Tags
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("clickup: failed to encode task: %w", err)
	}

	url := fmt.Sprintf("%s/list/%s/task", c.config.BaseURL, c.config.ListID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("clickup: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// ClickUp personal tokens go in raw, without a scheme prefix
	req.Header.Set("Authorization", c.config.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clickup: create task request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("clickup: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("clickup: create task failed with status %d: %s", resp.StatusCode, respBody)
	}

	var created CreatedTask
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("clickup: invalid create task response: %w", err)
	}

	c.logger.Info("support ticket filed",
		zap.String("task_id", created.ID),
		zap.String("name", task.Name))
	return &created, nil
}
