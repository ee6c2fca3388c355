// Package rendering converts agreement HTML into print-ready PDFs through a
// headless Chrome instance.
package rendering

import (
	"context"
	"time"
)

// Margins in millimeters.
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// Margins in millimeters
	Margins Margins
	// HeaderHTML is repeated at the top of every page (optional)
	HeaderHTML string
	// FooterHTML is repeated at the bottom of every page (optional)
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// Renderer defines the interface for rendering HTML to PDF
type Renderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
