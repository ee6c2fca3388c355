// Package support files staff support tickets in ClickUp.
package support

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/futurosresidentes/backoffice/internal/infrastructure/clickup"
)

// ErrMissingSubject is returned when a ticket has no subject.
var ErrMissingSubject = errors.New("support: ticket subject is required")

// TaskCreator is the slice of the ClickUp client this service uses.
type TaskCreator interface {
	CreateTask(ctx context.Context, task *clickup.Task) (*clickup.CreatedTask, error)
}

// Ticket is one staff-filed support request.
type Ticket struct {
	Subject     string
	Description string
	MemberID    string
	ReporterID  string
	Urgent      bool
}

// Filed reports where the ticket landed.
type Filed struct {
	TaskID string `json:"taskId"`
	URL    string `json:"url"`
}

// Service files support tickets.
type Service struct {
	tasks  TaskCreator
	logger *zap.Logger
}

// NewService creates a support service
func NewService(tasks TaskCreator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tasks: tasks, logger: logger}
}

// FileTicket creates a ClickUp task for the ticket.
func (s *Service) FileTicket(ctx context.Context, ticket *Ticket) (*Filed, error) {
	if ticket.Subject == "" {
		return nil, ErrMissingSubject
	}

	description := ticket.Description
	if ticket.MemberID != "" {
		description = fmt.Sprintf("Miembro: %s\n\n%s", ticket.MemberID, description)
	}
	if ticket.ReporterID != "" {
		description = fmt.Sprintf("%s\n\nReportado por: %s", description, ticket.ReporterID)
	}

	// ClickUp priorities: 1 urgent, 3 normal
	priority := 3
	if ticket.Urgent {
		priority = 1
	}

	created, err := s.tasks.CreateTask(ctx, &clickup.Task{
		Name:        ticket.Subject,
		Description: description,
		Priority:    priority,
		Tags:        []string{"soporte"},
	})
	if err != nil {
		return nil, fmt.Errorf("filing ticket: %w", err)
	}

	s.logger.Info("support ticket filed",
		zap.String("task_id", created.ID),
		zap.String("subject", ticket.Subject))
	return &Filed{TaskID: created.ID, URL: created.URL}, nil
}
