package support

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurosresidentes/backoffice/internal/infrastructure/clickup"
)

type fakeTasks struct {
	task *clickup.Task
	err  error
}

func (f *fakeTasks) CreateTask(ctx context.Context, task *clickup.Task) (*clickup.CreatedTask, error) {
	f.task = task
	if f.err != nil {
		return nil, f.err
	}
	return &clickup.CreatedTask{ID: "86abc", URL: "https://app.clickup.com/t/86abc"}, nil
}

func TestFileTicket(t *testing.T) {
	tasks := &fakeTasks{}
	svc := NewService(tasks, nil)

	filed, err := svc.FileTicket(context.Background(), &Ticket{
		Subject:     "No llega el correo de firma",
		Description: "El correo de Auco nunca llegó",
		MemberID:    "m-1",
		ReporterID:  "staff-7",
		Urgent:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "86abc", filed.TaskID)

	assert.Equal(t, "No llega el correo de firma", tasks.task.Name)
	assert.Contains(t, tasks.task.Description, "Miembro: m-1")
	assert.Contains(t, tasks.task.Description, "Reportado por: staff-7")
	assert.Equal(t, 1, tasks.task.Priority)
	assert.Equal(t, []string{"soporte"}, tasks.task.Tags)
}

func TestFileTicketDefaults(t *testing.T) {
	tasks := &fakeTasks{}
	svc := NewService(tasks, nil)

	_, err := svc.FileTicket(context.Background(), &Ticket{Subject: "Duda"})
	require.NoError(t, err)
	assert.Equal(t, 3, tasks.task.Priority)
	assert.Equal(t, "", tasks.task.Description)
}

func TestFileTicketValidation(t *testing.T) {
	svc := NewService(&fakeTasks{}, nil)
	_, err := svc.FileTicket(context.Background(), &Ticket{})
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestFileTicketVendorFailure(t *testing.T) {
	svc := NewService(&fakeTasks{err: errors.New("clickup 401")}, nil)
	_, err := svc.FileTicket(context.Background(), &Ticket{Subject: "x"})
	assert.ErrorContains(t, err, "clickup 401")
}
