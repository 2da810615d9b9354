package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type recordingMailer struct {
	to, name string
	err      error
}

func (m *recordingMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	m.to, m.name = to, name
	return m.err
}

func newTestService(m Mailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{mailer: m, logger: &logger}
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("ada@example.com", "Ada")
	if err != nil {
		t.Fatalf("NewWelcomeEmailTask: %v", err)
	}
	if task.Type() != TaskWelcome {
		t.Errorf("Type = %q", task.Type())
	}

	var p WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.To != "ada@example.com" || p.Name != "Ada" {
		t.Errorf("payload = %+v", p)
	}
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	m := &recordingMailer{}
	j := newTestService(m)

	task, _ := NewWelcomeEmailTask("ada@example.com", "Ada")
	if err := j.mux().ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if m.to != "ada@example.com" || m.name != "Ada" {
		t.Errorf("mailer got to=%q name=%q", m.to, m.name)
	}
}

func TestHandleWelcomeEmailTaskMailerFailure(t *testing.T) {
	boom := errors.New("provider down")
	j := newTestService(&recordingMailer{err: boom})

	task, _ := NewWelcomeEmailTask("ada@example.com", "Ada")
	if err := j.handleWelcomeEmailTask(context.Background(), task); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestHandleWelcomeEmailTaskBadPayload(t *testing.T) {
	j := newTestService(&recordingMailer{})

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry", err)
	}
}
