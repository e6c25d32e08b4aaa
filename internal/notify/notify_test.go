package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func fakeSMTP(t *testing.T, cfg SMTPConfig, err error) (*SMTPNotifier, *[]sent) {
	t.Helper()
	var calls []sent
	n := NewSMTPNotifier(cfg, quietLogger())
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls = append(calls, sent{addr, a, from, to, string(msg)})
		return err
	}
	return n, &calls
}

func TestSMTPNotifier_Send(t *testing.T) {
	n, calls := fakeSMTP(t, SMTPConfig{
		Host:     "smtp.example.com",
		From:     "coach@example.com",
		Username: "coach",
		Password: "secret",
	}, nil)

	ok := n.Send(context.Background(), "ada@example.com", "Hi", "line one\nline two")
	require.True(t, ok)
	require.Len(t, *calls, 1)

	c := (*calls)[0]
	assert.Equal(t, "smtp.example.com:587", c.addr)
	assert.NotNil(t, c.auth)
	assert.Equal(t, []string{"ada@example.com"}, c.to)
	assert.Contains(t, c.msg, "Subject: Hi\r\n")
	assert.Contains(t, c.msg, "Content-Type: text/plain; charset=UTF-8")
	assert.True(t, strings.HasSuffix(c.msg, "line one\r\nline two"))
}

func TestSMTPNotifier_NoAuthWithoutUsername(t *testing.T) {
	n, calls := fakeSMTP(t, SMTPConfig{Host: "localhost", Port: 25, From: "coach@example.com"}, nil)
	require.True(t, n.Send(context.Background(), "ada@example.com", "Hi", "body"))
	assert.Nil(t, (*calls)[0].auth)
	assert.Equal(t, "localhost:25", (*calls)[0].addr)
}

func TestSMTPNotifier_FailureIsFalse(t *testing.T) {
	n, _ := fakeSMTP(t, SMTPConfig{Host: "smtp.example.com", From: "coach@example.com"}, errors.New("535 auth failed"))
	assert.False(t, n.Send(context.Background(), "ada@example.com", "Hi", "body"))
}

func TestSMTPNotifier_RejectsHeaderInjection(t *testing.T) {
	n, calls := fakeSMTP(t, SMTPConfig{Host: "smtp.example.com", From: "coach@example.com"}, nil)
	assert.False(t, n.Send(context.Background(), "ada@example.com\r\nBcc: eve@example.com", "Hi", "body"))
	assert.Empty(t, *calls)
}

func TestSMTPNotifier_Timeout(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "coach@example.com", Timeout: 10 * time.Millisecond}, quietLogger())
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	assert.False(t, n.Send(context.Background(), "ada@example.com", "Hi", "body"))
}

func TestNew(t *testing.T) {
	_, ok := New(SMTPConfig{}, quietLogger()).(*Disabled)
	assert.True(t, ok, "empty config should disable email")

	_, ok = New(SMTPConfig{Host: "smtp.example.com", From: "coach@example.com"}, quietLogger()).(*SMTPNotifier)
	assert.True(t, ok)
}

func TestDisabled(t *testing.T) {
	d := &Disabled{Logger: quietLogger()}
	assert.False(t, d.Send(context.Background(), "ada@example.com", "Hi", "body"))
	assert.False(t, d.Send(context.Background(), "ada@example.com", "Hi", "body"))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	assert.True(t, r.Send(context.Background(), "a@example.com", "s", "b"))
	r.Fail = true
	assert.False(t, r.Send(context.Background(), "b@example.com", "s", "b"))

	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "b@example.com", msgs[1].To)
}

func TestAssignmentMessage(t *testing.T) {
	subject, body := AssignmentMessage("Ada", 3, "Build a parser", "2026-10-25")
	assert.Equal(t, "New Learning Task #3 - Ada", subject)
	assert.Contains(t, body, "Hello Ada!")
	assert.Contains(t, body, "Build a parser")
	assert.Contains(t, body, "Due Date: 2026-10-25")
}

func TestSubmissionMessage(t *testing.T) {
	subject, body := SubmissionMessage()
	assert.Equal(t, "Task Submission Confirmed", subject)
	assert.NotEmpty(t, body)
}
