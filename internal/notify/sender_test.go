package notify

import (
	"context"
	"io"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_Modes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, isLog := NewSender(SenderConfig{Mode: "log"}, logger).(*logSender)
	assert.True(t, isLog)

	_, isSMTP := NewSender(SenderConfig{Mode: "smtp"}, logger).(*smtpSender)
	assert.True(t, isSMTP)
}

func TestSMTPSender_BuildsMessage(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s := &smtpSender{
		cfg:    SenderConfig{Host: "mail.test", Port: 2525, From: "noreply@test", FromName: "Test"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		send: func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			return nil
		},
	}

	err := s.Send(context.Background(), Notification{To: "bob@example.com", Subject: "hi", Body: "hello bob"})
	require.NoError(t, err)
	assert.Equal(t, "mail.test:2525", gotAddr)
	assert.Equal(t, []string{"bob@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: hi\r\n")
	assert.Contains(t, gotMsg, "hello bob")

	err = s.Send(context.Background(), Notification{Username: "ghost"})
	assert.Error(t, err)
}
