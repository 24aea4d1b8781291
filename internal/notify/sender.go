// Package notify turns activity events into notifications for the user who
// was followed, whose post was liked or whose post got a comment.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"

	"instaclone/internal/config"
	"instaclone/internal/events"
)

// Notification is a rendered message for one recipient
type Notification struct {
	EventID  string
	Type     events.Type
	To       string // email address
	Username string
	Subject  string
	Body     string
}

// Sender delivers notifications
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// SenderConfig selects and configures the sender
type SenderConfig struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// LoadSenderConfig reads NOTIFY_MODE and the SMTP_* variables
func LoadSenderConfig() SenderConfig {
	port, _ := strconv.Atoi(config.GetEnvOrDefault("SMTP_PORT", "587"))

	return SenderConfig{
		Mode:     config.GetEnvOrDefault("NOTIFY_MODE", "log"),
		Host:     config.GetEnvOrDefault("SMTP_HOST", ""),
		Port:     port,
		User:     config.GetEnvOrDefault("SMTP_USER", ""),
		Password: config.GetEnvOrDefault("SMTP_PASSWORD", ""),
		From:     config.GetEnvOrDefault("SMTP_FROM", "noreply@instaclone.local"),
		FromName: config.GetEnvOrDefault("SMTP_FROM_NAME", "Instaclone"),
	}
}

// NewSender builds the sender for cfg.Mode
func NewSender(cfg SenderConfig, logger *slog.Logger) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{cfg: cfg, logger: logger, send: smtp.SendMail}
	}
	return &logSender{logger: logger}
}

// logSender writes notifications to the log (development mode)
type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Send(_ context.Context, n Notification) error {
	s.logger.Info("Notification",
		"event_id", n.EventID,
		"type", n.Type,
		"to", n.To,
		"subject", n.Subject,
		"body", n.Body)
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// smtpSender sends plain-text mail
type smtpSender struct {
	cfg    SenderConfig
	logger *slog.Logger
	send   sendMailFunc
}

func (s *smtpSender) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.To == "" {
		return fmt.Errorf("recipient %s has no email address", n.Username)
	}

	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", n.To)
	message += fmt.Sprintf("Subject: %s\r\n", n.Subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += n.Body + "\r\n"

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{n.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Notification sent via SMTP", "event_id", n.EventID, "to", n.To)
	return nil
}
