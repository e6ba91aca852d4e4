package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/config"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, msg domain.Message) error
}

type smtpSender struct {
	from     string
	username string
	password string
	host     string
	addr     string
	logger   *zap.Logger
	tracer   trace.Tracer
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTP, logger *zap.Logger) Sender {
	return &smtpSender{
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		host:     cfg.Host,
		addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		logger:   logger,
		tracer:   otel.Tracer("notification/infrastructure/email"),
		sendMail: smtp.SendMail,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg domain.Message) error {
	ctx, span := s.tracer.Start(ctx, "smtp.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", msg.To),
		attribute.String("subject", msg.Subject),
	)

	// Local catchers like mailpit accept unauthenticated mail.
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	mylogger.Info(ctx, s.logger, "Sending email", zap.String("to", msg.To), zap.String("subject", msg.Subject))

	if err := s.sendMail(s.addr, auth, s.from, []string{msg.To}, compose(s.from, msg)); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, s.logger, "Error sending email",
			zap.String("to", msg.To),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send mail: %w", err)
	}

	mylogger.Info(ctx, s.logger, "Email sent successfully", zap.String("to", msg.To))
	return nil
}

func compose(from string, msg domain.Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)

	return []byte(b.String())
}
