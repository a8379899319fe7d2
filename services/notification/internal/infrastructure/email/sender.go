package email

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"github.com/sarmatovd/shop-services/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Sender interface {
	SendWelcomeEmail(ctx context.Context, to string, name string) error
	SendOrderConfirmationEmail(ctx context.Context, to string, orderID int64, totalPrice int64) error
}

type smtpSender struct {
	from     string
	password string
	host     string
	port     string
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewSMTPSender(logger *zap.Logger) Sender {
	return &smtpSender{
		from:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		logger:   logger,
		tracer:   otel.Tracer("notification/infrastructure/email"),
	}
}

func (s *smtpSender) SendWelcomeEmail(ctx context.Context, to string, name string) error {
	ctx, span := s.tracer.Start(ctx, "smtp.SendWelcomeEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
	)

	subject := "Subject: Welcome to our shop!\n"
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := fmt.Sprintf(`
		<h1>Welcome, %s! 🚀</h1>
		<p>Your account is ready. Happy shopping!</p>
	`, name)

	msg := []byte(subject + mime + body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	logging.Info(
		ctx,
		s.logger,
		"Sending welcome email",
		zap.String("to", to),
	)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			s.logger,
			"Error sending welcome email",
			zap.String("to", to),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send mail: %w", err)
	}

	logging.Info(ctx, s.logger, "Welcome email sent successfully", zap.String("to", to))
	return nil
}

func (s *smtpSender) SendOrderConfirmationEmail(ctx context.Context, to string, orderID int64, totalPrice int64) error {
	ctx, span := s.tracer.Start(ctx, "smtp.SendOrderConfirmationEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
		attribute.Int64("order_id", orderID),
	)

	subject := "Subject: Your order is confirmed.\n"
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := fmt.Sprintf(`
		<h1>Thanks for your purchase! 🎉</h1>
		<p>Order #%d for a total of %d is confirmed.</p>
	`, orderID, totalPrice)

	msg := []byte(subject + mime + body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	logging.Info(
		ctx,
		s.logger,
		"Sending order confirmation email",
		zap.String("to", to),
		zap.Int64("order_id", orderID),
	)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			s.logger,
			"Error sending order confirmation email",
			zap.String("to", to),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send mail: %w", err)
	}

	logging.Info(
		ctx,
		s.logger,
		"Order confirmation email sent successfully",
		zap.String("to", to),
		zap.Int64("order_id", orderID),
	)

	return nil
}
