// Package mail envía las alertas de inventario por SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stocker-api/internal/application/alerts"
	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

var (
	_ alerts.Mailer = (*SMTPMailer)(nil)
	_ alerts.Mailer = (*LogMailer)(nil)
)

// TransportError fallo al conectar o entregar el correo al servidor SMTP.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "smtp: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SMTPMailer envía texto plano con gomail. Abre una conexión por envío.
type SMTPMailer struct {
	from string
	dial func() (gomail.SendCloser, error)
}

// NewSMTPMailer construye el mailer con la configuración SMTP.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPMailer{from: cfg.From, dial: d.Dial}
}

// Send entrega un correo a todos los destinatarios. Los errores de red vuelven como *TransportError.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("mail: sin destinatarios")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	sc, err := m.dial()
	if err != nil {
		return &TransportError{Err: err}
	}
	defer sc.Close()
	if err := gomail.Send(sc, msg); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// LogMailer escribe el correo en el log en lugar de enviarlo (SMTP sin configurar).
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer construye el mailer de desarrollo.
func NewLogMailer(log *logger.Logger) *LogMailer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMailer{log: log.Component("mail")}
}

func (m *LogMailer) Send(ctx context.Context, to []string, subject, body string) error {
	m.log.Info().
		Str("to", strings.Join(to, ",")).
		Str("subject", subject).
		Str("body", body).
		Msg("correo no enviado (SMTP sin configurar)")
	return nil
}

// New elige SMTPMailer si hay host configurado; si no, LogMailer.
func New(cfg config.SMTPConfig, log *logger.Logger) alerts.Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
