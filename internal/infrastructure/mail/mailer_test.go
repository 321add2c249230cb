package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

type fakeSMTP struct {
	from    string
	to      []string
	raw     bytes.Buffer
	sendErr error
	closed  bool
}

func (f *fakeSMTP) Send(from string, to []string, msg io.WriterTo) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.from, f.to = from, to
	_, err := msg.WriteTo(&f.raw)
	return err
}

func (f *fakeSMTP) Close() error {
	f.closed = true
	return nil
}

func TestSMTPMailer_Envia(t *testing.T) {
	fake := &fakeSMTP{}
	m := &SMTPMailer{from: "stocker@test", dial: func() (gomail.SendCloser, error) { return fake, nil }}

	err := m.Send(context.Background(), []string{"a@test", "b@test"}, "Stocker • Low stock alert", "Cuerpo")
	require.NoError(t, err)
	assert.Equal(t, "stocker@test", fake.from)
	assert.ElementsMatch(t, []string{"a@test", "b@test"}, fake.to)
	assert.Contains(t, fake.raw.String(), "Cuerpo")
	assert.True(t, fake.closed)
}

func TestSMTPMailer_ErroresDeTransporte(t *testing.T) {
	ctx := context.Background()

	// Caso 1: no se puede conectar
	m := &SMTPMailer{from: "x", dial: func() (gomail.SendCloser, error) { return nil, errors.New("dial tcp: refused") }}
	err := m.Send(ctx, []string{"a@test"}, "s", "b")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "refused")

	// Caso 2: el servidor rechaza el mensaje
	fake := &fakeSMTP{sendErr: errors.New("550 mailbox unavailable")}
	m = &SMTPMailer{from: "x", dial: func() (gomail.SendCloser, error) { return fake, nil }}
	require.ErrorAs(t, m.Send(ctx, []string{"a@test"}, "s", "b"), &te)

	// Caso 3: sin destinatarios no es error de transporte
	err = m.Send(ctx, nil, "s", "b")
	require.Error(t, err)
	assert.False(t, errors.As(err, &te))
}

func TestNew_SinHostUsaLog(t *testing.T) {
	var buf bytes.Buffer
	m := New(config.SMTPConfig{}, logger.FromWriter(&buf))
	require.IsType(t, &LogMailer{}, m)
	require.NoError(t, m.Send(context.Background(), []string{"a@test"}, "asunto", "cuerpo"))
	assert.Contains(t, buf.String(), "asunto")

	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.test", Port: 587}, nil))
}
