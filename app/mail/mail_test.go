package mail

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	messages []*Message
	err      error
}

func (s *captureSender) Deliver(_ context.Context, msg *Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func activationMail() *dto.Mail {
	return &dto.Mail{
		Recipient: "ana@x.com",
		Subject:   "Activate your account!",
		Template:  "activation-mail",
		Context: map[string]any{
			"name":           "Ana",
			"activationCode": "4821",
		},
	}
}

func TestRenderer_ActivationMail(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	body, err := renderer.Render("activation-mail", activationMail().Context)
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Ana")
	assert.Contains(t, body, "4821")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render("missing", nil)
	assert.Error(t, err)
}

func TestQueueNotifier_EnqueuesOnConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	notifier := NewQueueNotifier(client, "mail")
	defer notifier.Close()

	require.NoError(t, notifier.Send(context.Background(), activationMail()))

	pending, err := mr.List("asynq:{mail}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestQueueNotifier_RedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	notifier := NewQueueNotifier(client, "mail")
	defer notifier.Close()

	mr.Close()
	assert.Error(t, notifier.Send(context.Background(), activationMail()))
}

func TestWorker_StartAndShutdown(t *testing.T) {
	mr := miniredis.RunT(t)
	renderer, err := NewRenderer()
	require.NoError(t, err)

	worker := NewWorker(asynq.RedisClientOpt{Addr: mr.Addr()}, "mail", 1, NewHandler(renderer, &captureSender{}, "no-reply@users.local"))
	require.NoError(t, worker.Start())
	worker.Shutdown()
}

func TestHandler_RendersAndDelivers(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	sender := &captureSender{}
	handler := NewHandler(renderer, sender, "no-reply@users.local")

	task, err := NewSendMailTask(activationMail())
	require.NoError(t, err)
	require.NoError(t, handler.ProcessTask(context.Background(), task))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "ana@x.com", msg.To)
	assert.Equal(t, "no-reply@users.local", msg.From)
	assert.Equal(t, "Activate your account!", msg.Subject)
	assert.Contains(t, msg.HTML, "4821")
}

func TestHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	handler := NewHandler(renderer, &captureSender{}, "no-reply@users.local")

	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeSendMail, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	payload, _ := json.Marshal(&dto.Mail{Template: "activation-mail"})
	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeSendMail, payload))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandler_UnknownTemplateSkipsRetry(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	handler := NewHandler(renderer, &captureSender{}, "no-reply@users.local")

	mail := activationMail()
	mail.Template = "missing"
	task, err := NewSendMailTask(mail)
	require.NoError(t, err)

	assert.True(t, errors.Is(handler.ProcessTask(context.Background(), task), asynq.SkipRetry))
}

func TestHandler_DeliveryFailureIsRetried(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	deliveryErr := errors.New("smtp: connection refused")
	handler := NewHandler(renderer, &captureSender{err: deliveryErr}, "no-reply@users.local")

	task, err := NewSendMailTask(activationMail())
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, deliveryErr)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestNewSender(t *testing.T) {
	_, ok := NewSender(config.MailConfig{}).(*LogSender)
	assert.True(t, ok, "empty host should log instead of sending")

	_, ok = NewSender(config.MailConfig{Host: "smtp.example.com", Port: 587}).(*SMTPSender)
	assert.True(t, ok)
}

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage(&Message{
		From:    "no-reply@users.local",
		To:      "ana@x.com",
		Subject: "Activate your account!",
		HTML:    "<p>hi</p>",
	}))

	assert.Contains(t, raw, "To: ana@x.com\r\n")
	assert.Contains(t, raw, "Subject: Activate your account!\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.Contains(t, raw, "\r\n\r\n<p>hi</p>")
}
