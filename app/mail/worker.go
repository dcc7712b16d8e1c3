package mail

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Handler renders and delivers mail:send tasks.
type Handler struct {
	renderer *Renderer
	sender   Sender
	from     string
}

func NewHandler(renderer *Renderer, sender Sender, from string) *Handler {
	return &Handler{
		renderer: renderer,
		sender:   sender,
		from:     from,
	}
}

func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	mail, err := parseSendMailTask(task)
	if err != nil {
		logrus.WithError(err).Error("Dropping malformed mail task")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	body, err := h.renderer.Render(mail.Template, mail.Context)
	if err != nil {
		logrus.WithError(err).WithField("template", mail.Template).Error("Failed to render mail")
		return fmt.Errorf("render %s: %v: %w", mail.Template, err, asynq.SkipRetry)
	}

	err = h.sender.Deliver(ctx, &Message{
		From:    h.from,
		To:      mail.Recipient,
		Subject: mail.Subject,
		HTML:    body,
	})
	if err != nil {
		logrus.WithError(err).WithField("recipient", mail.Recipient).Warn("Mail delivery failed, will retry")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"recipient": mail.Recipient,
		"template":  mail.Template,
	}).Info("Mail delivered")
	return nil
}

// Worker runs the asynq server that consumes the mail queue.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(redisOpt asynq.RedisClientOpt, queue string, concurrency int, handler *Handler) *Worker {
	if queue == "" {
		queue = "default"
	}
	if concurrency <= 0 {
		concurrency = 2
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeSendMail, handler)

	return &Worker{srv: srv, mux: mux}
}

// Start begins consuming the queue in the background. It fails when Redis
// is unreachable.
func (w *Worker) Start() error {
	return w.srv.Start(w.mux)
}

// Shutdown stops fetching new tasks and waits for in-flight ones.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
