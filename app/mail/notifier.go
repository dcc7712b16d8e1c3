package mail

import (
	"context"

	"github.com/vibast-solutions/ms-go-users/app/dto"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const defaultMaxRetry = 5

// QueueNotifier hands mail to the asynq queue. Delivery happens in the worker.
type QueueNotifier struct {
	client *asynq.Client
	queue  string
}

func NewQueueNotifier(client *asynq.Client, queue string) *QueueNotifier {
	if queue == "" {
		queue = "default"
	}
	return &QueueNotifier{client: client, queue: queue}
}

func (n *QueueNotifier) Send(ctx context.Context, mail *dto.Mail) error {
	task, err := NewSendMailTask(mail)
	if err != nil {
		return err
	}

	info, err := n.client.EnqueueContext(ctx, task,
		asynq.Queue(n.queue),
		asynq.MaxRetry(defaultMaxRetry),
	)
	if err != nil {
		logrus.WithError(err).WithField("recipient", mail.Recipient).Warn("Failed to enqueue mail")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"task_id":  info.ID,
		"queue":    info.Queue,
		"template": mail.Template,
	}).Debug("Mail enqueued")
	return nil
}

func (n *QueueNotifier) Close() error {
	return n.client.Close()
}
