package mail

import (
	"encoding/json"
	"fmt"

	"github.com/vibast-solutions/ms-go-users/app/dto"

	"github.com/hibiken/asynq"
)

const TypeSendMail = "mail:send"

func NewSendMailTask(mail *dto.Mail) (*asynq.Task, error) {
	payload, err := json.Marshal(mail)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendMail, payload), nil
}

func parseSendMailTask(task *asynq.Task) (*dto.Mail, error) {
	var mail dto.Mail
	if err := json.Unmarshal(task.Payload(), &mail); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", TypeSendMail, err)
	}
	if mail.Recipient == "" || mail.Template == "" {
		return nil, fmt.Errorf("%s payload is missing recipient or template", TypeSendMail)
	}
	return &mail, nil
}
