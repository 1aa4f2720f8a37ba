// Package services отправляет письма по уведомлениям из очереди.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/rabbitmq"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/smtp"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
)

// Transport открывает соединение с почтовым сервером.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService превращает уведомления в письма.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

var subjects = map[string]string{
	rabbitmq.KeyStreakAtRisk: "Your streak is at risk",
	rabbitmq.KeyTrialEnding:  "Your free trial ends soon",
}

// Send обрабатывает сообщение очереди уведомлений. Сообщения без адреса
// или неизвестного вида отбрасываются, ошибка SMTP возвращает сообщение в очередь.
func (s *SenderService) Send(body []byte) error {
	const op = "services.sender.Send"
	log := s.log.With(slog.String("op", op))

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Warn("dropping malformed notification", sl.Err(err))
		return nil
	}
	subject, ok := subjects[n.Kind]
	if !ok || n.Email == "" {
		log.Warn("dropping notification", slog.String("kind", n.Kind), slog.String("user_uid", n.UserUID))
		return nil
	}

	text := fmt.Sprintf("Hi %s,\r\n\r\n%s\r\n", n.Username, n.Message)
	if err := s.sendEmail([]string{n.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("email sent", slog.String("kind", n.Kind), slog.String("user_uid", n.UserUID))
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}
