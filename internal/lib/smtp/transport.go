package smtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
)

const dialTimeout = 10 * time.Second

// Transport открывает соединения с SMTP сервером.
type Transport struct {
	cfg config.SMTP
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP) *Transport {
	return &Transport{cfg: cfg}
}

// Connect устанавливает соединение, включает STARTTLS и проходит авторизацию.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort), dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	if err = client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err = client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}
	return client, nil
}

// GetSMTPUser возвращает адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}
