// Package smtp подключается к почтовому серверу со STARTTLS и авторизацией.
package smtp

import "io"

// Client — подмножество методов *smtp.Client, нужное для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
