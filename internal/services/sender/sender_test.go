package services

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const atRisk = `{"user_uid":"u1","email":"alice@example.com","username":"alice","kind":"streak.at_risk","message":"Your streak is at risk"}`

func TestSenderService_Send(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - streak at risk email",
			body: []byte(atRisk),
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				writer := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "alice@example.com").Return(nil).Once()
				client.On("Data").Return(writer, nil).Once()
				writer.On("Write", mock.MatchedBy(func(p []byte) bool {
					msg := string(p)
					return strings.Contains(msg, "Subject: Your streak is at risk") && strings.Contains(msg, "Hi alice")
				})).Return(100, nil).Once()
				writer.On("Close").Return(nil).Once()
				client.On("Quit").Return(nil).Once()
				client.On("Close").Return(nil).Once()
			},
		},
		{
			name:       "invalid JSON is dropped",
			body:       []byte(`invalid json`),
			setupMocks: func(*MockTransport) {},
		},
		{
			name:       "unknown kind is dropped",
			body:       []byte(`{"email":"alice@example.com","kind":"payment.success"}`),
			setupMocks: func(*MockTransport) {},
		},
		{
			name:       "missing email is dropped",
			body:       []byte(`{"kind":"trial.ending"}`),
			setupMocks: func(*MockTransport) {},
		},
		{
			name: "SMTP connection error is retried",
			body: []byte(atRisk),
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name: "recipient rejected",
			body: []byte(atRisk),
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "alice@example.com").Return(errors.New("550 no such user")).Once()
				client.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "rcpt to alice@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(transport, newNoopLogger())
			tt.setupMocks(transport)

			err := service.Send(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}
