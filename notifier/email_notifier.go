package notifier

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// EmailNotifier delivers messages over SMTP. The transport is configured
// entirely from the environment and treated as an opaque collaborator.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailNotifierFromEnv builds the SMTP notifier from EMAIL_HOST,
// EMAIL_PORT, EMAIL_HOST_USER, EMAIL_HOST_PASSWORD, EMAIL_USE_SSL and
// DEFAULT_FROM_EMAIL.
func NewEmailNotifierFromEnv() (*EmailNotifier, error) {
	host := os.Getenv("EMAIL_HOST")
	if host == "" {
		return nil, errors.New("EMAIL_HOST is not set")
	}
	port, err := strconv.Atoi(os.Getenv("EMAIL_PORT"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid EMAIL_PORT")
	}
	from := os.Getenv("DEFAULT_FROM_EMAIL")
	if from == "" {
		return nil, errors.New("DEFAULT_FROM_EMAIL is not set")
	}

	dialer := gomail.NewDialer(host, port, os.Getenv("EMAIL_HOST_USER"), os.Getenv("EMAIL_HOST_PASSWORD"))
	dialer.SSL = os.Getenv("EMAIL_USE_SSL") == "true"

	return &EmailNotifier{dialer: dialer, from: from}, nil
}

// Ping opens and closes an SMTP connection. Run this at command start so an
// unreachable or misconfigured transport fails the whole run up front
// instead of surfacing as N per-recipient failures.
func (n *EmailNotifier) Ping() error {
	closer, err := n.dialer.Dial()
	if err != nil {
		return errors.Wrap(err, "mail transport unreachable")
	}
	return closer.Close()
}

// Notify sends one multipart (text + html) email to a single recipient.
func (n *EmailNotifier) Notify(recipient string, subject string, htmlBody string, textBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return n.dialer.DialAndSend(m)
}
