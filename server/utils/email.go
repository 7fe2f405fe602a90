package utils

import (
	"github.com/jordan-wright/email"
	"net/smtp"
)

// SendEmail sends a plain text mail through the smtp server at addr.
func SendEmail(auth smtp.Auth, addr, from string, to []string, subject, msg string) error {
	e := email.NewEmail()
	e.From = from
	e.To = to
	e.Subject = subject
	e.Text = []byte(msg)
	return e.Send(addr, auth)
}
