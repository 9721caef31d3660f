package mail

import (
	"fmt"

	"github.com/gabaylakad/backend/internal/config"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

func (m *Mailer) SendVerificationCode(to, code string) error {
	msg := m.base("GabayLakad email verification", to)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your GabayLakad verification code is %s.\n\nEnter it in the app to activate your account.", code))
	return m.send(msg)
}

func (m *Mailer) SendPasswordReset(to, token string) error {
	msg := m.base("GabayLakad password reset", to)
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset token: %s\n\nThe token expires in 15 minutes. If you did not request this, ignore this message.", token))
	return m.send(msg)
}

func (m *Mailer) base(subject, to string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

func (m *Mailer) send(msg *gomail.Message) error {
	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
