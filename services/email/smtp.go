package emailsvc

import (
	"net/mail"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/trezcool/mahudhurio/core"
)

type smtpService struct {
	dialer     *gomail.Dialer
	sender     string
	senderName string
	subjPrefix string
}

var _ core.Mailer = (*smtpService)(nil)

// NewSMTPService returns a Mailer that delivers through the configured SMTP
// relay, authenticating with the sender address and the app password read at
// startup.
func NewSMTPService(conf *core.Config) core.Mailer {
	return &smtpService{
		dialer:     gomail.NewDialer(conf.Mail.SMTPHost, conf.Mail.SMTPPort, conf.Mail.Sender.Address, conf.Mail.SMTPPassword),
		sender:     conf.Mail.Sender.Address,
		senderName: conf.Mail.Sender.Name,
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc smtpService) Send(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return err
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", svc.sender, svc.senderName)
	m.SetHeader("To", formatAddresses(m, msg.To)...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", formatAddresses(m, msg.Cc)...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", formatAddresses(m, msg.Bcc)...)
	}
	m.SetHeader("Subject", svc.subjPrefix+msg.Subject)
	m.SetBody("text/plain", msg.TextContent)

	if err := svc.dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "smtp send")
	}
	return nil
}

func formatAddresses(m *gomail.Message, addrs []mail.Address) []string {
	formatted := make([]string, 0, len(addrs))
	for _, a := range addrs {
		formatted = append(formatted, m.FormatAddress(a.Address, a.Name))
	}
	return formatted
}
