package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// SentMessages records every message the console backend accepted; tests
	// inspect it through the mock variant.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// ResetSentMessages clears the recorded messages between tests.
func ResetSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

type consoleService struct {
	sender        mail.Address
	subjPrefix    string
	disableOutput bool
}

var _ core.Mailer = (*consoleService)(nil)

// NewConsoleService returns a Mailer that prints messages to stdout instead
// of dispatching them. The default backend in debug mode.
func NewConsoleService(conf *core.Config) core.Mailer {
	return &consoleService{
		sender:     conf.Mail.Sender,
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock is the console service with output disabled; sends
// are only recorded in SentMessages.
func NewConsoleServiceMock(conf *core.Config) core.Mailer {
	return &consoleService{
		sender:        conf.Mail.Sender,
		subjPrefix:    "[" + conf.AppName + "] ",
		disableOutput: true,
	}
}

func (svc consoleService) Send(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return err
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}

	if !svc.disableOutput {
		body := new(strings.Builder)
		_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.sender.String())
		_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
		_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
		if len(msg.Cc) > 0 {
			_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddresses(msg.Cc))
		}
		_, _ = fmt.Fprintf(body, "\r\n%s\r\n", msg.TextContent)
		fmt.Println(body.String())
	}

	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
	return nil
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
