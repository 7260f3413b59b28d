package core

import (
	"bytes"
	"net/mail"
	"os"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string

		// templated contents
		TemplateStr  string // raw template text; empty falls back to TextContent as-is
		TemplateData interface{}
		TextContent  string
	}

	// Mailer is any service that can deliver a single email message.
	// Send is synchronous; the returned error covers that one delivery only.
	Mailer interface {
		Send(msg *EmailMessage) error
	}
)

// Render executes TemplateStr with TemplateData into TextContent.
// Messages with no template keep their TextContent untouched.
func (m *EmailMessage) Render() error {
	if m.TemplateStr == "" {
		return nil
	}
	tmpl, err := texttmpl.New("email").Parse(m.TemplateStr)
	if err != nil {
		return errors.Wrap(err, "parsing email template")
	}
	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "rendering email template")
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" }

// LoadTemplate reads a template file from disk, falling back to fallback when
// no path is configured.
func LoadTemplate(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading template %s", path)
	}
	return string(raw), nil
}
