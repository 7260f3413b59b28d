package attendance

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/roster"
)

// defaultBodyTemplate is used when no mail.bodyTemplate file is configured.
const defaultBodyTemplate = `Hello,

Our records show that you neither attended nor excused yourself from
this week's lecture (week {{.Week}}).

If you believe this is a mistake, or you have an excuse we have not yet
recorded, please reply to this email.

Best,
The course staff
`

// NotificationState drives the two-phase send gate:
// Idle -> Previewed -> Confirmed -> Sent, or Previewed -> Aborted.
type NotificationState int

const (
	StateIdle NotificationState = iota
	StatePreviewed
	StateConfirmed
	StateSent
	StateAborted
)

func (s NotificationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewed:
		return "previewed"
	case StateConfirmed:
		return "confirmed"
	case StateSent:
		return "sent"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

type (
	// Notification is a snapshot of the unexcused set for the active week,
	// frozen at preview time. Recipients are ordered by student id so
	// repeated runs over the same set preview and send identically.
	Notification struct {
		state NotificationState

		Week       int
		Recipients []roster.Student
		Sender     mail.Address
		Cc         []mail.Address
		Subject    string
		Body       string
	}

	// Delivery is the outcome of one recipient's dispatch.
	Delivery struct {
		MessageID string
		Student   roster.Student
		Err       error
	}

	// SendReport covers a whole confirmed batch. Failed deliveries never
	// block the remaining recipients; a failed send is reissued by re-running
	// the command, which recomputes the unexcused set.
	SendReport struct {
		Deliveries []Delivery
		Sent       int
		Failed     int
	}
)

func (n *Notification) State() NotificationState { return n.state }

// Confirm arms the notification for sending. Only a previewed notification
// can be confirmed.
func (n *Notification) Confirm() error {
	if n.state != StatePreviewed {
		return errors.Wrapf(ErrInvalidState, "confirm from %s", n.state)
	}
	n.state = StateConfirmed
	return nil
}

// Abort declines the send. Terminal: an aborted notification guarantees zero
// dispatcher calls.
func (n *Notification) Abort() error {
	if n.state != StatePreviewed {
		return errors.Wrapf(ErrInvalidState, "abort from %s", n.state)
	}
	n.state = StateAborted
	return nil
}

// PreviewNotification assembles the unexcused recipient set for the active
// week only and renders the outbound body. No mail is sent.
func (svc *Service) PreviewNotification(ctx context.Context) (*Notification, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	recipients, err := svc.repo.StudentsByStatus(ctx, week, StatusUnexcused)
	if err != nil {
		return nil, err
	}

	tmpl, err := core.LoadTemplate(svc.conf.Mail.BodyTemplate, defaultBodyTemplate)
	if err != nil {
		return nil, err
	}
	msg := core.EmailMessage{
		TemplateStr:  tmpl,
		TemplateData: struct{ Week int }{Week: week},
	}
	if err := msg.Render(); err != nil {
		return nil, err
	}

	return &Notification{
		state:      StatePreviewed,
		Week:       week,
		Recipients: recipients,
		Sender:     svc.conf.Mail.Sender,
		Cc:         svc.conf.Mail.Cc,
		Subject:    svc.conf.Mail.Subject,
		Body:       msg.TextContent,
	}, nil
}

// SendNotification dispatches one email per recipient, in preview order.
// It requires a confirmed notification and always attempts the full batch;
// per-recipient failures are recorded in the report. Once started there is
// no mid-batch cancellation.
func (svc *Service) SendNotification(_ context.Context, n *Notification) (SendReport, error) {
	if n.state != StateConfirmed {
		return SendReport{}, errors.Wrapf(ErrInvalidState, "send from %s", n.state)
	}

	rep := SendReport{Deliveries: make([]Delivery, 0, len(n.Recipients))}
	for _, s := range n.Recipients {
		d := Delivery{MessageID: uuid.NewString(), Student: s}
		msg := &core.EmailMessage{
			To:          []mail.Address{s.Address()},
			Cc:          n.Cc,
			Subject:     n.Subject,
			TextContent: n.Body,
		}
		if err := svc.mailer.Send(msg); err != nil {
			d.Err = errors.Wrapf(err, "sending to %s", s.Email)
			rep.Failed++
		} else {
			rep.Sent++
		}
		rep.Deliveries = append(rep.Deliveries, d)
	}

	n.state = StateSent
	return rep, nil
}
