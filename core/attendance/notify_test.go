package attendance_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	testutil "github.com/trezcool/mahudhurio/tests"
)

// fakeMailer records every dispatch and fails addresses listed in failFor.
type fakeMailer struct {
	sent    []*core.EmailMessage
	failFor map[string]error
}

var _ core.Mailer = (*fakeMailer)(nil)

func (m *fakeMailer) Send(msg *core.EmailMessage) error {
	for _, to := range msg.To {
		if err, ok := m.failFor[to.Address]; ok {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestService_PreviewNotification(t *testing.T) {
	mailer := &fakeMailer{}
	svc, rosterRepo, _, _ := setup(t, mailer)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}
	if err := svc.MarkExcused(ctx, "wmukendi"); err != nil {
		t.Fatalf("MarkExcused() failed: %v", err)
	}

	n, err := svc.PreviewNotification(ctx)
	if err != nil {
		t.Fatalf("PreviewNotification() failed: %v", err)
	}
	if n.State() != attendance.StatePreviewed {
		t.Errorf("state = %s, want previewed", n.State())
	}
	if len(n.Recipients) != 1 || n.Recipients[0].ID != "amwepu" {
		t.Errorf("recipients = %+v, want amwepu only", n.Recipients)
	}
	if !strings.Contains(n.Body, "week 1") {
		t.Errorf("body missing week number: %q", n.Body)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("preview dispatched %d messages, want 0", len(mailer.sent))
	}
}

func TestService_SendNotification(t *testing.T) {
	mailer := &fakeMailer{}
	svc, rosterRepo, _, _ := setup(t, mailer)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}

	n, err := svc.PreviewNotification(ctx)
	if err != nil {
		t.Fatalf("PreviewNotification() failed: %v", err)
	}

	// unconfirmed notifications never reach the dispatcher
	if _, err := svc.SendNotification(ctx, n); !errors.Is(err, attendance.ErrInvalidState) {
		t.Errorf("SendNotification(previewed) error = %v, want %v", err, attendance.ErrInvalidState)
	}

	if err := n.Confirm(); err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}
	rep, err := svc.SendNotification(ctx, n)
	if err != nil {
		t.Fatalf("SendNotification() failed: %v", err)
	}
	if rep.Sent != 2 || rep.Failed != 0 {
		t.Errorf("report = %+v, want 2 sent", rep)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("dispatched %d messages, want 2", len(mailer.sent))
	}
	// one message per recipient, in roster order
	if to := mailer.sent[0].To[0].Address; to != "amwepu@school.edu" {
		t.Errorf("first recipient = %s, want amwepu@school.edu", to)
	}
	if n.State() != attendance.StateSent {
		t.Errorf("state = %s, want sent", n.State())
	}
	// delivery ids are unique
	if rep.Deliveries[0].MessageID == rep.Deliveries[1].MessageID {
		t.Error("deliveries share a message id")
	}
}

func TestService_SendNotification_partialFailure(t *testing.T) {
	mailer := &fakeMailer{failFor: map[string]error{
		"amwepu@school.edu": errors.New("mailbox unavailable"),
	}}
	svc, rosterRepo, _, _ := setup(t, mailer)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}

	n, err := svc.PreviewNotification(ctx)
	if err != nil {
		t.Fatalf("PreviewNotification() failed: %v", err)
	}
	if err := n.Confirm(); err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}

	rep, err := svc.SendNotification(ctx, n)
	if err != nil {
		t.Fatalf("SendNotification() failed: %v", err)
	}
	if rep.Sent != 1 || rep.Failed != 1 {
		t.Errorf("report sent=%d failed=%d, want 1/1", rep.Sent, rep.Failed)
	}
	if rep.Deliveries[0].Err == nil {
		t.Error("amwepu delivery should carry the failure")
	}
	if rep.Deliveries[1].Err != nil {
		t.Errorf("wmukendi delivery failed: %v", rep.Deliveries[1].Err)
	}
}

func TestNotification_stateGate(t *testing.T) {
	mailer := &fakeMailer{}
	svc, rosterRepo, _, _ := setup(t, mailer)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}

	n, err := svc.PreviewNotification(ctx)
	if err != nil {
		t.Fatalf("PreviewNotification() failed: %v", err)
	}
	if err := n.Abort(); err != nil {
		t.Fatalf("Abort() failed: %v", err)
	}
	if n.State() != attendance.StateAborted {
		t.Errorf("state = %s, want aborted", n.State())
	}

	// aborted is terminal
	if err := n.Confirm(); !errors.Is(err, attendance.ErrInvalidState) {
		t.Errorf("Confirm(aborted) error = %v, want %v", err, attendance.ErrInvalidState)
	}
	if err := n.Abort(); !errors.Is(err, attendance.ErrInvalidState) {
		t.Errorf("Abort(aborted) error = %v, want %v", err, attendance.ErrInvalidState)
	}
	if _, err := svc.SendNotification(ctx, n); !errors.Is(err, attendance.ErrInvalidState) {
		t.Errorf("SendNotification(aborted) error = %v, want %v", err, attendance.ErrInvalidState)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("aborted notification dispatched %d messages, want 0", len(mailer.sent))
	}
}
