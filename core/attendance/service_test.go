package attendance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/roster"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	sqliterepos "github.com/trezcool/mahudhurio/storage/database/sqlite"
	testutil "github.com/trezcool/mahudhurio/tests"
)

func setup(t *testing.T, mailer ...core.Mailer) (*attendance.Service, roster.Repository, attendance.Repository, *sqlx.DB) {
	db := testutil.PrepareDB(t)
	conf := testutil.NewConfig()
	rosterRepo := sqliterepos.NewRosterRepository(db)
	attRepo := sqliterepos.NewAttendanceRepository(db)

	var m core.Mailer = emailsvc.NewConsoleServiceMock(conf)
	if len(mailer) > 0 {
		m = mailer[0]
	}
	return attendance.NewService(attRepo, rosterRepo, m, conf), rosterRepo, attRepo, db
}

func TestService_weekLifecycle(t *testing.T) {
	svc, rosterRepo, attRepo, _ := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")

	// nothing initialized yet
	if _, err := svc.BumpWeek(ctx); !errors.Is(err, attendance.ErrNoActiveWeek) {
		t.Errorf("BumpWeek() error = %v, want %v", err, attendance.ErrNoActiveWeek)
	}
	if err := svc.MarkAttended(ctx, "amwepu"); !errors.Is(err, attendance.ErrNoActiveWeek) {
		t.Errorf("MarkAttended() error = %v, want %v", err, attendance.ErrNoActiveWeek)
	}

	// first reset establishes week 1, one unexcused record per student
	week, err := svc.ResetWeek(ctx)
	if err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}
	if week != 1 {
		t.Errorf("ResetWeek() week = %d, want 1", week)
	}
	sum, err := svc.ShowWeek(ctx)
	if err != nil {
		t.Fatalf("ShowWeek() failed: %v", err)
	}
	if sum.Unexcused != 2 || sum.Excused != 0 || sum.Attended != 0 {
		t.Errorf("ShowWeek() = %+v, want 2 unexcused", sum)
	}

	// reset is idempotent and never overwrites
	if err := svc.MarkExcused(ctx, "amwepu"); err != nil {
		t.Fatalf("MarkExcused() failed: %v", err)
	}
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() again failed: %v", err)
	}
	sum, _ = svc.ShowWeek(ctx)
	if sum.Unexcused != 1 || sum.Excused != 1 {
		t.Errorf("ShowWeek() after re-reset = %+v, want 1 unexcused 1 excused", sum)
	}

	// a student added later gets a record on the next reset only
	testutil.CreateStudent(t, rosterRepo, "tkalombo")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}
	sum, _ = svc.ShowWeek(ctx)
	if sum.Unexcused != 2 || sum.Excused != 1 {
		t.Errorf("ShowWeek() after late add = %+v, want 2 unexcused 1 excused", sum)
	}

	// bump moves the pointer without creating records
	week, err = svc.BumpWeek(ctx)
	if err != nil {
		t.Fatalf("BumpWeek() failed: %v", err)
	}
	if week != 2 {
		t.Errorf("BumpWeek() week = %d, want 2", week)
	}
	sum, _ = svc.ShowWeek(ctx)
	if sum.Unexcused+sum.Excused+sum.Attended != 0 {
		t.Errorf("week 2 has records before reset: %+v", sum)
	}

	// set-week only navigates to weeks with records
	if err := svc.SetWeek(ctx, 5); !errors.Is(err, attendance.ErrUnknownWeek) {
		t.Errorf("SetWeek(5) error = %v, want %v", err, attendance.ErrUnknownWeek)
	}
	if err := svc.SetWeek(ctx, 1); err != nil {
		t.Fatalf("SetWeek(1) failed: %v", err)
	}
	if cur, _ := svc.CurrentWeek(ctx); cur != 1 {
		t.Errorf("CurrentWeek() = %d, want 1", cur)
	}
	// ...and it mutates nothing
	recs, err := attRepo.StudentRecords(ctx, "amwepu")
	if err != nil {
		t.Fatalf("StudentRecords() failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != attendance.StatusExcused {
		t.Errorf("records after SetWeek = %+v, want 1 excused", recs)
	}
}

func TestService_mark(t *testing.T) {
	svc, rosterRepo, attRepo, _ := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	if _, err := svc.ResetWeek(ctx); err != nil {
		t.Fatalf("ResetWeek() failed: %v", err)
	}

	if err := svc.MarkExcused(ctx, "ghost"); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("MarkExcused(unknown) error = %v, want %v", err, roster.ErrNotFound)
	}

	// last write wins, one record per (student, week)
	if err := svc.MarkExcused(ctx, "amwepu"); err != nil {
		t.Fatalf("MarkExcused() failed: %v", err)
	}
	if err := svc.MarkAttended(ctx, "amwepu"); err != nil {
		t.Fatalf("MarkAttended() failed: %v", err)
	}
	recs, err := attRepo.StudentRecords(ctx, "amwepu")
	if err != nil {
		t.Fatalf("StudentRecords() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count = %d, want 1", len(recs))
	}
	if recs[0].Status != attendance.StatusAttended {
		t.Errorf("status = %s, want %s", recs[0].Status, attendance.StatusAttended)
	}

	// correcting a mistaken mark back to unexcused is permitted
	if err := svc.MarkUnexcused(ctx, "amwepu"); err != nil {
		t.Fatalf("MarkUnexcused() failed: %v", err)
	}
	recs, _ = attRepo.StudentRecords(ctx, "amwepu")
	if len(recs) != 1 || recs[0].Status != attendance.StatusUnexcused {
		t.Errorf("records = %+v, want 1 unexcused", recs)
	}
}

func TestService_removeStudentCascade(t *testing.T) {
	svc, rosterRepo, attRepo, _ := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")

	// three weeks of history
	for week := 1; week <= 3; week++ {
		if _, err := svc.ResetWeek(ctx); err != nil {
			t.Fatalf("ResetWeek() failed: %v", err)
		}
		if err := svc.MarkAttended(ctx, "amwepu"); err != nil {
			t.Fatalf("MarkAttended() failed: %v", err)
		}
		if week < 3 {
			if _, err := svc.BumpWeek(ctx); err != nil {
				t.Fatalf("BumpWeek() failed: %v", err)
			}
		}
	}

	if err := rosterRepo.DeleteStudent(ctx, "amwepu"); err != nil {
		t.Fatalf("DeleteStudent() failed: %v", err)
	}
	recs, err := attRepo.StudentRecords(ctx, "amwepu")
	if err != nil {
		t.Fatalf("StudentRecords() failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records after cascade = %+v, want none", recs)
	}

	// the other student's history is intact
	recs, _ = attRepo.StudentRecords(ctx, "wmukendi")
	if len(recs) != 3 {
		t.Errorf("wmukendi record count = %d, want 3", len(recs))
	}
}
