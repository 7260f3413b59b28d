package attendance

import (
	"context"
	"errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/roster"
)

// firstWeek is where reset-week starts when no week was ever initialized.
const firstWeek = 1

var (
	// errors
	ErrNoActiveWeek = errors.New("no active week; run reset-week first")
	ErrUnknownWeek  = errors.New("week has no attendance records; run reset-week for it first")
	ErrInvalidState = errors.New("invalid notification state transition")
)

type (
	Repository interface {
		// CurrentWeek returns the active week pointer, or ErrNoActiveWeek if
		// no week was ever initialized.
		CurrentWeek(ctx context.Context) (int, error)
		// AdvanceWeek moves the pointer to the next week (strictly
		// increasing) and registers the week id. No attendance rows are
		// created.
		AdvanceWeek(ctx context.Context) (int, error)
		// SelectWeek redirects the pointer without touching any record.
		SelectWeek(ctx context.Context, week int) error
		// InitializeWeek registers the week, points the pointer at it if none
		// is set, and inserts one unexcused record per student not already
		// having one for that week. Idempotent, single transaction.
		InitializeWeek(ctx context.Context, week int) error
		WeekHasRecords(ctx context.Context, week int) (bool, error)

		// SetStatus upserts the status for (student, week); last write wins.
		SetStatus(ctx context.Context, studentID string, week int, status Status) error
		// SetStatuses is SetStatus over many students in one transaction.
		SetStatuses(ctx context.Context, studentIDs []string, week int, status Status) error

		WeekSummary(ctx context.Context, week int) (WeekSummary, error)
		AllWeekSummaries(ctx context.Context) ([]WeekSummary, error)
		StudentsByStatus(ctx context.Context, week int, status Status) ([]roster.Student, error)
		StudentRecords(ctx context.Context, studentID string) ([]Record, error)
		UnexcusedCounts(ctx context.Context, ordering ...core.DBOrdering) ([]StudentStat, error)
	}

	Service struct {
		repo       Repository
		rosterRepo roster.Repository
		mailer     core.Mailer
		conf       *core.Config
	}
)

func NewService(repo Repository, rosterRepo roster.Repository, mailer core.Mailer, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		rosterRepo: rosterRepo,
		mailer:     mailer,
		conf:       conf,
	}
}

func (svc *Service) CurrentWeek(ctx context.Context) (int, error) {
	return svc.repo.CurrentWeek(ctx)
}

// BumpWeek advances the week pointer by one. It never creates attendance
// records; those appear on the next ResetWeek.
func (svc *Service) BumpWeek(ctx context.Context) (int, error) {
	return svc.repo.AdvanceWeek(ctx)
}

// ResetWeek initializes the active week: one unexcused record per student not
// already recorded for it. Re-running neither duplicates nor overwrites.
// The very first reset establishes week 1.
func (svc *Service) ResetWeek(ctx context.Context) (int, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoActiveWeek) {
			return 0, err
		}
		week = firstWeek
	}
	if err := svc.repo.InitializeWeek(ctx, week); err != nil {
		return 0, err
	}
	return week, nil
}

// SetWeek redirects subsequent reads/writes to week n. It refuses to navigate
// to a week that has no records and never mutates stored data.
func (svc *Service) SetWeek(ctx context.Context, week int) error {
	if week < firstWeek {
		return ErrUnknownWeek
	}
	ok, err := svc.repo.WeekHasRecords(ctx, week)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownWeek
	}
	return svc.repo.SelectWeek(ctx, week)
}

// ShowWeek returns the per-status counts for the active week. Pure read.
func (svc *Service) ShowWeek(ctx context.Context) (WeekSummary, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		return WeekSummary{}, err
	}
	return svc.repo.WeekSummary(ctx, week)
}

// Summaries returns every week's counts plus the active week, for display.
func (svc *Service) Summaries(ctx context.Context) ([]WeekSummary, int, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveWeek) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	sums, err := svc.repo.AllWeekSummaries(ctx)
	if err != nil {
		return nil, 0, err
	}
	return sums, week, nil
}

func (svc *Service) MarkExcused(ctx context.Context, studentID string) error {
	return svc.mark(ctx, studentID, StatusExcused)
}

func (svc *Service) MarkAttended(ctx context.Context, studentID string) error {
	return svc.mark(ctx, studentID, StatusAttended)
}

func (svc *Service) MarkUnexcused(ctx context.Context, studentID string) error {
	return svc.mark(ctx, studentID, StatusUnexcused)
}

func (svc *Service) mark(ctx context.Context, studentID string, status Status) error {
	studentID = core.CleanString(studentID, true /* lower */)
	if _, err := svc.rosterRepo.GetStudent(ctx, studentID); err != nil {
		return err
	}
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		return err
	}
	return svc.repo.SetStatus(ctx, studentID, week, status)
}

// ListUnexcused returns the students still unexcused for the active week,
// ordered by id.
func (svc *Service) ListUnexcused(ctx context.Context) ([]roster.Student, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	return svc.repo.StudentsByStatus(ctx, week, StatusUnexcused)
}

// StudentHistory returns every attendance record for one student, ordered by
// week.
func (svc *Service) StudentHistory(ctx context.Context, studentID string) ([]Record, error) {
	studentID = core.CleanString(studentID, true /* lower */)
	if _, err := svc.rosterRepo.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.StudentRecords(ctx, studentID)
}
