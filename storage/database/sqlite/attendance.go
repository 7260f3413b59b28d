package sqliterepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/roster"
)

const upsertStatusStmt = `
INSERT INTO attendance (student, week, status) VALUES (?, ?, ?)
ON CONFLICT (student, week) DO UPDATE SET status = excluded.status`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CurrentWeek(ctx context.Context) (int, error) {
	return repo.currentWeek(ctx, repo.db)
}

func (repo attendanceRepository) currentWeek(ctx context.Context, exec core.DBExecutor) (int, error) {
	var week int
	err := exec.GetContext(ctx, &week, `SELECT week FROM current_week WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, attendance.ErrNoActiveWeek
		}
		return 0, errors.Wrap(err, "getting current week")
	}
	return week, nil
}

func (repo attendanceRepository) AdvanceWeek(ctx context.Context) (int, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "starting week bump")
	}
	defer func() { _ = tx.Rollback() }()

	week, err := repo.currentWeek(ctx, tx)
	if err != nil {
		return 0, err
	}
	next := week + 1
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO weeks (id) VALUES (?)`, next); err != nil {
		return 0, errors.Wrap(err, "registering week")
	}
	if _, err := tx.ExecContext(ctx, `UPDATE current_week SET week = ? WHERE id = 1`, next); err != nil {
		return 0, errors.Wrap(err, "advancing week pointer")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing week bump")
	}
	return next, nil
}

func (repo attendanceRepository) SelectWeek(ctx context.Context, week int) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO current_week (id, week) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET week = excluded.week`, week)
	return errors.Wrap(err, "selecting week")
}

func (repo attendanceRepository) InitializeWeek(ctx context.Context, week int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting week reset")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO weeks (id) VALUES (?)`, week); err != nil {
		return errors.Wrap(err, "registering week")
	}
	// establish the pointer on first ever reset; never move an existing one
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO current_week (id, week) VALUES (1, ?)
		ON CONFLICT (id) DO NOTHING`, week); err != nil {
		return errors.Wrap(err, "initializing week pointer")
	}
	// exactly one default row per student still missing one for this week
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attendance (student, week, status)
		SELECT id, ?, ?
		FROM students
		WHERE id NOT IN (SELECT student FROM attendance WHERE week = ?)`,
		week, attendance.StatusUnexcused, week); err != nil {
		return errors.Wrap(err, "initializing week records")
	}

	return errors.Wrap(tx.Commit(), "committing week reset")
}

func (repo attendanceRepository) WeekHasRecords(ctx context.Context, week int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM attendance WHERE week = ?)`, week)
	if err != nil {
		return false, errors.Wrap(err, "checking week records")
	}
	return exists, nil
}

func (repo attendanceRepository) SetStatus(ctx context.Context, studentID string, week int, status attendance.Status) error {
	_, err := repo.db.ExecContext(ctx, upsertStatusStmt, studentID, week, status)
	return errors.Wrap(err, "upserting status")
}

func (repo attendanceRepository) SetStatuses(ctx context.Context, studentIDs []string, week int, status attendance.Status) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting bulk upsert")
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range studentIDs {
		if _, err := tx.ExecContext(ctx, upsertStatusStmt, id, week, status); err != nil {
			return errors.Wrap(err, "upserting status for "+id)
		}
	}

	return errors.Wrap(tx.Commit(), "committing bulk upsert")
}

func (repo attendanceRepository) WeekSummary(ctx context.Context, week int) (attendance.WeekSummary, error) {
	var sum attendance.WeekSummary
	err := repo.db.GetContext(ctx, &sum, `
		SELECT ? AS week,
		       COUNT(CASE WHEN status = 'unexcused' THEN 1 END) AS unexcused,
		       COUNT(CASE WHEN status = 'excused' THEN 1 END)   AS excused,
		       COUNT(CASE WHEN status = 'attended' THEN 1 END)  AS attended
		FROM attendance
		WHERE week = ?`, week, week)
	if err != nil {
		return attendance.WeekSummary{}, errors.Wrap(err, "summarizing week")
	}
	return sum, nil
}

func (repo attendanceRepository) AllWeekSummaries(ctx context.Context) ([]attendance.WeekSummary, error) {
	sums := make([]attendance.WeekSummary, 0)
	err := repo.db.SelectContext(ctx, &sums, `
		SELECT week,
		       COUNT(CASE WHEN status = 'unexcused' THEN 1 END) AS unexcused,
		       COUNT(CASE WHEN status = 'excused' THEN 1 END)   AS excused,
		       COUNT(CASE WHEN status = 'attended' THEN 1 END)  AS attended
		FROM attendance
		GROUP BY week
		ORDER BY week`)
	if err != nil {
		return nil, errors.Wrap(err, "summarizing weeks")
	}
	return sums, nil
}

func (repo attendanceRepository) StudentsByStatus(ctx context.Context, week int, status attendance.Status) ([]roster.Student, error) {
	students := make([]roster.Student, 0)
	err := repo.db.SelectContext(ctx, &students, `
		SELECT s.id, s.email, s.first_name, s.middle_initial, s.last_name,
		       s.college, s.department, s.major, s.class, s.graduation_semester
		FROM students s
		JOIN attendance a ON a.student = s.id
		WHERE a.week = ? AND a.status = ?
		ORDER BY s.id`, week, status)
	if err != nil {
		return nil, errors.Wrap(err, "querying students by status")
	}
	return students, nil
}

func (repo attendanceRepository) StudentRecords(ctx context.Context, studentID string) ([]attendance.Record, error) {
	recs := make([]attendance.Record, 0)
	err := repo.db.SelectContext(ctx, &recs, `
		SELECT student, week, status FROM attendance WHERE student = ? ORDER BY week`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student records")
	}
	return recs, nil
}

// orderableStatColumns whitelists the fields UnexcusedCounts may order by.
var orderableStatColumns = map[string]string{
	"id":        "s.id",
	"unexcused": "unexcused",
}

func (repo attendanceRepository) UnexcusedCounts(ctx context.Context, ordering ...core.DBOrdering) ([]attendance.StudentStat, error) {
	orderBy := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := orderableStatColumns[ord.Field]
		if !ok {
			return nil, errors.Errorf("cannot order stats by %q", ord.Field)
		}
		orderBy = append(orderBy, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "s.id ASC")
	}

	stats := make([]attendance.StudentStat, 0)
	err := repo.db.SelectContext(ctx, &stats, `
		SELECT s.id AS id, COUNT(a.student) AS unexcused
		FROM students s
		LEFT JOIN attendance a ON a.student = s.id AND a.status = 'unexcused'
		GROUP BY s.id
		ORDER BY `+strings.Join(orderBy, ", "))
	if err != nil {
		return nil, errors.Wrap(err, "aggregating unexcused counts")
	}
	return stats, nil
}
