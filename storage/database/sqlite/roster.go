package sqliterepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/roster"
)

const studentColumns = `id, email, first_name, middle_initial, last_name, college, department, major, class, graduation_semester`

const insertStudentStmt = `
INSERT INTO students (` + studentColumns + `)
VALUES (:id, :email, :first_name, :middle_initial, :last_name, :college, :department, :major, :class, :graduation_semester)`

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

// trapNoRowsErr maps sql "no rows" err to roster.ErrNotFound
func (repo rosterRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return roster.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps a primary key violation to roster.ErrDuplicate
func (repo rosterRepository) trapConstraintErr(err error, msg string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return roster.ErrDuplicate
	}
	return errors.Wrap(err, msg)
}

func (repo rosterRepository) CreateStudent(ctx context.Context, s roster.Student) (roster.Student, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertStudentStmt, s); err != nil {
		return roster.Student{}, repo.trapConstraintErr(err, "inserting student")
	}
	return s, nil
}

func (repo rosterRepository) GetStudent(ctx context.Context, id string) (roster.Student, error) {
	var s roster.Student
	err := repo.db.GetContext(ctx, &s, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	if err != nil {
		return roster.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return s, nil
}

func (repo rosterRepository) QueryAllStudents(ctx context.Context) ([]roster.Student, error) {
	students := make([]roster.Student, 0)
	err := repo.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo rosterRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}

func (repo rosterRepository) SyncRoster(ctx context.Context, add []roster.Student, removeIDs []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting roster sync")
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range add {
		if _, err := tx.NamedExecContext(ctx, insertStudentStmt, s); err != nil {
			return repo.trapConstraintErr(err, "inserting student "+s.ID)
		}
	}
	for _, id := range removeIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id); err != nil {
			return errors.Wrap(err, "deleting student "+id)
		}
	}

	return errors.Wrap(tx.Commit(), "committing roster sync")
}
