package testutil

import (
	"context"
	"net/mail"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/roster"
	"github.com/trezcool/mahudhurio/storage/database"
)

// PrepareDB opens a fresh in-memory database with the schema applied.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db.SetMaxOpenConns(1) // keep the sole in-memory connection alive
	if err := database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewConfig returns a minimal test configuration.
func NewConfig() *core.Config {
	conf := &core.Config{AppName: "Mahudhurio", Debug: true}
	conf.Mail.Backend = core.MailBackendConsole
	conf.Mail.Sender = mail.Address{Name: "Course Staff", Address: "staff@test.cd"}
	conf.Mail.Subject = "Unexcused lecture absence"
	conf.Attendance.AtRiskThreshold = 2
	return conf
}

func CreateStudent(t *testing.T, repo roster.Repository, id string) roster.Student {
	t.Helper()

	s, err := repo.CreateStudent(context.Background(), roster.Student{
		ID:        id,
		Email:     id + "@school.edu",
		FirstName: "Stu",
		LastName:  "Dent",
	})
	if err != nil {
		t.Fatalf("CreateStudent(%s) failed: %v", id, err)
	}
	return s
}
