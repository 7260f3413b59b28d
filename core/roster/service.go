package roster

import (
	"context"
	"errors"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrNotFound  = errors.New("student not found in roster")
	ErrDuplicate = errors.New("a student with this id already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		// DeleteStudent removes the student and, through the schema's cascade,
		// every attendance record referencing it.
		DeleteStudent(ctx context.Context, id string) error
		// SyncRoster applies an add/remove diff in a single transaction.
		SyncRoster(ctx context.Context, add []Student, removeIDs []string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Add(ctx context.Context, s Student) (Student, error) {
	s = clean(s)
	if err := core.ValidateStruct(s); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, core.CleanString(id, true /* lower */))
}

func (svc *Service) Remove(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, core.CleanString(id, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func clean(s Student) Student {
	s.ID = core.CleanString(s.ID, true /* lower */)
	s.Email = core.CleanString(s.Email, true /* lower */)
	s.FirstName = core.CleanString(s.FirstName)
	s.MiddleInitial = core.CleanString(s.MiddleInitial)
	s.LastName = core.CleanString(s.LastName)
	s.College = core.CleanString(s.College)
	s.Department = core.CleanString(s.Department)
	s.Major = core.CleanString(s.Major)
	s.GraduationSemester = core.CleanString(s.GraduationSemester)
	return s
}
