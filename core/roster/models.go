package roster

import (
	"net/mail"
	"strings"
)

// Student is a roster entry. ID is the institutional handle students use for
// everything else (email local part, gradebook, etc.).
type Student struct {
	ID                 string `json:"id" db:"id" validate:"required,alphanum_"`
	Email              string `json:"email" db:"email" validate:"required,email"`
	FirstName          string `json:"first_name" db:"first_name" validate:"required"`
	MiddleInitial      string `json:"middle_initial" db:"middle_initial"`
	LastName           string `json:"last_name" db:"last_name" validate:"required"`
	College            string `json:"college" db:"college"`
	Department         string `json:"department" db:"department"`
	Major              string `json:"major" db:"major"`
	Class              int    `json:"class" db:"class" validate:"omitempty,min=0"`
	GraduationSemester string `json:"graduation_semester" db:"graduation_semester"`
}

func (s Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.FirstName, s.MiddleInitial, s.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (s Student) Address() mail.Address {
	return mail.Address{Name: s.FullName(), Address: s.Email}
}
