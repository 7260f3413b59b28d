package roster

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// ImportReport summarizes a roster sync against the import CSV.
type ImportReport struct {
	Added   []string
	Removed []string
	Kept    int
}

// Import reads a CSV roster (header row naming the students columns) and
// reconciles the stored roster with it: students missing from the store are
// added, students no longer in the CSV are removed with their attendance
// history. The whole diff is applied in one transaction.
func (svc *Service) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	desired, err := parseCSV(r)
	if err != nil {
		return ImportReport{}, err
	}

	current, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return ImportReport{}, err
	}
	currentIDs := make(map[string]struct{}, len(current))
	for _, s := range current {
		currentIDs[s.ID] = struct{}{}
	}
	desiredIDs := make(map[string]struct{}, len(desired))
	for _, s := range desired {
		desiredIDs[s.ID] = struct{}{}
	}

	var rep ImportReport
	var add []Student
	for _, s := range desired {
		if _, ok := currentIDs[s.ID]; ok {
			rep.Kept++
			continue
		}
		add = append(add, s)
		rep.Added = append(rep.Added, s.ID)
	}
	var removeIDs []string
	for _, s := range current {
		if _, ok := desiredIDs[s.ID]; !ok {
			removeIDs = append(removeIDs, s.ID)
			rep.Removed = append(rep.Removed, s.ID)
		}
	}

	if len(add) == 0 && len(removeIDs) == 0 {
		return rep, nil
	}
	if err := svc.repo.SyncRoster(ctx, add, removeIDs); err != nil {
		return ImportReport{}, err
	}
	return rep, nil
}

func parseCSV(r io.Reader) ([]Student, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading roster CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"id", "email", "first_name", "last_name"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("roster CSV is missing the %q column", required)
		}
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var students []Student
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading roster CSV line %d", line)
		}

		s := clean(Student{
			ID:                 field(rec, "id"),
			Email:              field(rec, "email"),
			FirstName:          field(rec, "first_name"),
			MiddleInitial:      field(rec, "middle_initial"),
			LastName:           field(rec, "last_name"),
			College:            field(rec, "college"),
			Department:         field(rec, "department"),
			Major:              field(rec, "major"),
			GraduationSemester: field(rec, "graduation_semester"),
		})
		if raw := field(rec, "class"); raw != "" {
			class, err := strconv.Atoi(raw)
			if err != nil {
				return nil, errors.Errorf("roster CSV line %d: invalid class year %q", line, raw)
			}
			s.Class = class
		}
		if err := core.ValidateStruct(s); err != nil {
			return nil, errors.Wrapf(err, "roster CSV line %d", line)
		}
		students = append(students, s)
	}
	return students, nil
}
