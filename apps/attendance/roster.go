package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/roster"
)

func (cli *commandLine) addStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-student", flag.ExitOnError)
	var s roster.Student
	fs.StringVar(&s.ID, "id", "", "The student's id (required)")
	fs.StringVar(&s.Email, "email", "", "The student's email address (required)")
	fs.StringVar(&s.FirstName, "first-name", "", "The student's first name (required)")
	fs.StringVar(&s.MiddleInitial, "middle-initial", "", "The student's middle initial")
	fs.StringVar(&s.LastName, "last-name", "", "The student's last name (required)")
	fs.StringVar(&s.College, "college", "", "The student's college")
	fs.StringVar(&s.Department, "department", "", "The student's department")
	fs.StringVar(&s.Major, "major", "", "The student's major")
	fs.IntVar(&s.Class, "class", 0, "The student's class year")
	fs.StringVar(&s.GraduationSemester, "graduation-semester", "", "The student's graduation semester")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := cli.rosterSvc.Add(ctx, s)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			for _, fld := range vErr.Fields {
				fmt.Fprintf(os.Stderr, "%s: %s\n", fld.Field, fld.Error)
			}
			fs.Usage()
			return errHelp
		}
		return err
	}
	fmt.Printf("Student %s added successfully.\n", s.ID)
	return nil
}

func (cli *commandLine) removeStudent(ctx context.Context, id string) error {
	if err := cli.rosterSvc.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Student %s removed successfully.\n", id)
	return nil
}

func (cli *commandLine) importRoster(ctx context.Context, args []string) error {
	path := cli.conf.Roster.ImportPath
	if len(args) > 0 {
		path = args[0]
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := cli.rosterSvc.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Roster synced with %s: %d added, %d removed, %d unchanged.\n",
		path, len(rep.Added), len(rep.Removed), rep.Kept)
	for _, id := range rep.Added {
		fmt.Printf("+ %s\n", id)
	}
	for _, id := range rep.Removed {
		fmt.Printf("- %s\n", id)
	}
	return nil
}

func (cli *commandLine) listStudents(ctx context.Context) error {
	students, err := cli.rosterSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Roster (%d students):\n", len(students))
	for _, s := range students {
		fmt.Printf("%s: %s (%s)\n", s.ID, s.FullName(), s.Email)
	}
	return nil
}

func (cli *commandLine) showStudent(ctx context.Context, id string) error {
	s, err := cli.rosterSvc.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s (%s)\n", s.ID, s.FullName(), s.Email)
	if s.College != "" || s.Department != "" || s.Major != "" {
		fmt.Printf("  %s / %s / %s\n", s.College, s.Department, s.Major)
	}
	if s.Class != 0 {
		fmt.Printf("  class of %d (%s)\n", s.Class, s.GraduationSemester)
	}

	recs, err := cli.attSvc.StudentHistory(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println("Attendance:")
	for _, rec := range recs {
		fmt.Printf("  week %d: %s\n", rec.Week, rec.Status)
	}
	return nil
}
