package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/roster"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	logger    core.Logger
	db        *sqlx.DB
	rosterSvc *roster.Service
	attSvc    *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  add-student -id ID -email EMAIL ...   - add a new student to the roster")
	fmt.Println("  remove-student ID                     - remove a student and their attendance history")
	fmt.Println("  import-roster [FILE]                  - sync the roster with a CSV file")
	fmt.Println("  list-students                         - print the roster")
	fmt.Println("  show-student ID                       - print a student and their attendance history")
	fmt.Println("  mark-excused ID                       - mark a student excused for the current week")
	fmt.Println("  mark-attended ID                      - mark a student attended for the current week")
	fmt.Println("  bulk-mark-attended [FILE]             - mark attendance from a file, one id or email per line")
	fmt.Println("  list-unexcused                        - list students with unexcused absences this week")
	fmt.Println("  email-unexcused [-yes]                - email students with unexcused absences this week")
	fmt.Println("  show-week                             - display the current week's counts")
	fmt.Println("  reset-week                            - initialize attendance records for the current week")
	fmt.Println("  bump-week                             - increment to the next week")
	fmt.Println("  set-week N                            - set the current week number")
	fmt.Println("  aggregate-stats                       - show aggregate absence statistics")
	fmt.Println("  flag-at-risk [THRESHOLD]              - flag students with too many unexcused absences")
	fmt.Println("  migrate COMMAND [ARGS]                - run a schema migration command")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "bump-week":
		return cli.bumpWeek(ctx)
	case "reset-week":
		return cli.resetWeek(ctx)
	case "set-week":
		week, err := cli.intArg(args[2:], "set-week N")
		if err != nil {
			return err
		}
		return cli.setWeek(ctx, week)
	case "show-week":
		return cli.showWeek(ctx)
	case "add-student":
		return cli.addStudent(ctx, args[2:])
	case "remove-student":
		id, err := cli.stringArg(args[2:], "remove-student ID")
		if err != nil {
			return err
		}
		return cli.removeStudent(ctx, id)
	case "import-roster":
		return cli.importRoster(ctx, args[2:])
	case "list-students":
		return cli.listStudents(ctx)
	case "show-student":
		id, err := cli.stringArg(args[2:], "show-student ID")
		if err != nil {
			return err
		}
		return cli.showStudent(ctx, id)
	case "mark-excused":
		id, err := cli.stringArg(args[2:], "mark-excused ID")
		if err != nil {
			return err
		}
		return cli.markStatus(ctx, id, attendance.StatusExcused)
	case "mark-attended":
		id, err := cli.stringArg(args[2:], "mark-attended ID")
		if err != nil {
			return err
		}
		return cli.markStatus(ctx, id, attendance.StatusAttended)
	case "bulk-mark-attended":
		return cli.bulkMarkAttended(ctx, args[2:])
	case "list-unexcused":
		return cli.listUnexcused(ctx)
	case "email-unexcused":
		return cli.emailUnexcused(ctx, args[2:])
	case "aggregate-stats":
		return cli.aggregateStats(ctx)
	case "flag-at-risk":
		return cli.flagAtRisk(ctx, args[2:])
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) stringArg(args []string, usage string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		fmt.Println("Usage:\n  " + usage)
		return "", errHelp
	}
	return args[0], nil
}

func (cli *commandLine) intArg(args []string, usage string) (int, error) {
	raw, err := cli.stringArg(args, usage)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Println("Usage:\n  " + usage)
		return 0, errHelp
	}
	return n, nil
}
