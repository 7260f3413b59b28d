package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/mahudhurio/core/attendance"
)

func (cli *commandLine) markStatus(ctx context.Context, id string, status attendance.Status) error {
	var err error
	switch status {
	case attendance.StatusExcused:
		err = cli.attSvc.MarkExcused(ctx, id)
	case attendance.StatusAttended:
		err = cli.attSvc.MarkAttended(ctx, id)
	default:
		err = cli.attSvc.MarkUnexcused(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Student %s marked as %s.\n", id, status)
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) bulkMarkAttended(ctx context.Context, args []string) error {
	path := cli.conf.Attendance.BulkImportPath
	if len(args) > 0 {
		path = args[0]
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := cli.attSvc.BulkMarkAttended(ctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Marked %d students as attended.\n", rep.Marked)
	for _, skipped := range rep.Skipped {
		cli.logger.Warn(fmt.Sprintf("line %d: skipped %q: %s", skipped.Line, skipped.ID, skipped.Reason))
	}
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) listUnexcused(ctx context.Context) error {
	students, err := cli.attSvc.ListUnexcused(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Unexcused absentees:")
	for _, s := range students {
		fmt.Printf("%s: %s (%s)\n", s.ID, s.FullName(), s.Email)
	}
	return nil
}
