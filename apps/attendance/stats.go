package main

import (
	"context"
	"fmt"
	"strconv"
)

func (cli *commandLine) aggregateStats(ctx context.Context) error {
	stats, err := cli.attSvc.AggregateStats(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Unexcused absences:")
	for _, st := range stats {
		fmt.Printf("- %s: %d absences\n", st.StudentID, st.Unexcused)
	}
	return nil
}

func (cli *commandLine) flagAtRisk(ctx context.Context, args []string) error {
	threshold := cli.conf.Attendance.AtRiskThreshold
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("Usage:\n  flag-at-risk [THRESHOLD]")
			return errHelp
		}
		threshold = n
	}

	atRisk, err := cli.attSvc.FlagAtRisk(ctx, threshold)
	if err != nil {
		return err
	}
	if len(atRisk) == 0 {
		fmt.Printf("No students with more than %d unexcused absences.\n", threshold)
		return nil
	}
	fmt.Println("Students at risk:")
	for _, st := range atRisk {
		fmt.Printf("! %s has %d unexcused absences\n", st.StudentID, st.Unexcused)
	}
	return nil
}
