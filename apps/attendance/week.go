package main

import (
	"context"
	"fmt"
)

const (
	colorReset       = "\x1b[0m"
	colorCurrentWeek = "\x1b[1;32m" // bright green
)

func (cli *commandLine) bumpWeek(ctx context.Context) error {
	week, err := cli.attSvc.BumpWeek(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Week bumped to %d.\n", week)
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) resetWeek(ctx context.Context) error {
	week, err := cli.attSvc.ResetWeek(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Week %d attendance initialized.\n", week)
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) setWeek(ctx context.Context, week int) error {
	if err := cli.attSvc.SetWeek(ctx, week); err != nil {
		return err
	}
	fmt.Printf("Set current week to %d.\n", week)
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) showWeek(ctx context.Context) error {
	sum, err := cli.attSvc.ShowWeek(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Week %d: %d unexcused, %d excused, %d attended\n",
		sum.Week, sum.Unexcused, sum.Excused, sum.Attended)
	return cli.printWeeklySummary(ctx)
}

func (cli *commandLine) printWeeklySummary(ctx context.Context) error {
	sums, current, err := cli.attSvc.Summaries(ctx)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		return nil
	}

	fmt.Println("\nWeekly Data Summary:")
	for _, sum := range sums {
		status, color := "", colorReset
		if sum.Week == current {
			status, color = " (current)", colorCurrentWeek
		}
		fmt.Printf("%sWeek %d%s: %d unexcused, %d excused, %d attended%s\n",
			color, sum.Week, status, sum.Unexcused, sum.Excused, sum.Attended, colorReset)
	}
	return nil
}
