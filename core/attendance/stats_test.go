package attendance_test

import (
	"context"
	"testing"

	"github.com/trezcool/mahudhurio/core/attendance"
	testutil "github.com/trezcool/mahudhurio/tests"
)

// seedHistory builds three weeks of records: amwepu misses all three,
// wmukendi misses two, tkalombo attends every lecture.
func seedHistory(t *testing.T, svc *attendance.Service) {
	t.Helper()
	ctx := context.Background()

	for week := 1; week <= 3; week++ {
		if _, err := svc.ResetWeek(ctx); err != nil {
			t.Fatalf("ResetWeek() failed: %v", err)
		}
		if err := svc.MarkAttended(ctx, "tkalombo"); err != nil {
			t.Fatalf("MarkAttended() failed: %v", err)
		}
		if week == 1 {
			if err := svc.MarkExcused(ctx, "wmukendi"); err != nil {
				t.Fatalf("MarkExcused() failed: %v", err)
			}
		}
		if week < 3 {
			if _, err := svc.BumpWeek(ctx); err != nil {
				t.Fatalf("BumpWeek() failed: %v", err)
			}
		}
	}
}

func TestService_AggregateStats(t *testing.T) {
	svc, rosterRepo, _, _ := setup(t)

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")
	testutil.CreateStudent(t, rosterRepo, "tkalombo")
	seedHistory(t, svc)

	stats, err := svc.AggregateStats(context.Background())
	if err != nil {
		t.Fatalf("AggregateStats() failed: %v", err)
	}

	// every rostered student appears, worst offenders first
	want := []attendance.StudentStat{
		{StudentID: "amwepu", Unexcused: 3},
		{StudentID: "wmukendi", Unexcused: 2},
		{StudentID: "tkalombo", Unexcused: 0},
	}
	if len(stats) != len(want) {
		t.Fatalf("stat count = %d, want %d", len(stats), len(want))
	}
	for i, w := range want {
		if stats[i] != w {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], w)
		}
	}
}

func TestService_FlagAtRisk(t *testing.T) {
	svc, rosterRepo, _, _ := setup(t)

	testutil.CreateStudent(t, rosterRepo, "amwepu")
	testutil.CreateStudent(t, rosterRepo, "wmukendi")
	testutil.CreateStudent(t, rosterRepo, "tkalombo")
	seedHistory(t, svc)

	// threshold is exclusive: exactly 2 absences is not yet at risk
	flagged, err := svc.FlagAtRisk(context.Background(), 2)
	if err != nil {
		t.Fatalf("FlagAtRisk() failed: %v", err)
	}
	if len(flagged) != 1 || flagged[0].StudentID != "amwepu" {
		t.Errorf("flagged = %+v, want amwepu only", flagged)
	}

	flagged, err = svc.FlagAtRisk(context.Background(), 1)
	if err != nil {
		t.Fatalf("FlagAtRisk() failed: %v", err)
	}
	if len(flagged) != 2 {
		t.Errorf("flagged = %+v, want amwepu and wmukendi", flagged)
	}
}
