package attendance

// Status of a student for a given week. A flat enumeration: any status may
// overwrite any other, the last write for a (student, week) pair wins.
type Status string

const (
	// StatusUnexcused is the default for every newly initialized week.
	StatusUnexcused Status = "unexcused"
	StatusExcused   Status = "excused"
	StatusAttended  Status = "attended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnexcused, StatusExcused, StatusAttended:
		return true
	}
	return false
}

// Record is one attendance row, unique per (Student, Week).
type Record struct {
	Student string `db:"student"`
	Week    int    `db:"week"`
	Status  Status `db:"status"`
}

// WeekSummary counts each status for one week.
type WeekSummary struct {
	Week      int `db:"week"`
	Unexcused int `db:"unexcused"`
	Excused   int `db:"excused"`
	Attended  int `db:"attended"`
}

// StudentStat is a per-student unexcused total across all weeks.
type StudentStat struct {
	StudentID string `db:"id"`
	Unexcused int    `db:"unexcused"`
}
