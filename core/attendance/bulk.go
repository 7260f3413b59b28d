package attendance

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

type (
	// SkippedEntry is one bulk-import line that could not be applied.
	SkippedEntry struct {
		Line   int
		ID     string
		Reason string
	}

	// BulkReport summarizes a bulk import: applied lines succeed together,
	// bad lines are reported and never abort the rest of the batch.
	BulkReport struct {
		Marked  int
		Skipped []SkippedEntry
	}
)

// BulkMarkAttended consumes a line-oriented identifier list and marks every
// recognized student attended for the active week. Blank lines are ignored;
// a line containing '@' is treated as an email address and reduced to its
// local part. All recognized ids are committed in a single transaction.
func (svc *Service) BulkMarkAttended(ctx context.Context, r io.Reader) (BulkReport, error) {
	week, err := svc.repo.CurrentWeek(ctx)
	if err != nil {
		return BulkReport{}, err
	}

	known, err := svc.rosterIDs(ctx)
	if err != nil {
		return BulkReport{}, err
	}

	var rep BulkReport
	var ids []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		id := ParseIdentifier(scanner.Text())
		if id == "" {
			continue
		}
		if _, ok := known[id]; !ok {
			rep.Skipped = append(rep.Skipped, SkippedEntry{Line: line, ID: id, Reason: "not in roster"})
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return BulkReport{}, errors.Wrap(err, "reading bulk import")
	}

	if len(ids) > 0 {
		if err := svc.repo.SetStatuses(ctx, ids, week, StatusAttended); err != nil {
			return BulkReport{}, err
		}
	}
	rep.Marked = len(ids)
	return rep, nil
}

// ParseIdentifier derives a roster id from one bulk-import line: the local
// part when the line is an email address, the trimmed line otherwise. Blank
// lines yield "".
func ParseIdentifier(line string) string {
	id := core.CleanString(line, true /* lower */)
	if at := strings.IndexByte(id, '@'); at >= 0 {
		id = id[:at]
	}
	return id
}

func (svc *Service) rosterIDs(ctx context.Context) (map[string]struct{}, error) {
	students, err := svc.rosterRepo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(students))
	for _, s := range students {
		ids[s.ID] = struct{}{}
	}
	return ids, nil
}
