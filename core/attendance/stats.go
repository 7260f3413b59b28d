package attendance

import (
	"context"

	"github.com/trezcool/mahudhurio/core"
)

// DefaultAtRiskThreshold flags students with strictly more unexcused absences
// than this, unless overridden.
const DefaultAtRiskThreshold = 2

// AggregateStats counts unexcused records per student across all weeks.
// Every roster student is covered, including those with a zero count.
// Ordered by highest count first, then by id.
func (svc *Service) AggregateStats(ctx context.Context) ([]StudentStat, error) {
	return svc.repo.UnexcusedCounts(ctx,
		core.DBOrdering{Field: "unexcused"},
		core.DBOrdering{Field: "id", Ascending: true},
	)
}

// FlagAtRisk returns the students whose total unexcused count is strictly
// greater than the threshold.
func (svc *Service) FlagAtRisk(ctx context.Context, threshold int) ([]StudentStat, error) {
	stats, err := svc.AggregateStats(ctx)
	if err != nil {
		return nil, err
	}
	atRisk := make([]StudentStat, 0, len(stats))
	for _, st := range stats {
		if st.Unexcused > threshold {
			atRisk = append(atRisk, st)
		}
	}
	return atRisk, nil
}
