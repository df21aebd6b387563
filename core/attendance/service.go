package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/child"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Repository interface {
		// UpsertRecord inserts the mark or overwrites the existing
		// (child_id, date) row.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
	}

	Service struct {
		repo   Repository
		chdSvc *child.Service
	}
)

func NewService(repo Repository, chdSvc *child.Service) *Service {
	return &Service{repo: repo, chdSvc: chdSvc}
}

// MarkAll records one date's marks sequentially; a failed child aborts and
// surfaces the error (marks already written stay - re-marking overwrites).
func (svc *Service) MarkAll(ctx context.Context, mr MarkRequest, markedBy string) ([]Record, error) {
	date := DateOnly(mr.Date)
	now := time.Now().UTC()

	records := make([]Record, 0, len(mr.Marks))
	for _, m := range mr.Marks {
		if _, err := svc.chdSvc.GetByID(ctx, m.ChildID); err != nil {
			return records, err
		}
		rec, err := svc.repo.UpsertRecord(ctx, Record{
			ChildID:   m.ChildID,
			Date:      date,
			Status:    m.Status,
			MarkedBy:  markedBy,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Record, error) {
	if filter != nil {
		if !filter.From.IsZero() {
			filter.From = DateOnly(filter.From)
		}
		if !filter.To.IsZero() {
			filter.To = DateOnly(filter.To)
		}
	}
	return svc.repo.QueryRecords(ctx, filter, []core.DBOrdering{
		{Field: "date", Ascending: true},
		{Field: "child_id", Ascending: true},
	})
}
