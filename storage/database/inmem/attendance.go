package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/attendance"
)

type attendanceRepository struct {
	db       *attendanceTable
	children *childTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance, children: db.child}
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// one mark per (child, date)
	for id, existing := range repo.db.table {
		if existing.ChildID == rec.ChildID && existing.Date.Equal(rec.Date) {
			rec.ID = id
			rec.CreatedAt = existing.CreatedAt
			repo.db.table[id] = &rec
			return rec, nil
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) classOf(childID string) string {
	repo.children.mutex.RLock()
	defer repo.children.mutex.RUnlock()
	if chd, ok := repo.children.table[childID]; ok {
		return chd.ClassID.String
	}
	return ""
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.table {
		if filter != nil {
			if filter.ChildID != "" && rec.ChildID != filter.ChildID {
				continue
			}
			if filter.ClassID != "" && repo.classOf(rec.ChildID) != filter.ClassID {
				continue
			}
			if !filter.From.IsZero() && rec.Date.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && rec.Date.After(filter.To) {
				continue
			}
		}
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return recs, nil
}
