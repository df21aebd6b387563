package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core/timetable"
)

type timetableRepository struct {
	db *timetableTable
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) *timetableRepository {
	return &timetableRepository{db: db.timetable}
}

func (repo *timetableRepository) UpsertEntry(ctx context.Context, ent timetable.Entry) (timetable.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// one subject per (class, weekday, period) slot
	for id, existing := range repo.db.table {
		if existing.ClassID == ent.ClassID && existing.Weekday == ent.Weekday && existing.Period == ent.Period {
			ent.ID = id
			ent.CreatedAt = existing.CreatedAt
			repo.db.table[id] = &ent
			return ent, nil
		}
	}
	if ent.ID == "" {
		ent.ID = uuid.New().String()
	}
	repo.db.table[ent.ID] = &ent
	return ent, nil
}

func (repo *timetableRepository) QueryEntriesByClass(ctx context.Context, classID string) ([]timetable.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]timetable.Entry, 0)
	for _, ent := range repo.db.table {
		if ent.ClassID == classID {
			entries = append(entries, *ent)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weekday != entries[j].Weekday {
			return entries[i].Weekday < entries[j].Weekday
		}
		return entries[i].Period < entries[j].Period
	})
	return entries, nil
}

func (repo *timetableRepository) GetEntryByID(ctx context.Context, id string) (timetable.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ent, ok := repo.db.table[id]; ok {
		return *ent, nil
	}
	return timetable.Entry{}, timetable.ErrNotFound
}

func (repo *timetableRepository) DeleteEntriesByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
