package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/audit"
)

type auditRepository struct {
	db *auditTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, ent audit.Entry) (audit.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ent.ID = uuid.New().String()
	repo.db.table[ent.ID] = &ent
	return ent, nil
}

func (repo *auditRepository) QueryEntries(ctx context.Context, limit, offset int, ordering []core.DBOrdering) ([]audit.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]audit.Entry, 0, len(repo.db.table))
	for _, ent := range repo.db.table {
		entries = append(entries, *ent)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })

	if offset >= len(entries) {
		return []audit.Entry{}, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
