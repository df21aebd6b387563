package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core/report"
)

type reportCardRepository struct {
	db *reportCardTable
}

var _ report.Repository = (*reportCardRepository)(nil) // interface compliance check

func NewReportCardRepository(db *DB) *reportCardRepository {
	return &reportCardRepository{db: db.reportCard}
}

func (repo *reportCardRepository) CreateReportCard(ctx context.Context, rc report.ReportCard) (report.ReportCard, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rc.ID = uuid.New().String()
	repo.db.table[rc.ID] = &rc
	return rc, nil
}

func (repo *reportCardRepository) QueryReportCardsByChild(ctx context.Context, childID string) ([]report.ReportCard, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cards := make([]report.ReportCard, 0)
	for _, rc := range repo.db.table {
		if rc.ChildID == childID {
			cards = append(cards, *rc)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (repo *reportCardRepository) GetReportCardByID(ctx context.Context, id string) (report.ReportCard, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rc, ok := repo.db.table[id]; ok {
		return *rc, nil
	}
	return report.ReportCard{}, report.ErrNotFound
}

func (repo *reportCardRepository) DeleteReportCardsByID(ctx context.Context, ids ...string) (int, error) {
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
