package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/invite"
)

type invitationRepository struct {
	db *invitationTable
}

var _ invite.Repository = (*invitationRepository)(nil) // interface compliance check

func NewInvitationRepository(db *DB) *invitationRepository {
	return &invitationRepository{db: db.invitation}
}

func (repo *invitationRepository) query() []invite.Invitation {
	invs := make([]invite.Invitation, 0, len(repo.db.table))
	for _, inv := range repo.db.table {
		invs = append(invs, *inv)
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].CreatedAt.Before(invs[j].CreatedAt) })
	return invs
}

func (repo *invitationRepository) UpsertInvitation(ctx context.Context, inv invite.Invitation) (invite.Invitation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// one row per email
	for id, existing := range repo.db.table {
		if existing.Email == inv.Email {
			inv.ID = id
			repo.db.table[id] = &inv
			return inv, nil
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	repo.db.table[inv.ID] = &inv
	return inv, nil
}

func (repo *invitationRepository) GetInvitationByToken(ctx context.Context, token string) (invite.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inv := range repo.db.table {
		if inv.Token == token {
			return *inv, nil
		}
	}
	return invite.Invitation{}, invite.ErrNotFound
}

func (repo *invitationRepository) GetInvitationByEmail(ctx context.Context, email string) (invite.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inv := range repo.db.table {
		if inv.Email == email {
			return *inv, nil
		}
	}
	return invite.Invitation{}, invite.ErrNotFound
}

func (repo *invitationRepository) QueryInvitations(ctx context.Context, ordering []core.DBOrdering) ([]invite.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *invitationRepository) UpdateInvitation(ctx context.Context, inv invite.Invitation) (invite.Invitation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[inv.ID]; !ok {
		return invite.Invitation{}, invite.ErrNotFound
	}
	repo.db.table[inv.ID] = &inv
	return inv, nil
}

func (repo *invitationRepository) DeleteInvitationsByID(ctx context.Context, ids ...string) (int, error) {
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
