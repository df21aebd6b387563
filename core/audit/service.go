package audit

import (
	"context"
	"time"

	"github.com/viserknight/mtss/core"
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, ent Entry) (Entry, error)
		QueryEntries(ctx context.Context, limit, offset int, ordering []core.DBOrdering) ([]Entry, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an audit entry best-effort: a failed write is reported to the
// error logger but never fails the operation being audited.
func (svc *Service) Log(ctx context.Context, actorID, action, objectType, objectID, detail string) {
	ent := Entry{
		ActorID:    actorID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := svc.repo.CreateEntry(ctx, ent); err != nil {
		svc.logger.Error("audit: recording entry failed", err)
	}
}

// Query pages through the trail, newest first.
func (svc *Service) Query(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return svc.repo.QueryEntries(ctx, limit, offset, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}
