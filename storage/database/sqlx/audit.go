package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/audit"
)

var auditColumns = []string{
	"id", "actor_id", "action", "object_type", "object_id", "detail", "created_at",
}

type auditRow struct {
	ID         string      `db:"id"`
	ActorID    null.String `db:"actor_id"`
	Action     string      `db:"action"`
	ObjectType string      `db:"object_type"`
	ObjectID   null.String `db:"object_id"`
	Detail     null.String `db:"detail"`
	CreatedAt  null.Time   `db:"created_at"`
}

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *sqlx.DB) *auditRepository {
	return &auditRepository{db: db}
}

func (repo auditRepository) unrow(r auditRow) audit.Entry {
	return audit.Entry{
		ID:         r.ID,
		ActorID:    r.ActorID.String,
		Action:     r.Action,
		ObjectType: r.ObjectType,
		ObjectID:   r.ObjectID.String,
		Detail:     r.Detail.String,
		CreatedAt:  r.CreatedAt.Time,
	}
}

func (repo auditRepository) CreateEntry(ctx context.Context, ent audit.Entry) (audit.Entry, error) {
	ent.ID = uuid.New().String()
	query, args, err := psql.Insert("audit_entry").
		Columns(auditColumns...).
		Values(ent.ID,
			null.NewString(ent.ActorID, ent.ActorID != ""),
			ent.Action, ent.ObjectType,
			null.NewString(ent.ObjectID, ent.ObjectID != ""),
			null.NewString(ent.Detail, ent.Detail != ""),
			null.NewTime(ent.CreatedAt.UTC(), !ent.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "building audit insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return ent, nil
}

func (repo auditRepository) QueryEntries(ctx context.Context, limit, offset int, ordering []core.DBOrdering) ([]audit.Entry, error) {
	qb := psql.Select(auditColumns...).From("audit_entry")
	if clause := orderByClause(ordering, auditColumns); clause != "" {
		qb = qb.OrderBy(clause)
	}
	qb = qb.Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building audit query")
	}
	var rows []auditRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, repo.unrow(r))
	}
	return entries, nil
}
