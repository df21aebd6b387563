package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/invite"
)

var invitationColumns = []string{
	"id", "email", "token", "status", "invited_by", "created_at", "expires_at",
}

type invitationRow struct {
	ID        string      `db:"id"`
	Email     string      `db:"email"`
	Token     string      `db:"token"`
	Status    string      `db:"status"`
	InvitedBy null.String `db:"invited_by"`
	CreatedAt null.Time   `db:"created_at"`
	ExpiresAt null.Time   `db:"expires_at"`
}

type invitationRepository struct {
	db *sqlx.DB
}

var _ invite.Repository = (*invitationRepository)(nil) // interface compliance check

func NewInvitationRepository(db *sqlx.DB) *invitationRepository {
	return &invitationRepository{db: db}
}

func (repo invitationRepository) row(inv invite.Invitation) invitationRow {
	return invitationRow{
		ID:        inv.ID,
		Email:     inv.Email,
		Token:     inv.Token,
		Status:    inv.Status,
		InvitedBy: null.NewString(inv.InvitedBy, inv.InvitedBy != ""),
		CreatedAt: null.NewTime(inv.CreatedAt.UTC(), !inv.CreatedAt.IsZero()),
		ExpiresAt: null.NewTime(inv.ExpiresAt.UTC(), !inv.ExpiresAt.IsZero()),
	}
}

func (repo invitationRepository) unrow(r invitationRow) invite.Invitation {
	return invite.Invitation{
		ID:        r.ID,
		Email:     r.Email,
		Token:     r.Token,
		Status:    r.Status,
		InvitedBy: r.InvitedBy.String,
		CreatedAt: r.CreatedAt.Time,
		ExpiresAt: r.ExpiresAt.Time,
	}
}

// UpsertInvitation keeps a single row per email: an insert for a known
// email instead rotates that row's token, status, inviter and expiry.
func (repo invitationRepository) UpsertInvitation(ctx context.Context, inv invite.Invitation) (invite.Invitation, error) {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	r := repo.row(inv)
	query, args, err := psql.Insert("invitation").
		Columns(invitationColumns...).
		Values(r.ID, r.Email, r.Token, r.Status, r.InvitedBy, r.CreatedAt, r.ExpiresAt).
		Suffix(`ON CONFLICT (email) DO UPDATE
			SET token = EXCLUDED.token,
				status = EXCLUDED.status,
				invited_by = EXCLUDED.invited_by,
				created_at = EXCLUDED.created_at,
				expires_at = EXCLUDED.expires_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return invite.Invitation{}, errors.Wrap(err, "building invitation upsert")
	}
	if err = repo.db.GetContext(ctx, &inv.ID, query, args...); err != nil {
		return invite.Invitation{}, errors.Wrap(err, "upserting invitation")
	}
	return inv, nil
}

func (repo invitationRepository) getOne(ctx context.Context, pred sq.Eq) (invite.Invitation, error) {
	query, args, err := psql.Select(invitationColumns...).From("invitation").Where(pred).ToSql()
	if err != nil {
		return invite.Invitation{}, errors.Wrap(err, "building invitation query")
	}
	var r invitationRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return invite.Invitation{}, trapNoRowsErr(err, invite.ErrNotFound, "finding invitation")
	}
	return repo.unrow(r), nil
}

func (repo invitationRepository) GetInvitationByToken(ctx context.Context, token string) (invite.Invitation, error) {
	return repo.getOne(ctx, sq.Eq{"token": token})
}

func (repo invitationRepository) GetInvitationByEmail(ctx context.Context, email string) (invite.Invitation, error) {
	return repo.getOne(ctx, sq.Eq{"email": email})
}

func (repo invitationRepository) QueryInvitations(ctx context.Context, ordering []core.DBOrdering) ([]invite.Invitation, error) {
	qb := psql.Select(invitationColumns...).From("invitation")
	if clause := orderByClause(ordering, invitationColumns); clause != "" {
		qb = qb.OrderBy(clause)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building invitations query")
	}
	var rows []invitationRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying invitations")
	}
	invs := make([]invite.Invitation, 0, len(rows))
	for _, r := range rows {
		invs = append(invs, repo.unrow(r))
	}
	return invs, nil
}

func (repo invitationRepository) UpdateInvitation(ctx context.Context, inv invite.Invitation) (invite.Invitation, error) {
	r := repo.row(inv)
	query, args, err := psql.Update("invitation").
		Set("token", r.Token).
		Set("status", r.Status).
		Set("invited_by", r.InvitedBy).
		Set("expires_at", r.ExpiresAt).
		Where(sq.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return invite.Invitation{}, errors.Wrap(err, "building invitation update")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return invite.Invitation{}, errors.Wrap(err, "updating invitation")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return invite.Invitation{}, invite.ErrNotFound
	}
	return inv, nil
}

func (repo invitationRepository) DeleteInvitationsByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("invitation").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building invitations delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting invitations")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
