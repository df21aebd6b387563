package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/announcement"
)

var announcementColumns = []string{
	"id", "title", "body", "audience", "created_by", "created_at", "updated_at",
}

type announcementRow struct {
	ID        string      `db:"id"`
	Title     string      `db:"title"`
	Body      string      `db:"body"`
	Audience  string      `db:"audience"`
	CreatedBy null.String `db:"created_by"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo announcementRepository) row(ann announcement.Announcement) announcementRow {
	return announcementRow{
		ID:        ann.ID,
		Title:     ann.Title,
		Body:      ann.Body,
		Audience:  ann.Audience,
		CreatedBy: null.NewString(ann.CreatedBy, ann.CreatedBy != ""),
		CreatedAt: null.NewTime(ann.CreatedAt.UTC(), !ann.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(ann.UpdatedAt.UTC(), !ann.UpdatedAt.IsZero()),
	}
}

func (repo announcementRepository) unrow(r announcementRow) announcement.Announcement {
	return announcement.Announcement{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		Audience:  r.Audience,
		CreatedBy: r.CreatedBy.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	ann.ID = uuid.New().String()
	r := repo.row(ann)
	query, args, err := psql.Insert("announcement").
		Columns(announcementColumns...).
		Values(r.ID, r.Title, r.Body, r.Audience, r.CreatedBy, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "building announcement insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo announcementRepository) QueryAnnouncements(ctx context.Context, audiences []string, ordering []core.DBOrdering) ([]announcement.Announcement, error) {
	qb := psql.Select(announcementColumns...).From("announcement")
	if len(audiences) > 0 {
		qb = qb.Where(sq.Eq{"audience": audiences})
	}
	if clause := orderByClause(ordering, announcementColumns); clause != "" {
		qb = qb.OrderBy(clause)
	} else {
		qb = qb.OrderBy("created_at DESC")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building announcements query")
	}
	var rows []announcementRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, r := range rows {
		anns = append(anns, repo.unrow(r))
	}
	return anns, nil
}

func (repo announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	query, args, err := psql.Select(announcementColumns...).From("announcement").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "building announcement query")
	}
	var r announcementRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return announcement.Announcement{}, trapNoRowsErr(err, announcement.ErrNotFound, "finding announcement")
	}
	return repo.unrow(r), nil
}

func (repo announcementRepository) UpdateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	r := repo.row(ann)
	query, args, err := psql.Update("announcement").
		Set("title", r.Title).
		Set("body", r.Body).
		Set("audience", r.Audience).
		Set("updated_at", r.UpdatedAt).
		Where(sq.Eq{"id": ann.ID}).
		ToSql()
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "building announcement update")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return ann, nil
}

func (repo announcementRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("announcement").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building announcements delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting announcements")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
