package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core/timetable"
)

var timetableColumns = []string{
	"id", "class_id", "weekday", "period", "subject", "teacher_id", "created_at", "updated_at",
}

type timetableRow struct {
	ID        string      `db:"id"`
	ClassID   string      `db:"class_id"`
	Weekday   int         `db:"weekday"`
	Period    int         `db:"period"`
	Subject   string      `db:"subject"`
	TeacherID null.String `db:"teacher_id"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sqlx.DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo timetableRepository) unrow(r timetableRow) timetable.Entry {
	return timetable.Entry{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Weekday:   r.Weekday,
		Period:    r.Period,
		Subject:   r.Subject,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// UpsertEntry keeps one subject per (class, weekday, period) slot.
func (repo timetableRepository) UpsertEntry(ctx context.Context, ent timetable.Entry) (timetable.Entry, error) {
	if ent.ID == "" {
		ent.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("timetable_entry").
		Columns(timetableColumns...).
		Values(ent.ID, ent.ClassID, ent.Weekday, ent.Period, ent.Subject, ent.TeacherID,
			null.NewTime(ent.CreatedAt.UTC(), !ent.CreatedAt.IsZero()),
			null.NewTime(ent.UpdatedAt.UTC(), !ent.UpdatedAt.IsZero())).
		Suffix(`ON CONFLICT (class_id, weekday, period) DO UPDATE
			SET subject = EXCLUDED.subject,
				teacher_id = EXCLUDED.teacher_id,
				updated_at = EXCLUDED.updated_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "building timetable upsert")
	}
	if err = repo.db.GetContext(ctx, &ent.ID, query, args...); err != nil {
		return timetable.Entry{}, errors.Wrap(err, "upserting timetable entry")
	}
	return ent, nil
}

func (repo timetableRepository) QueryEntriesByClass(ctx context.Context, classID string) ([]timetable.Entry, error) {
	query, args, err := psql.Select(timetableColumns...).
		From("timetable_entry").
		Where(sq.Eq{"class_id": classID}).
		OrderBy("weekday ASC", "period ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building timetable query")
	}
	var rows []timetableRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying timetable entries")
	}
	entries := make([]timetable.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, repo.unrow(r))
	}
	return entries, nil
}

func (repo timetableRepository) GetEntryByID(ctx context.Context, id string) (timetable.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return timetable.Entry{}, timetable.ErrNotFound
	}
	query, args, err := psql.Select(timetableColumns...).From("timetable_entry").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "building timetable entry query")
	}
	var r timetableRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return timetable.Entry{}, trapNoRowsErr(err, timetable.ErrNotFound, "finding timetable entry")
	}
	return repo.unrow(r), nil
}

func (repo timetableRepository) DeleteEntriesByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("timetable_entry").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building timetable delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting timetable entries")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
