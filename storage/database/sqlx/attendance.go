package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/attendance"
)

var attendanceColumns = []string{
	"id", "child_id", "date", "status", "marked_by", "created_at", "updated_at",
}

type attendanceRow struct {
	ID        string      `db:"id"`
	ChildID   string      `db:"child_id"`
	Date      null.Time   `db:"date"`
	Status    string      `db:"status"`
	MarkedBy  null.String `db:"marked_by"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) unrow(r attendanceRow) attendance.Record {
	return attendance.Record{
		ID:        r.ID,
		ChildID:   r.ChildID,
		Date:      r.Date.Time,
		Status:    r.Status,
		MarkedBy:  r.MarkedBy.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// UpsertRecord keeps one mark per (child, date): re-marking a day
// overwrites the stored status.
func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("attendance").
		Columns(attendanceColumns...).
		Values(rec.ID, rec.ChildID, rec.Date,
			rec.Status, null.NewString(rec.MarkedBy, rec.MarkedBy != ""),
			null.NewTime(rec.CreatedAt.UTC(), !rec.CreatedAt.IsZero()),
			null.NewTime(rec.UpdatedAt.UTC(), !rec.UpdatedAt.IsZero())).
		Suffix(`ON CONFLICT (child_id, date) DO UPDATE
			SET status = EXCLUDED.status,
				marked_by = EXCLUDED.marked_by,
				updated_at = EXCLUDED.updated_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "building attendance upsert")
	}
	if err = repo.db.GetContext(ctx, &rec.ID, query, args...); err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return rec, nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Record, error) {
	qb := psql.Select(attendanceColumns...).From("attendance")

	if filter != nil {
		if filter.ChildID != "" {
			qb = qb.Where(sq.Eq{"child_id": filter.ChildID})
		}
		if filter.ClassID != "" {
			qb = qb.Where(sq.Expr("child_id IN (SELECT id FROM child WHERE class_id = ?)", filter.ClassID))
		}
		if !filter.From.IsZero() {
			qb = qb.Where(sq.GtOrEq{"date": filter.From})
		}
		if !filter.To.IsZero() {
			qb = qb.Where(sq.LtOrEq{"date": filter.To})
		}
	}

	if clause := orderByClause(ordering, attendanceColumns); clause != "" {
		qb = qb.OrderBy(clause)
	} else {
		qb = qb.OrderBy("date ASC")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}
	var rows []attendanceRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, repo.unrow(r))
	}
	return recs, nil
}
