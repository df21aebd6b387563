package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core/report"
)

var reportCardColumns = []string{
	"id", "child_id", "term", "filename", "path", "content_type", "size", "uploaded_by", "created_at",
}

type reportCardRow struct {
	ID          string      `db:"id"`
	ChildID     string      `db:"child_id"`
	Term        string      `db:"term"`
	Filename    string      `db:"filename"`
	Path        string      `db:"path"`
	ContentType null.String `db:"content_type"`
	Size        int64       `db:"size"`
	UploadedBy  null.String `db:"uploaded_by"`
	CreatedAt   null.Time   `db:"created_at"`
}

type reportCardRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportCardRepository)(nil) // interface compliance check

func NewReportCardRepository(db *sqlx.DB) *reportCardRepository {
	return &reportCardRepository{db: db}
}

func (repo reportCardRepository) unrow(r reportCardRow) report.ReportCard {
	return report.ReportCard{
		ID:          r.ID,
		ChildID:     r.ChildID,
		Term:        r.Term,
		Filename:    r.Filename,
		Path:        r.Path,
		ContentType: r.ContentType.String,
		Size:        r.Size,
		UploadedBy:  r.UploadedBy.String,
		CreatedAt:   r.CreatedAt.Time,
	}
}

func (repo reportCardRepository) CreateReportCard(ctx context.Context, rc report.ReportCard) (report.ReportCard, error) {
	rc.ID = uuid.New().String()
	query, args, err := psql.Insert("report_card").
		Columns(reportCardColumns...).
		Values(rc.ID, rc.ChildID, rc.Term, rc.Filename, rc.Path,
			null.NewString(rc.ContentType, rc.ContentType != ""), rc.Size,
			null.NewString(rc.UploadedBy, rc.UploadedBy != ""),
			null.NewTime(rc.CreatedAt.UTC(), !rc.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return report.ReportCard{}, errors.Wrap(err, "building report card insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return report.ReportCard{}, errors.Wrap(err, "inserting report card")
	}
	return rc, nil
}

func (repo reportCardRepository) QueryReportCardsByChild(ctx context.Context, childID string) ([]report.ReportCard, error) {
	query, args, err := psql.Select(reportCardColumns...).
		From("report_card").
		Where(sq.Eq{"child_id": childID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building report cards query")
	}
	var rows []reportCardRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying report cards")
	}
	cards := make([]report.ReportCard, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, repo.unrow(r))
	}
	return cards, nil
}

func (repo reportCardRepository) GetReportCardByID(ctx context.Context, id string) (report.ReportCard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return report.ReportCard{}, report.ErrNotFound
	}
	query, args, err := psql.Select(reportCardColumns...).From("report_card").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return report.ReportCard{}, errors.Wrap(err, "building report card query")
	}
	var r reportCardRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return report.ReportCard{}, trapNoRowsErr(err, report.ErrNotFound, "finding report card")
	}
	return repo.unrow(r), nil
}

func (repo reportCardRepository) DeleteReportCardsByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("report_card").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building report cards delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting report cards")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
