package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/child"
)

var (
	childColumns = []string{
		"id", "name", "date_of_birth", "favorite_animal", "grade",
		"class_id", "parent_id", "created_at", "updated_at",
	}
	classColumns = []string{"id", "name", "grade", "teacher_id", "created_at", "updated_at"}
)

type childRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	DateOfBirth    null.Time   `db:"date_of_birth"`
	FavoriteAnimal null.String `db:"favorite_animal"`
	Grade          null.String `db:"grade"`
	ClassID        null.String `db:"class_id"`
	ParentID       null.String `db:"parent_id"`
	CreatedAt      null.Time   `db:"created_at"`
	UpdatedAt      null.Time   `db:"updated_at"`
}

type classRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Grade     string      `db:"grade"`
	TeacherID null.String `db:"teacher_id"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{db: db}
}

func (repo childRepository) row(chd child.Child) childRow {
	return childRow{
		ID:             chd.ID,
		Name:           chd.Name,
		DateOfBirth:    chd.DateOfBirth,
		FavoriteAnimal: null.NewString(chd.FavoriteAnimal, chd.FavoriteAnimal != ""),
		Grade:          chd.Grade,
		ClassID:        chd.ClassID,
		ParentID:       chd.ParentID,
		CreatedAt:      null.NewTime(chd.CreatedAt.UTC(), !chd.CreatedAt.IsZero()),
		UpdatedAt:      null.NewTime(chd.UpdatedAt.UTC(), !chd.UpdatedAt.IsZero()),
	}
}

func (repo childRepository) unrow(r childRow) child.Child {
	return child.Child{
		ID:             r.ID,
		Name:           r.Name,
		DateOfBirth:    r.DateOfBirth,
		FavoriteAnimal: r.FavoriteAnimal.String,
		Grade:          r.Grade,
		ClassID:        r.ClassID,
		ParentID:       r.ParentID,
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

func (repo childRepository) CreateChild(ctx context.Context, chd child.Child) (child.Child, error) {
	chd.ID = uuid.New().String()
	r := repo.row(chd)
	query, args, err := psql.Insert("child").
		Columns(childColumns...).
		Values(r.ID, r.Name, r.DateOfBirth, r.FavoriteAnimal, r.Grade,
			r.ClassID, r.ParentID, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return child.Child{}, errors.Wrap(err, "building child insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return chd, nil
}

func (repo childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering) ([]child.Child, error) {
	qb := psql.Select(childColumns...).From("child")

	if filter != nil {
		if filter.Search != "" {
			qb = qb.Where(sq.ILike{"name": "%" + filter.Search + "%"})
		}
		if filter.ClassID != "" {
			qb = qb.Where(sq.Eq{"class_id": filter.ClassID})
		}
		if filter.ParentID != "" {
			qb = qb.Where(sq.Eq{"parent_id": filter.ParentID})
		}
		if filter.Grade != "" {
			qb = qb.Where(sq.Eq{"grade": filter.Grade})
		}
	}

	if clause := orderByClause(ordering, childColumns); clause != "" {
		qb = qb.OrderBy(clause)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building children query")
	}
	var rows []childRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	children := make([]child.Child, 0, len(rows))
	for _, r := range rows {
		children = append(children, repo.unrow(r))
	}
	return children, nil
}

func (repo childRepository) GetChildByID(ctx context.Context, id string) (child.Child, error) {
	if _, err := uuid.Parse(id); err != nil {
		return child.Child{}, child.ErrNotFound
	}
	query, args, err := psql.Select(childColumns...).From("child").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return child.Child{}, errors.Wrap(err, "building child query")
	}
	var r childRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return child.Child{}, trapNoRowsErr(err, child.ErrNotFound, "finding child")
	}
	return repo.unrow(r), nil
}

func (repo childRepository) ChildExists(ctx context.Context, name string, dob null.Time, parentID null.String) (bool, error) {
	qb := psql.Select("COUNT(*)").From("child").Where(sq.Expr("LOWER(name) = LOWER(?)", name))
	if dob.Valid {
		qb = qb.Where(sq.Eq{"date_of_birth": dob.Time})
	} else {
		qb = qb.Where("date_of_birth IS NULL")
	}
	if parentID.Valid {
		qb = qb.Where(sq.Eq{"parent_id": parentID.String})
	} else {
		qb = qb.Where("parent_id IS NULL")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building child existence query")
	}
	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, query, args...); err != nil {
		return false, errors.Wrap(err, "checking child existence")
	}
	return cnt > 0, nil
}

func (repo childRepository) UpdateChild(ctx context.Context, chd child.Child) (child.Child, error) {
	r := repo.row(chd)
	query, args, err := psql.Update("child").
		Set("name", r.Name).
		Set("date_of_birth", r.DateOfBirth).
		Set("favorite_animal", r.FavoriteAnimal).
		Set("grade", r.Grade).
		Set("class_id", r.ClassID).
		Set("parent_id", r.ParentID).
		Set("updated_at", r.UpdatedAt).
		Where(sq.Eq{"id": chd.ID}).
		ToSql()
	if err != nil {
		return child.Child{}, errors.Wrap(err, "building child update")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return chd, nil
}

func (repo childRepository) DeleteChildrenByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("child").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building children delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo childRepository) clsRow(cls child.Class) classRow {
	return classRow{
		ID:        cls.ID,
		Name:      cls.Name,
		Grade:     cls.Grade,
		TeacherID: cls.TeacherID,
		CreatedAt: null.NewTime(cls.CreatedAt.UTC(), !cls.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(cls.UpdatedAt.UTC(), !cls.UpdatedAt.IsZero()),
	}
}

func (repo childRepository) unclsRow(r classRow) child.Class {
	return child.Class{
		ID:        r.ID,
		Name:      r.Name,
		Grade:     r.Grade,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo childRepository) CreateClass(ctx context.Context, cls child.Class) (child.Class, error) {
	cls.ID = uuid.New().String()
	r := repo.clsRow(cls)
	query, args, err := psql.Insert("class").
		Columns(classColumns...).
		Values(r.ID, r.Name, r.Grade, r.TeacherID, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return child.Class{}, errors.Wrap(err, "building class insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return child.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo childRepository) QueryClasses(ctx context.Context, ordering []core.DBOrdering) ([]child.Class, error) {
	qb := psql.Select(classColumns...).From("class")
	if clause := orderByClause(ordering, classColumns); clause != "" {
		qb = qb.OrderBy(clause)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building classes query")
	}
	var rows []classRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]child.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, repo.unclsRow(r))
	}
	return classes, nil
}

func (repo childRepository) GetClassByID(ctx context.Context, id string) (child.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return child.Class{}, child.ErrClassNotFound
	}
	query, args, err := psql.Select(classColumns...).From("class").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return child.Class{}, errors.Wrap(err, "building class query")
	}
	var r classRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return child.Class{}, trapNoRowsErr(err, child.ErrClassNotFound, "finding class")
	}
	return repo.unclsRow(r), nil
}

func (repo childRepository) UpdateClass(ctx context.Context, cls child.Class) (child.Class, error) {
	r := repo.clsRow(cls)
	query, args, err := psql.Update("class").
		Set("name", r.Name).
		Set("grade", r.Grade).
		Set("teacher_id", r.TeacherID).
		Set("updated_at", r.UpdatedAt).
		Where(sq.Eq{"id": cls.ID}).
		ToSql()
	if err != nil {
		return child.Class{}, errors.Wrap(err, "building class update")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return child.Class{}, errors.Wrap(err, "updating class")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return child.Class{}, child.ErrClassNotFound
	}
	return cls, nil
}

func (repo childRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := psql.Delete("class").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building classes delete")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
