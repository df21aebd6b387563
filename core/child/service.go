package child

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
)

var (
	// errors
	ErrNotFound      = errors.New("child not found")
	ErrClassNotFound = errors.New("class not found")
)

type (
	Repository interface {
		CreateChild(ctx context.Context, chd Child) (Child, error)
		// QueryChildren applies AND on available QueryFilter fields;
		// QueryFilter.Search matches Name case-insensitively.
		QueryChildren(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error)
		GetChildByID(ctx context.Context, id string) (Child, error)
		// ChildExists reports whether a child with the same name, date of
		// birth and parent is already on file.
		ChildExists(ctx context.Context, name string, dob null.Time, parentID null.String) (bool, error)
		UpdateChild(ctx context.Context, chd Child) (Child, error)
		DeleteChildrenByID(ctx context.Context, ids ...string) (int, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryClasses(ctx context.Context, ordering []core.DBOrdering) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewChild) (Child, error) {
	now := time.Now().UTC()
	chd := Child{
		Name:           nc.Name,
		DateOfBirth:    null.NewTime(nc.DateOfBirth.UTC(), !nc.DateOfBirth.IsZero()),
		FavoriteAnimal: nc.FavoriteAnimal,
		Grade:          null.NewString(nc.Grade, nc.Grade != ""),
		ParentID:       null.NewString(nc.ParentID, nc.ParentID != ""),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateChild(ctx, chd)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error) {
	return svc.repo.QueryChildren(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Child, error) {
	return svc.repo.GetChildByID(ctx, id)
}

// Exists is the duplicate guard used by the extraction pipeline before
// materializing a candidate.
func (svc *Service) Exists(ctx context.Context, name string, dob null.Time, parentID null.String) (bool, error) {
	return svc.repo.ChildExists(ctx, core.CleanString(name), dob, parentID)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateChild) (Child, error) {
	chd, err := svc.repo.GetChildByID(ctx, id)
	if err != nil {
		return Child{}, err
	}
	if name := core.CleanString(uc.Name); name != "" {
		chd.Name = name
	}
	if uc.DateOfBirth.Valid {
		chd.DateOfBirth = uc.DateOfBirth
	}
	if animal := core.CleanString(uc.FavoriteAnimal); animal != "" {
		chd.FavoriteAnimal = animal
	}
	if uc.Grade.Valid {
		chd.Grade = uc.Grade
	}
	if uc.ClassID.Valid {
		chd.ClassID = uc.ClassID
	}
	if uc.ParentID.Valid {
		chd.ParentID = uc.ParentID
	}
	chd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, chd)
}

// AssignClass moves a child into a class after checking the class exists.
func (svc *Service) AssignClass(ctx context.Context, childID, classID string) (Child, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return Child{}, err
	}
	chd, err := svc.repo.GetChildByID(ctx, childID)
	if err != nil {
		return Child{}, err
	}
	chd.ClassID = null.StringFrom(classID)
	chd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, chd)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteChildrenByID(ctx, ids...)
	return err
}

// Roster lists the children of a class.
func (svc *Service) Roster(ctx context.Context, classID string) ([]Child, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryChildren(ctx, &QueryFilter{ClassID: classID}, []core.DBOrdering{{Field: "name", Ascending: true}})
}

// ByParent lists the children linked to a parent account.
func (svc *Service) ByParent(ctx context.Context, parentID string) ([]Child, error) {
	return svc.repo.QueryChildren(ctx, &QueryFilter{ParentID: parentID}, []core.DBOrdering{{Field: "name", Ascending: true}})
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:      nc.Name,
		Grade:     nc.Grade,
		TeacherID: null.NewString(nc.TeacherID, nc.TeacherID != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) QueryClasses(ctx context.Context, ordering []core.DBOrdering) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, ordering)
}

func (svc *Service) GetClassByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) DeleteClasses(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteClassesByID(ctx, ids...)
	return err
}
