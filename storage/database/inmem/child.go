package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/child"
)

type childRepository struct {
	children *childTable
	classes  *classTable
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *DB) *childRepository {
	return &childRepository{children: db.child, classes: db.class}
}

func (repo *childRepository) queryChildren() []child.Child {
	children := make([]child.Child, 0, len(repo.children.table))
	for _, chd := range repo.children.table {
		children = append(children, *chd)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].CreatedAt.Before(children[j].CreatedAt) })
	return children
}

func (repo *childRepository) CreateChild(ctx context.Context, chd child.Child) (child.Child, error) {
	repo.children.mutex.Lock()
	defer repo.children.mutex.Unlock()

	chd.ID = uuid.New().String()
	repo.children.table[chd.ID] = &chd
	return chd, nil
}

func (repo *childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering) ([]child.Child, error) {
	repo.children.mutex.RLock()
	defer repo.children.mutex.RUnlock()

	children := make([]child.Child, 0)
	for _, chd := range repo.queryChildren() {
		if filter != nil {
			if filter.Search != "" && !strings.Contains(strings.ToLower(chd.Name), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.ClassID != "" && chd.ClassID.String != filter.ClassID {
				continue
			}
			if filter.ParentID != "" && chd.ParentID.String != filter.ParentID {
				continue
			}
			if filter.Grade != "" && chd.Grade.String != filter.Grade {
				continue
			}
		}
		children = append(children, chd)
	}
	return children, nil
}

func (repo *childRepository) GetChildByID(ctx context.Context, id string) (child.Child, error) {
	repo.children.mutex.RLock()
	defer repo.children.mutex.RUnlock()

	if chd, ok := repo.children.table[id]; ok {
		return *chd, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) ChildExists(ctx context.Context, name string, dob null.Time, parentID null.String) (bool, error) {
	repo.children.mutex.RLock()
	defer repo.children.mutex.RUnlock()

	for _, chd := range repo.children.table {
		if !strings.EqualFold(chd.Name, name) {
			continue
		}
		if chd.DateOfBirth.Valid != dob.Valid {
			continue
		}
		if dob.Valid && !chd.DateOfBirth.Time.Equal(dob.Time) {
			continue
		}
		if chd.ParentID.Valid != parentID.Valid {
			continue
		}
		if parentID.Valid && chd.ParentID.String != parentID.String {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (repo *childRepository) UpdateChild(ctx context.Context, chd child.Child) (child.Child, error) {
	repo.children.mutex.Lock()
	defer repo.children.mutex.Unlock()

	if _, ok := repo.children.table[chd.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	repo.children.table[chd.ID] = &chd
	return chd, nil
}

func (repo *childRepository) DeleteChildrenByID(ctx context.Context, ids ...string) (int, error) {
	repo.children.mutex.Lock()
	defer repo.children.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.children.table[id]; ok {
			delete(repo.children.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *childRepository) CreateClass(ctx context.Context, cls child.Class) (child.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	cls.ID = uuid.New().String()
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *childRepository) QueryClasses(ctx context.Context, ordering []core.DBOrdering) ([]child.Class, error) {
	repo.classes.mutex.RLock()
	defer repo.classes.mutex.RUnlock()

	classes := make([]child.Class, 0, len(repo.classes.table))
	for _, cls := range repo.classes.table {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *childRepository) GetClassByID(ctx context.Context, id string) (child.Class, error) {
	repo.classes.mutex.RLock()
	defer repo.classes.mutex.RUnlock()

	if cls, ok := repo.classes.table[id]; ok {
		return *cls, nil
	}
	return child.Class{}, child.ErrClassNotFound
}

func (repo *childRepository) UpdateClass(ctx context.Context, cls child.Class) (child.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	if _, ok := repo.classes.table[cls.ID]; !ok {
		return child.Class{}, child.ErrClassNotFound
	}
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *childRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.classes.table[id]; ok {
			delete(repo.classes.table, id)
			cnt++
		}
	}
	return cnt, nil
}
