package child

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
)

// Child is a learner record. ParentID is nullable: a child extracted from a
// document whose parent has no account yet stays explicitly unlinked rather
// than pointing at a sentinel row.
type Child struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	DateOfBirth    null.Time   `json:"date_of_birth"`
	FavoriteAnimal string      `json:"favorite_animal"`
	Grade          null.String `json:"grade"`
	ClassID        null.String `json:"class_id"`
	ParentID       null.String `json:"parent_id"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

func (c *Child) Linked() bool { return c.ParentID.Valid }

// Class groups children under a home teacher.
type Class struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Grade     string      `json:"grade"`
	TeacherID null.String `json:"teacher_id"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// NewChild contains information needed to register a Child.
type NewChild struct {
	Name           string    `json:"name" validate:"required"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	FavoriteAnimal string    `json:"favorite_animal"`
	Grade          string    `json:"grade"`
	ParentID       string    `json:"parent_id"`
}

func (nc *NewChild) Validate(ctx context.Context) error {
	nc.Name = core.CleanString(nc.Name)
	nc.FavoriteAnimal = core.CleanString(nc.FavoriteAnimal)
	nc.Grade = core.CleanString(nc.Grade)
	return core.Validate.StructCtx(ctx, nc)
}

// UpdateChild defines what information may be provided to modify an existing Child.
type UpdateChild struct {
	Name           string      `json:"name"`
	DateOfBirth    null.Time   `json:"date_of_birth"`
	FavoriteAnimal string      `json:"favorite_animal"`
	Grade          null.String `json:"grade"`
	ClassID        null.String `json:"class_id"`
	ParentID       null.String `json:"parent_id"`
}

// NewClass contains information needed to create a Class.
type NewClass struct {
	Name      string `json:"name" validate:"required"`
	Grade     string `json:"grade" validate:"required"`
	TeacherID string `json:"teacher_id"`
}

func (nc *NewClass) Validate(ctx context.Context) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	return core.Validate.StructCtx(ctx, nc)
}

// QueryFilter narrows roster queries; fields AND together.
type QueryFilter struct {
	Search   string `query:"search"`
	ClassID  string `query:"class_id"`
	ParentID string `query:"parent_id"`
	Grade    string `query:"grade"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassID == "" && qf.ParentID == "" && qf.Grade == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
