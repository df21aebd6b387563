package attendance

import (
	"context"
	"time"

	"github.com/viserknight/mtss/core"
)

// Attendance statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Record is one child's attendance mark for one school day.
// (child_id, date) is unique; re-marking overwrites.
type Record struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"child_id"`
	Date      time.Time `json:"date"` // date only, UTC midnight
	Status    string    `json:"status"`
	MarkedBy  string    `json:"marked_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Mark is a single child's mark within a MarkRequest.
type Mark struct {
	ChildID string `json:"child_id" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=present absent late"`
}

// MarkRequest marks a class (or any set of children) for one date.
type MarkRequest struct {
	Date  time.Time `json:"date" validate:"required"`
	Marks []Mark    `json:"marks" validate:"required,min=1,dive"`
}

func (mr *MarkRequest) Validate(ctx context.Context) error {
	return core.Validate.StructCtx(ctx, mr)
}

// QueryFilter narrows attendance queries; fields AND together.
type QueryFilter struct {
	ChildID string    `query:"child_id"`
	ClassID string    `query:"class_id"`
	From    time.Time `query:"from"`
	To      time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ChildID == "" && qf.ClassID == "" && qf.From.IsZero() && qf.To.IsZero()
}

// DateOnly truncates t to its UTC date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
