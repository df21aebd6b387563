package timetable

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
)

// Entry is one period slot on a class's weekly timetable.
// (class_id, weekday, period) is unique.
type Entry struct {
	ID        string      `json:"id"`
	ClassID   string      `json:"class_id"`
	Weekday   int         `json:"weekday"` // 1 (Monday) - 5 (Friday)
	Period    int         `json:"period"`  // 1-based slot within the day
	Subject   string      `json:"subject"`
	TeacherID null.String `json:"teacher_id"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

type NewEntry struct {
	ClassID   string `json:"class_id" validate:"required"`
	Weekday   int    `json:"weekday" validate:"required,min=1,max=5"`
	Period    int    `json:"period" validate:"required,min=1,max=12"`
	Subject   string `json:"subject" validate:"required"`
	TeacherID string `json:"teacher_id"`
}

func (ne *NewEntry) Validate(ctx context.Context) error {
	ne.Subject = core.CleanString(ne.Subject)
	return core.Validate.StructCtx(ctx, ne)
}

// Week is a class's timetable keyed by weekday, each day ordered by period.
type Week map[int][]Entry
