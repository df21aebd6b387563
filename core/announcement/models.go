package announcement

import (
	"context"
	"time"

	"github.com/viserknight/mtss/core"
)

// Audiences an announcement can target.
const (
	AudienceAll      = "all"
	AudienceTeachers = "teachers"
	AudienceParents  = "parents"
)

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Audience  string    `json:"audience"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewAnnouncement struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"omitempty,oneof=all teachers parents"`
}

func (na *NewAnnouncement) Validate(ctx context.Context) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	na.Audience = core.CleanString(na.Audience, true /* lower */)
	if na.Audience == "" {
		na.Audience = AudienceAll
	}
	return core.Validate.StructCtx(ctx, na)
}

type UpdateAnnouncement struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience" validate:"omitempty,oneof=all teachers parents"`
}

func (ua *UpdateAnnouncement) Validate(ctx context.Context) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Body = core.CleanString(ua.Body)
	ua.Audience = core.CleanString(ua.Audience, true /* lower */)
	return core.Validate.StructCtx(ctx, ua)
}
