package announcement

import (
	"context"
	"errors"
	"time"

	"github.com/viserknight/mtss/core"
)

var ErrNotFound = errors.New("announcement not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		// QueryAnnouncements returns announcements whose audience is in
		// `audiences` (all of them when empty), newest first by default.
		QueryAnnouncements(ctx context.Context, audiences []string, ordering []core.DBOrdering) ([]Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAnnouncement, createdBy string) (Announcement, error) {
	now := time.Now().UTC()
	ann := Announcement{
		Title:     na.Title,
		Body:      na.Body,
		Audience:  na.Audience,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

// QueryFor lists the announcements visible to a caller with the given
// audience memberships; `all` announcements are always included.
func (svc *Service) QueryFor(ctx context.Context, audiences ...string) ([]Announcement, error) {
	auds := append([]string{AudienceAll}, audiences...)
	return svc.repo.QueryAnnouncements(ctx, auds, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}

// QueryAll lists every announcement regardless of audience (admin view).
func (svc *Service) QueryAll(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, nil, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if ua.Title != "" {
		ann.Title = ua.Title
	}
	if ua.Body != "" {
		ann.Body = ua.Body
	}
	if ua.Audience != "" {
		ann.Audience = ua.Audience
	}
	ann.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, ann)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteAnnouncementsByID(ctx, ids...)
	return err
}
