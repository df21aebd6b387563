package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/child"
)

var ErrNotFound = errors.New("report card not found")

type (
	Repository interface {
		CreateReportCard(ctx context.Context, rc ReportCard) (ReportCard, error)
		QueryReportCardsByChild(ctx context.Context, childID string) ([]ReportCard, error)
		GetReportCardByID(ctx context.Context, id string) (ReportCard, error)
		DeleteReportCardsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo   Repository
		files  core.FileStore
		chdSvc *child.Service
	}
)

func NewService(repo Repository, files core.FileStore, chdSvc *child.Service) *Service {
	return &Service{repo: repo, files: files, chdSvc: chdSvc}
}

// Upload stores the file bytes first, then the metadata row; an orphaned
// blob from a failed metadata insert is removed best-effort.
func (svc *Service) Upload(ctx context.Context, childID, term, filename, contentType string, r io.Reader, uploadedBy string) (ReportCard, error) {
	chd, err := svc.chdSvc.GetByID(ctx, childID)
	if err != nil {
		return ReportCard{}, err
	}

	term = core.CleanString(term)
	if term == "" {
		return ReportCard{}, core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}

	path := fmt.Sprintf("%s/%s-%s", chd.ID, uuid.New().String(), filename)
	size, err := svc.files.Save(Bucket, path, r)
	if err != nil {
		return ReportCard{}, err
	}

	rc := ReportCard{
		ChildID:     chd.ID,
		Term:        term,
		Filename:    filename,
		Path:        path,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	rc, err = svc.repo.CreateReportCard(ctx, rc)
	if err != nil {
		_ = svc.files.Remove(Bucket, path)
		return ReportCard{}, err
	}
	return rc, nil
}

func (svc *Service) QueryByChild(ctx context.Context, childID string) ([]ReportCard, error) {
	return svc.repo.QueryReportCardsByChild(ctx, childID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (ReportCard, error) {
	return svc.repo.GetReportCardByID(ctx, id)
}

// Open returns the stored file content for streaming to the caller.
func (svc *Service) Open(ctx context.Context, id string) (ReportCard, io.ReadCloser, error) {
	rc, err := svc.repo.GetReportCardByID(ctx, id)
	if err != nil {
		return ReportCard{}, nil, err
	}
	f, err := svc.files.Open(Bucket, rc.Path)
	if err != nil {
		return ReportCard{}, nil, err
	}
	return rc, f, nil
}

// Delete removes the metadata rows and their blobs.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		rc, err := svc.repo.GetReportCardByID(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return err
		}
		paths = append(paths, rc.Path)
	}
	if _, err := svc.repo.DeleteReportCardsByID(ctx, ids...); err != nil {
		return err
	}
	if len(paths) > 0 {
		return svc.files.Remove(Bucket, paths...)
	}
	return nil
}
