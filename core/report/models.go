package report

import (
	"time"
)

// Bucket is the blob namespace for report-card files.
const Bucket = "report-cards"

// ReportCard is the metadata row for an uploaded report-card file; the
// bytes themselves live in the file store under Bucket/Path.
type ReportCard struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	Term        string    `json:"term"`
	Filename    string    `json:"filename"`
	Path        string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}
