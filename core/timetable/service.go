package timetable

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/viserknight/mtss/core/child"
)

var ErrNotFound = errors.New("timetable entry not found")

var weekdayNames = [...]string{1: "Monday", 2: "Tuesday", 3: "Wednesday", 4: "Thursday", 5: "Friday"}

type (
	Repository interface {
		// UpsertEntry inserts the entry or overwrites the existing
		// (class_id, weekday, period) slot.
		UpsertEntry(ctx context.Context, ent Entry) (Entry, error)
		QueryEntriesByClass(ctx context.Context, classID string) ([]Entry, error)
		GetEntryByID(ctx context.Context, id string) (Entry, error)
		DeleteEntriesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo   Repository
		chdSvc *child.Service
	}
)

func NewService(repo Repository, chdSvc *child.Service) *Service {
	return &Service{repo: repo, chdSvc: chdSvc}
}

func (svc *Service) Set(ctx context.Context, ne NewEntry) (Entry, error) {
	if _, err := svc.chdSvc.GetClassByID(ctx, ne.ClassID); err != nil {
		return Entry{}, err
	}
	now := time.Now().UTC()
	ent := Entry{
		ClassID:   ne.ClassID,
		Weekday:   ne.Weekday,
		Period:    ne.Period,
		Subject:   ne.Subject,
		TeacherID: null.NewString(ne.TeacherID, ne.TeacherID != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.UpsertEntry(ctx, ent)
}

// WeekFor assembles a class's weekly view, days keyed 1-5.
func (svc *Service) WeekFor(ctx context.Context, classID string) (Week, error) {
	if _, err := svc.chdSvc.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}
	entries, err := svc.repo.QueryEntriesByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	week := make(Week, 5)
	for _, ent := range entries {
		week[ent.Weekday] = append(week[ent.Weekday], ent)
	}
	return week, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteEntriesByID(ctx, ids...)
	return err
}

// Export renders a class's weekly timetable as an .xlsx grid:
// periods as rows, weekdays as columns.
func (svc *Service) Export(ctx context.Context, classID string) (*bytes.Buffer, string, error) {
	cls, err := svc.chdSvc.GetClassByID(ctx, classID)
	if err != nil {
		return nil, "", err
	}
	entries, err := svc.repo.QueryEntriesByClass(ctx, classID)
	if err != nil {
		return nil, "", err
	}

	maxPeriod := 0
	grid := make(map[int]map[int]string) // period -> weekday -> subject
	for _, ent := range entries {
		if grid[ent.Period] == nil {
			grid[ent.Period] = make(map[int]string)
		}
		grid[ent.Period][ent.Weekday] = ent.Subject
		if ent.Period > maxPeriod {
			maxPeriod = ent.Period
		}
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "Period")
	for day := 1; day <= 5; day++ {
		cell, _ := excelize.CoordinatesToCellName(day+1, 1)
		_ = f.SetCellValue(sheet, cell, weekdayNames[day])
	}
	for period := 1; period <= maxPeriod; period++ {
		cell, _ := excelize.CoordinatesToCellName(1, period+1)
		_ = f.SetCellValue(sheet, cell, period)
		for day := 1; day <= 5; day++ {
			if subject, ok := grid[period][day]; ok {
				cell, _ = excelize.CoordinatesToCellName(day+1, period+1)
				_ = f.SetCellValue(sheet, cell, subject)
			}
		}
	}

	var buff bytes.Buffer
	if err = f.Write(&buff); err != nil {
		return nil, "", errors.Wrap(err, "writing timetable workbook")
	}
	return &buff, fmt.Sprintf("timetable-%s.xlsx", cls.Name), nil
}
