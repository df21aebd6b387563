package attendance

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Export renders a class's attendance over a date range as an .xlsx sheet:
// one row per child, one column per school day, cells carry the mark.
// Returns the file content and a suggested filename.
func (svc *Service) Export(ctx context.Context, classID string, from, to time.Time) (*bytes.Buffer, string, error) {
	cls, err := svc.chdSvc.GetClassByID(ctx, classID)
	if err != nil {
		return nil, "", err
	}
	roster, err := svc.chdSvc.Roster(ctx, classID)
	if err != nil {
		return nil, "", err
	}

	from, to = DateOnly(from), DateOnly(to)
	records, err := svc.Query(ctx, &QueryFilter{ClassID: classID, From: from, To: to})
	if err != nil {
		return nil, "", err
	}

	// index marks by child+date
	marks := make(map[string]string, len(records))
	dateSet := make(map[time.Time]struct{})
	for _, rec := range records {
		marks[rec.ChildID+"|"+rec.Date.Format("2006-01-02")] = rec.Status
		dateSet[rec.Date] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "Learner")
	for col, d := range dates {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		_ = f.SetCellValue(sheet, cell, d.Format("Mon 02 Jan"))
	}
	for row, chd := range roster {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		_ = f.SetCellValue(sheet, cell, chd.Name)
		for col, d := range dates {
			cell, _ = excelize.CoordinatesToCellName(col+2, row+2)
			if status, ok := marks[chd.ID+"|"+d.Format("2006-01-02")]; ok {
				_ = f.SetCellValue(sheet, cell, status)
			}
		}
	}

	var buff bytes.Buffer
	if err = f.Write(&buff); err != nil {
		return nil, "", errors.Wrap(err, "writing attendance workbook")
	}
	fname := fmt.Sprintf("attendance-%s-%s-%s.xlsx", cls.Name, from.Format("20060102"), to.Format("20060102"))
	return &buff, fname, nil
}
