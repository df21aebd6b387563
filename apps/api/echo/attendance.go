package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/attendance"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/child"
)

type attendanceApi struct {
	svc      *attendance.Service
	auditSvc *audit.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, auditSvc *audit.Service) {
	api := attendanceApi{svc: svc, auditSvc: auditSvc}

	ag := g.Group("/attendance", jwt, teacherMiddleware())
	ag.POST("", api.mark)
	ag.GET("", api.query)
	ag.GET("/export", api.export)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.MarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	recs, err := api.svc.MarkAll(reqCtx, data, claims.Subject)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "marks", Error: "unknown child"})
		}
		return errors.Wrap(err, "marking attendance")
	}
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionCreate, "attendance", "", data.Date.Format("2006-01-02"))

	return ctx.JSON(http.StatusCreated, recs)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}

	recs, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

// export streams the class register for a date range as an xlsx workbook.
func (api *attendanceApi) export(ctx echo.Context) error {
	classID := ctx.QueryParam("class_id")
	if classID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "this field is required"})
	}
	from, err := time.Parse("2006-01-02", ctx.QueryParam("from"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "from", Error: "expected YYYY-MM-DD"})
	}
	to, err := time.Parse("2006-01-02", ctx.QueryParam("to"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "expected YYYY-MM-DD"})
	}

	buff, filename, err := api.svc.Export(ctx.Request().Context(), classID, from, to)
	if err != nil {
		if errors.Cause(err) == child.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "exporting attendance")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buff.Bytes())
}
