package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/timetable"
)

type timetableApi struct {
	svc *timetable.Service
}

func registerTimetableAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *timetable.Service) {
	api := timetableApi{svc: svc}

	tg := g.Group("/timetable", jwt)
	tg.GET("/:classID", api.week)
	tg.GET("/:classID/export", api.export)

	mg := tg.Group("", teacherMiddleware())
	mg.POST("", api.set)
	mg.DELETE("", api.destroyMultiple)
}

func (api *timetableApi) set(ctx echo.Context) error {
	var data timetable.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	ent, err := api.svc.Set(reqCtx, data)
	if err != nil {
		if errors.Cause(err) == child.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting timetable entry")
	}
	return ctx.JSON(http.StatusCreated, ent)
}

func (api *timetableApi) week(ctx echo.Context) error {
	week, err := api.svc.WeekFor(ctx.Request().Context(), ctx.Param("classID"))
	if err != nil {
		if errors.Cause(err) == child.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying timetable")
	}
	return ctx.JSON(http.StatusOK, week)
}

func (api *timetableApi) export(ctx echo.Context) error {
	buff, filename, err := api.svc.Export(ctx.Request().Context(), ctx.Param("classID"))
	if err != nil {
		if errors.Cause(err) == child.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "exporting timetable")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buff.Bytes())
}

func (api *timetableApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting timetable entries")
	}
	return ctx.NoContent(http.StatusNoContent)
}
