package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core/announcement"
	"github.com/viserknight/mtss/core/audit"
)

type announcementApi struct {
	svc      *announcement.Service
	auditSvc *audit.Service
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *announcement.Service, auditSvc *audit.Service) {
	api := announcementApi{svc: svc, auditSvc: auditSvc}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, adminMiddleware())
	ag.PUT("/:id", api.update, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// query returns the announcements addressed to the caller's portal;
// admins see everything.
func (api *announcementApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()

	var anns []announcement.Announcement
	switch {
	case claims.IsAdmin:
		anns, err = api.svc.QueryAll(reqCtx)
	case claims.IsTeacher:
		anns, err = api.svc.QueryFor(reqCtx, announcement.AudienceTeachers)
	default:
		anns, err = api.svc.QueryFor(reqCtx, announcement.AudienceParents)
	}
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ann, err := api.svc.Create(reqCtx, data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionCreate, "announcement", ann.ID, ann.Title)

	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announcementApi) update(ctx echo.Context) error {
	var data announcement.UpdateAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	ann, err := api.svc.Update(reqCtx, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == announcement.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating announcement")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionUpdate, "announcement", ann.ID, ann.Title)

	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if err := api.svc.Delete(reqCtx, ctx.Param("id")); err != nil {
		if errors.Cause(err) == announcement.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting announcement")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionDelete, "announcement", ctx.Param("id"), "")

	return ctx.NoContent(http.StatusNoContent)
}
