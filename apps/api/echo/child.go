package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/user"
)

type childApi struct {
	svc      *child.Service
	usrSvc   *user.Service
	auditSvc *audit.Service
}

func registerChildAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *child.Service, usrSvc *user.Service, auditSvc *audit.Service) {
	api := childApi{svc: svc, usrSvc: usrSvc, auditSvc: auditSvc}

	cg := g.Group("/children", jwt)
	cg.GET("/mine", api.mine, parentMiddleware())

	tg := cg.Group("", teacherMiddleware())
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.PUT("/:id", api.update)
	tg.POST("/:id/class", api.assignClass)
	tg.DELETE("", api.destroyMultiple, adminMiddleware())

	cg.GET("/:id", api.retrieve)

	kg := g.Group("/classes", jwt, teacherMiddleware())
	kg.GET("", api.queryClasses)
	kg.POST("", api.createClass, adminMiddleware())
	kg.GET("/:id/roster", api.roster)
	kg.DELETE("", api.destroyClasses, adminMiddleware())
}

func (api *childApi) create(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	chd, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionCreate, "child", chd.ID, chd.Name)

	return ctx.JSON(http.StatusCreated, chd)
}

func (api *childApi) query(ctx echo.Context) error {
	filter := new(child.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []child.Child{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	children, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

// mine lists the caller's linked children.
func (api *childApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	children, err := api.svc.ByParent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying children by parent")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	chd, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding child by ID")
	}

	// parents only see their own children
	if !(claims.IsAdmin || claims.IsTeacher) && chd.ParentID.String != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) update(ctx echo.Context) error {
	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}

	reqCtx := ctx.Request().Context()
	chd, err := api.svc.Update(reqCtx, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating child")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionUpdate, "child", chd.ID, chd.Name)

	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) assignClass(ctx echo.Context) error {
	var data AssignClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignClassRequest")
	}

	reqCtx := ctx.Request().Context()
	chd, err := api.svc.AssignClass(reqCtx, ctx.Param("id"), data.ClassID)
	if err != nil {
		switch errors.Cause(err) {
		case child.ErrNotFound, child.ErrClassNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning class")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionUpdate, "child", chd.ID, "class assignment")

	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	reqCtx := ctx.Request().Context()
	if err := api.svc.Delete(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting children")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionDelete, "child", "", "bulk delete")

	return ctx.NoContent(http.StatusNoContent)
}

func (api *childApi) createClass(ctx echo.Context) error {
	var data child.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionCreate, "class", cls.ID, cls.Name)

	return ctx.JSON(http.StatusCreated, cls)
}

func (api *childApi) queryClasses(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classes, err := api.svc.QueryClasses(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []child.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *childApi) roster(ctx echo.Context) error {
	children, err := api.svc.Roster(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == child.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying class roster")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *childApi) destroyClasses(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	reqCtx := ctx.Request().Context()
	if err := api.svc.DeleteClasses(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionDelete, "class", "", "bulk delete")

	return ctx.NoContent(http.StatusNoContent)
}

type AssignClassRequest struct {
	ClassID string `json:"class_id" validate:"required"`
}
