package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/report"
)

type reportApi struct {
	svc      *report.Service
	chdSvc   *child.Service
	auditSvc *audit.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service, chdSvc *child.Service, auditSvc *audit.Service) {
	api := reportApi{svc: svc, chdSvc: chdSvc, auditSvc: auditSvc}

	rg := g.Group("/children/:childID/reports", jwt)
	rg.POST("", api.upload, teacherMiddleware())
	rg.GET("", api.query)

	dg := g.Group("/reports", jwt)
	dg.GET("/:id/download", api.download)
	dg.DELETE("", api.destroyMultiple, teacherMiddleware())
}

// upload stores the file blob and its metadata row.
func (api *reportApi) upload(ctx echo.Context) error {
	term := ctx.FormValue("term")
	if term == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	rc, err := api.svc.Upload(reqCtx,
		ctx.Param("childID"), term, fh.Filename, fh.Header.Get("Content-Type"), f, claims.Subject)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "uploading report card")
	}
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionUpload, "report_card", rc.ID, rc.Filename)

	return ctx.JSON(http.StatusCreated, rc)
}

func (api *reportApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	if err = api.checkChildAccess(ctx, claims, ctx.Param("childID")); err != nil {
		return err
	}

	cards, err := api.svc.QueryByChild(reqCtx, ctx.Param("childID"))
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying report cards")
	}
	if cards == nil {
		cards = []report.ReportCard{}
	}
	return ctx.JSON(http.StatusOK, cards)
}

// download streams the stored blob back with its original filename.
func (api *reportApi) download(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	rc, blob, err := api.svc.Open(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == report.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening report card")
	}
	defer func() { _ = blob.Close() }()

	if err = api.checkChildAccess(ctx, claims, rc.ChildID); err != nil {
		return err
	}

	ct := rc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+rc.Filename+`"`)
	return ctx.Stream(http.StatusOK, ct, blob)
}

func (api *reportApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	reqCtx := ctx.Request().Context()
	if err := api.svc.Delete(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting report cards")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionDelete, "report_card", "", "bulk delete")

	return ctx.NoContent(http.StatusNoContent)
}

// checkChildAccess hides other families' children from parents.
func (api *reportApi) checkChildAccess(ctx echo.Context, claims Claims, childID string) error {
	if claims.IsAdmin || claims.IsTeacher {
		return nil
	}
	chd, err := api.chdSvc.GetByID(ctx.Request().Context(), childID)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding child by ID")
	}
	if chd.ParentID.String != claims.Subject {
		return errHttpNotFound
	}
	return nil
}
