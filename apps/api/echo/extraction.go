package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/extraction"
)

type extractionApi struct {
	svc      *extraction.Service
	auditSvc *audit.Service
}

func registerExtractionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *extraction.Service, auditSvc *audit.Service) {
	api := extractionApi{svc: svc, auditSvc: auditSvc}

	eg := g.Group("/extractions", jwt, adminMiddleware())
	eg.POST("", api.extract)
	eg.POST("/register", api.register)
}

// extract relays pasted document text to the model and returns the
// candidate rows it found, for operator review.
func (api *extractionApi) extract(ctx echo.Context) error {
	var data extraction.ExtractRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExtractRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	candidates, err := api.svc.Extract(ctx.Request().Context(), data.Text)
	if err != nil {
		switch errors.Cause(err) {
		case extraction.ErrMalformedResponse:
			return echo.NewHTTPError(http.StatusBadGateway, extraction.ErrMalformedResponse.Error())
		case extraction.ErrNoCandidates:
			return core.NewValidationError(extraction.ErrNoCandidates)
		case core.ErrAIRateLimited, core.ErrAIQuotaExceeded:
			return echo.NewHTTPError(http.StatusServiceUnavailable, errors.Cause(err).Error())
		}
		return errors.Wrap(err, "extracting candidates")
	}
	return ctx.JSON(http.StatusOK, candidates)
}

// register materializes reviewed candidates as child records; per-row
// failures come back flagged on the row, never as a request error.
func (api *extractionApi) register(ctx echo.Context) error {
	var data extraction.RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	results, err := api.svc.Register(reqCtx, data.Candidates)
	if err != nil {
		return errors.Wrap(err, "registering candidates")
	}

	claims, _ := getContextClaims(ctx)
	api.auditSvc.Log(reqCtx, claims.Subject, audit.ActionCreate, "child", "", "extraction registration")

	return ctx.JSON(http.StatusOK, results)
}
