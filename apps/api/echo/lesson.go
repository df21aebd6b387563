package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/lesson"
)

type lessonApi struct {
	svc *lesson.Service
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lesson.Service) {
	api := lessonApi{svc: svc}

	lg := g.Group("/lessons", jwt, teacherMiddleware())
	lg.POST("/plan", api.plan)
	lg.POST("/image", api.image)
}

func (api *lessonApi) plan(ctx echo.Context) error {
	var data lesson.LessonPlanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonPlanRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	text, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return api.trapGatewayErr(err, "generating lesson plan")
	}
	return ctx.JSON(http.StatusOK, LessonResponse{Content: text})
}

func (api *lessonApi) image(ctx echo.Context) error {
	var data lesson.ImageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImageRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	text, err := api.svc.GenerateFromImage(ctx.Request().Context(), data)
	if err != nil {
		return api.trapGatewayErr(err, "analyzing image")
	}
	return ctx.JSON(http.StatusOK, LessonResponse{Content: text})
}

// trapGatewayErr turns throttling sentinels into 503s with their
// user-facing messages, and other gateway statuses into 502s.
func (api *lessonApi) trapGatewayErr(err error, msg string) error {
	if serr, ok := errors.Cause(err).(*core.AIStatusError); ok {
		return echo.NewHTTPError(http.StatusBadGateway, serr.Error())
	}
	switch errors.Cause(err) {
	case lesson.ErrRateLimited, lesson.ErrQuotaExceeded:
		return echo.NewHTTPError(http.StatusServiceUnavailable, errors.Cause(err).Error())
	case core.ErrAIRateLimited:
		return echo.NewHTTPError(http.StatusServiceUnavailable, lesson.ErrRateLimited.Error())
	case core.ErrAIQuotaExceeded:
		return echo.NewHTTPError(http.StatusServiceUnavailable, lesson.ErrQuotaExceeded.Error())
	}
	return errors.Wrap(err, msg)
}

type LessonResponse struct {
	Content string `json:"content"`
}
