package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/invite"
	"github.com/viserknight/mtss/core/user"
)

type inviteApi struct {
	conf     *core.Config
	svc      *invite.Service
	usrSvc   *user.Service
	auditSvc *audit.Service
}

func registerInviteAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc *invite.Service, usrSvc *user.Service, auditSvc *audit.Service) {
	api := inviteApi{conf: conf, svc: svc, usrSvc: usrSvc, auditSvc: auditSvc}

	ig := g.Group("/invitations")

	// un-authed endpoints: the teacher-signup deep link lands here
	ig.GET("/validate", api.validate)
	ig.POST("/accept", api.accept)

	// admin endpoints
	ag := ig.Group("", jwt, adminMiddleware())
	ag.POST("", api.issue)
	ag.POST("/resend", api.resend)
	ag.GET("", api.query)
	ag.DELETE("", api.destroyMultiple)
}

func (api *inviteApi) issue(ctx echo.Context) error {
	var data invite.NewInvitation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvitation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()

	// the address must not already belong to an account
	if _, err = api.usrSvc.GetByEmail(reqCtx, data.Email); err == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "a user with this email already exists"})
	} else if errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "finding user by email")
	}

	inv, err := api.svc.Issue(reqCtx, data.Email, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "issuing invitation")
	}
	api.auditSvc.Log(reqCtx, ctxUsr.ID, audit.ActionInvite, "invitation", inv.ID, inv.Email)

	return ctx.JSON(http.StatusCreated, api.render(inv))
}

func (api *inviteApi) resend(ctx echo.Context) error {
	var data invite.NewInvitation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvitation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	inv, err := api.svc.Resend(reqCtx, data.Email, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "resending invitation")
	}
	api.auditSvc.Log(reqCtx, ctxUsr.ID, audit.ActionInvite, "invitation", inv.ID, inv.Email+" (resend)")

	return ctx.JSON(http.StatusOK, api.render(inv))
}

func (api *inviteApi) validate(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "token", Error: "this field is required"})
	}

	inv, err := api.svc.Validate(ctx.Request().Context(), token)
	if err != nil {
		switch errors.Cause(err) {
		case invite.ErrNotFound:
			return errHttpNotFound
		case invite.ErrAlreadyUsed, invite.ErrExpired:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "validating invitation")
	}

	return ctx.JSON(http.StatusOK, api.render(inv))
}

func (api *inviteApi) accept(ctx echo.Context) error {
	var data invite.AcceptInvitation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcceptInvitation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.svc.Consume(reqCtx, data)
	if err != nil {
		switch errors.Cause(err) {
		case invite.ErrNotFound:
			return errHttpNotFound
		case invite.ErrAlreadyUsed, invite.ErrExpired:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "accepting invitation")
	}
	api.auditSvc.Log(reqCtx, usr.ID, audit.ActionAccept, "invitation", "", usr.Email)

	// sign the new teacher straight in
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, AcceptResponse{User: usr, Token: token})
}

func (api *inviteApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invs, err := api.svc.Query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invitations")
	}

	res := make([]InvitationResponse, 0, len(invs))
	for _, inv := range invs {
		res = append(res, api.render(inv))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *inviteApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	if err := api.svc.Delete(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting invitations")
	}
	api.auditSvc.Log(reqCtx, ctxUsr.ID, audit.ActionDelete, "invitation", "", "bulk delete")
	return ctx.NoContent(http.StatusNoContent)
}

// render folds the time-based expiry into the reported status.
func (api *inviteApi) render(inv invite.Invitation) InvitationResponse {
	return InvitationResponse{
		Invitation: inv,
		Status:     inv.StatusAt(time.Now().UTC()),
	}
}

type (
	InvitationResponse struct {
		invite.Invitation
		Status string `json:"status"`
	}

	AcceptResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
)
