package invite

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("invitation not found")
	ErrAlreadyUsed = errors.New("invitation has already been used")
	ErrExpired     = errors.New("invitation has expired")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// UpsertInvitation inserts the invitation or, when a row for its
		// email already exists, overwrites that row's token, status,
		// inviter and expiry. One row per email, always.
		UpsertInvitation(ctx context.Context, inv Invitation) (Invitation, error)
		GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
		GetInvitationByEmail(ctx context.Context, email string) (Invitation, error)
		QueryInvitations(ctx context.Context, ordering []core.DBOrdering) ([]Invitation, error)
		UpdateInvitation(ctx context.Context, inv Invitation) (Invitation, error)
		DeleteInvitationsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo    Repository
		usrSvc  *user.Service
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, usrSvc *user.Service, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Issue creates (or rotates) the invitation for `email` and emails the
// signup deep link. A pre-existing row is overwritten: status back to
// pending, fresh token, expiry recomputed from now. "First send" and
// "resend" are the same operation.
func (svc *Service) Issue(ctx context.Context, email, issuedBy string) (Invitation, error) {
	ni := NewInvitation{Email: email}
	if err := ni.Validate(); err != nil {
		return Invitation{}, err
	}

	now := NowFunc().UTC()
	inv := Invitation{
		Email:     ni.Email,
		Token:     uuid.New().String(),
		Status:    StatusPending,
		InvitedBy: issuedBy,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.conf.InvitationExpirationDelta),
	}

	inv, err := svc.repo.UpsertInvitation(ctx, inv)
	if err != nil {
		return Invitation{}, err
	}

	svc.sendInvitationMail(inv)
	return inv, nil
}

// Resend is a full token rotation, not a notification replay.
func (svc *Service) Resend(ctx context.Context, email, issuedBy string) (Invitation, error) {
	return svc.Issue(ctx, email, issuedBy)
}

// Validate resolves a raw token to its invitation.
// It fails with ErrNotFound for an unknown token, ErrAlreadyUsed for a
// consumed one and ErrExpired when past ExpiresAt - regardless of the
// stored status.
func (svc *Service) Validate(ctx context.Context, token string) (Invitation, error) {
	token = core.CleanString(token)
	if token == "" {
		return Invitation{}, ErrNotFound
	}

	inv, err := svc.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return Invitation{}, err
	}
	if inv.Status == StatusAccepted {
		return Invitation{}, ErrAlreadyUsed
	}
	if NowFunc().UTC().After(inv.ExpiresAt) {
		return Invitation{}, ErrExpired
	}
	return inv, nil
}

// Consume re-validates the token, creates the teacher account bound to the
// invitation's email and only then marks the invitation accepted. If account
// creation fails the invitation is left untouched so a retry with the same
// token remains possible.
func (svc *Service) Consume(ctx context.Context, ai AcceptInvitation) (user.User, error) {
	if err := ai.Validate(); err != nil {
		return user.User{}, err
	}

	inv, err := svc.Validate(ctx, ai.Token)
	if err != nil {
		return user.User{}, err
	}

	nu := user.NewUser{
		Name:            ai.FullName,
		Email:           inv.Email, // bound email; the form's email field is read-only
		Password:        ai.Password,
		PasswordConfirm: ai.PasswordConfirm,
		Roles:           user.TeacherRoles,
	}
	if err = nu.Validate(ctx, svc.usrSvc); err != nil {
		return user.User{}, err
	}

	usr, err := svc.usrSvc.CreateVerified(ctx, nu)
	if err != nil {
		return user.User{}, err
	}

	inv.Status = StatusAccepted
	if _, err = svc.repo.UpdateInvitation(ctx, inv); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Invitation, error) {
	return svc.repo.GetInvitationByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Invitation, error) {
	return svc.repo.QueryInvitations(ctx, ordering)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteInvitationsByID(ctx, ids...)
	return err
}

// sendInvitationMail dispatches the signup link. Delivery runs async in the
// email backend; a delivery failure is reported there and never masks the
// (already committed) token rotation.
func (svc *Service) sendInvitationMail(inv Invitation) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: inv.Email}},
		Subject:      "You are invited to join as a teacher",
		TemplateName: "teacher-invitation",
		TemplateData: struct {
			Email     string
			SignupURL string
			ExpiresAt time.Time
		}{
			Email:     inv.Email,
			SignupURL: svc.conf.FrontendBaseURL + "/teacher-signup?token=" + inv.Token,
			ExpiresAt: inv.ExpiresAt,
		},
	})
}
