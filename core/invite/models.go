package invite

import (
	"time"

	"github.com/viserknight/mtss/core"
)

// Invitation statuses. Only pending and accepted are ever stored;
// expired is a derived view state computed from ExpiresAt at read time.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusExpired  = "expired"
)

// Invitation gates teacher self-registration behind an administrator-issued,
// time-limited, single-use token. At most one row exists per email; a resend
// rotates the token and expiry in place.
type Invitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Status    string    `json:"status"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
	ExpiresAt time.Time `json:"expires_at"` // UTC
}

// IsActive reports whether the invitation can still be consumed at `now`.
// Stored status alone is never trusted: a pending row past its expiry is
// inactive even though no status mutation ever happened.
func (inv *Invitation) IsActive(now time.Time) bool {
	return inv.Status == StatusPending && !now.After(inv.ExpiresAt)
}

// StatusAt resolves the caller-visible status at `now`, folding the
// time-based expiry into the stored state.
func (inv *Invitation) StatusAt(now time.Time) string {
	if inv.Status == StatusPending && now.After(inv.ExpiresAt) {
		return StatusExpired
	}
	return inv.Status
}

// NewInvitation contains information needed to issue an Invitation.
type NewInvitation struct {
	Email string `json:"email" validate:"required,email"`
}

func (ni *NewInvitation) Validate() error {
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	return core.Validate.Struct(ni)
}

// AcceptInvitation is the registration form bound to a valid token.
// The email is never user-supplied; it comes from the invitation row.
type AcceptInvitation struct {
	Token           string `json:"token" validate:"required"`
	FullName        string `json:"full_name" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ai *AcceptInvitation) Validate() error {
	ai.Token = core.CleanString(ai.Token)
	ai.FullName = core.CleanString(ai.FullName)
	return core.Validate.Struct(ai)
}
