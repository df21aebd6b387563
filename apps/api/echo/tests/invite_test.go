package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/viserknight/mtss/core/invite"
	"github.com/viserknight/mtss/core/user"
)

func Test_inviteApi_lifecycle(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	issueBody := marchallObj(t, map[string]string{"email": "newbie@test.cd"})

	// only admins can issue
	req, rec := newRequest(http.MethodPost, "/v1/invitations", issueBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/invitations", getToken(t, teacher), issueBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// issue
	req, rec = newAuthRequest(http.MethodPost, "/v1/invitations", adminToken, issueBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var issued struct {
		Email  string `json:"email"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if issued.Status != invite.StatusPending {
		t.Errorf("status = %q; want %q", issued.Status, invite.StatusPending)
	}

	// an address with an account cannot be invited
	req, rec = newAuthRequest(http.MethodPost, "/v1/invitations", adminToken, marchallObj(t, map[string]string{"email": teacher.Email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// the raw token never leaves the API; fetch it from the store
	inv, err := invSvc.GetByEmail(context.Background(), "newbie@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}

	// validate is un-authed: the signup deep link lands here
	req, rec = newRequest(http.MethodGet, "/v1/invitations/validate?token="+url.QueryEscape(inv.Token))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	req, rec = newRequest(http.MethodGet, "/v1/invitations/validate?token=nope")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// accept
	acceptBody := marchallObj(t, map[string]string{
		"token":            inv.Token,
		"full_name":        "New Teacher",
		"password":         "An0ther$ecret",
		"password_confirm": "An0ther$ecret",
	})
	req, rec = newRequest(http.MethodPost, "/v1/invitations/accept", acceptBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var accepted struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
	if err = json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if accepted.User.Email != "newbie@test.cd" {
		t.Errorf("accepted email = %q; want the invited address", accepted.User.Email)
	}
	if !accepted.User.IsTeacher() {
		t.Error("accepted user has no teacher role")
	}
	if !accepted.User.IsVerified {
		t.Error("accepted user is not verified")
	}
	if accepted.Token == "" {
		t.Error("accept did not sign the new teacher in")
	}

	// tokens are single use
	req, rec = newRequest(http.MethodPost, "/v1/invitations/accept", acceptBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
	req, rec = newRequest(http.MethodGet, "/v1/invitations/validate?token="+url.QueryEscape(inv.Token))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_inviteApi_resendRotatesToken(t *testing.T) {
	resetDB()

	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)
	body := marchallObj(t, map[string]string{"email": "newbie@test.cd"})

	req, rec := newAuthRequest(http.MethodPost, "/v1/invitations", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusCreated)
	}
	first, err := invSvc.GetByEmail(context.Background(), "newbie@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/invitations/resend", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	second, err := invSvc.GetByEmail(context.Background(), "newbie@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("resend created a second row for the same email")
	}
	if second.Token == first.Token {
		t.Error("resend did not rotate the token")
	}

	// the old deep link is dead
	req, rec = newRequest(http.MethodGet, "/v1/invitations/validate?token="+url.QueryEscape(first.Token))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}
