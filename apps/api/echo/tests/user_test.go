package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/viserknight/mtss/core/user"
)

func Test_userApi_login(t *testing.T) {
	resetDB()

	createUser(t, "Teacher One", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	createUser(t, "Gone", "goner1", "goner@test.cd", "Sup3r$ecret", nil, false)

	tests := []httpTest{
		{
			name: "missing fields", body: marchallObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", body: marchallObj(t, map[string]string{"username": "whoami", "password": "Sup3r$ecret"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"username": "teach1", "password": "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"username": "goner1", "password": "Sup3r$ecret"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login with username", body: marchallObj(t, map[string]string{"username": "teach1", "password": "Sup3r$ecret"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login with email", body: marchallObj(t, map[string]string{"username": "teach1@test.cd", "password": "Sup3r$ecret"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.Token == "" {
					t.Error("login did not return a token")
				}
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required (teacher)", path: "/v1/users", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Admin required (parent)", path: "/v1/users", token: getToken(t, parent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/v1/users", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, teacher, parent, admin),
		},
		{
			name: "search", path: "/v1/users?search=teach", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, teacher),
		},
		{
			name: "role filter", path: "/v1/users?role=parent:", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, parent),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "self", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher),
		},
		{
			name: "other user hidden", path: "/v1/users/" + parent.ID, token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
		{
			name: "admin sees anyone", path: "/v1/users/" + parent.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, parent),
		},
		{
			name: "unknown id", path: "/v1/users/1f2b8398-0000-0000-0000-000000000000", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdminOwner}, true)

	body := marchallObj(t, user.NewUser{
		Name:            "New Parent",
		Username:        "parent9",
		Email:           "parent9@test.cd",
		Password:        "An0ther$ecret",
		PasswordConfirm: "An0ther$ecret",
		Roles:           user.ParentRoles,
	})

	// teachers cannot register accounts
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if !created.IsParent() {
		t.Error("created user has no parent role")
	}

	// duplicate email is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}
