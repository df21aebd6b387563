package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/viserknight/mtss/core/announcement"
	"github.com/viserknight/mtss/core/user"
)

func Test_announcementApi(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	post := func(t *testing.T, title, audience string) announcement.Announcement {
		t.Helper()
		body := marchallObj(t, map[string]string{"title": title, "body": "details for " + title, "audience": audience})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var ann announcement.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &ann); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		return ann
	}

	// only admins create
	body := marchallObj(t, map[string]string{"title": "t", "body": "b", "audience": "all"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// bad audience is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/announcements", adminToken,
		marchallObj(t, map[string]string{"title": "t", "body": "b", "audience": "aliens"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	everyone := post(t, "School closed Friday", announcement.AudienceAll)
	staff := post(t, "Staff meeting", announcement.AudienceTeachers)
	fees := post(t, "Fees reminder", announcement.AudienceParents)

	tests := []httpTest{
		{name: "Auth required", token: "", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher portal", token: getToken(t, teacher), wantCode: http.StatusOK,
			wantData: marchallList(t, staff, everyone),
		},
		{
			name: "parent portal", token: getToken(t, parent), wantCode: http.StatusOK,
			wantData: marchallList(t, fees, everyone),
		},
		{
			name: "admin sees all", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, fees, staff, everyone),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/announcements", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// update
	req, rec = newAuthRequest(http.MethodPut, "/v1/announcements/"+staff.ID, adminToken,
		marchallObj(t, map[string]string{"title": "Staff meeting moved"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated announcement.Announcement
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if updated.Title != "Staff meeting moved" {
		t.Errorf("title = %q; want updated title", updated.Title)
	}
	if updated.Body != staff.Body || updated.Audience != staff.Audience {
		t.Error("update clobbered fields that were not provided")
	}

	// destroy
	req, rec = newAuthRequest(http.MethodDelete, "/v1/announcements/"+fees.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	req, rec = newAuthRequest(http.MethodPut, "/v1/announcements/"+fees.ID, adminToken, marchallObj(t, map[string]string{"title": "x"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}
