package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/user"
)

func Test_childApi_access(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent1 := createUser(t, "Parent One", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	parent2 := createUser(t, "Parent Two", "parent2", "parent2@test.cd", "Sup3r$ecret", user.ParentRoles, true)

	kid1 := createChild(t, "Amina K", "4", "", parent1.ID)
	kid2 := createChild(t, "Jo M", "2", "", parent2.ID)
	orphan := createChild(t, "New Kid", "1", "", "")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/children/mine", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "mine is parent-gated", path: "/v1/children/mine", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "mine lists own children only", path: "/v1/children/mine", token: getToken(t, parent1),
			wantCode: http.StatusOK, wantData: marchallList(t, kid1),
		},
		{
			name: "roster query is teacher-gated", path: "/v1/children", token: getToken(t, parent1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher lists everyone", path: "/v1/children", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, kid1, kid2, orphan),
		},
		{
			name: "parent retrieves own child", path: "/v1/children/" + kid1.ID, token: getToken(t, parent1),
			wantCode: http.StatusOK, wantData: marchallObj(t, kid1),
		},
		{
			name: "other family's child is hidden", path: "/v1/children/" + kid2.ID, token: getToken(t, parent1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
		{
			name: "teacher retrieves any child", path: "/v1/children/" + kid2.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, kid2),
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

func Test_childApi_classes(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	// class creation is admin-only
	body := marchallObj(t, map[string]string{"name": "P4 Blue", "grade": "4", "teacher_id": teacher.ID})
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", teacherToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/classes", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var cls child.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}

	kid := createChild(t, "Amina K", "4", "", "")

	// assign to class
	req, rec = newAuthRequest(http.MethodPost, "/v1/children/"+kid.ID+"/class", teacherToken,
		marchallObj(t, map[string]string{"class_id": cls.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var assigned child.Child
	if err := json.Unmarshal(rec.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assigned.ClassID.String != cls.ID {
		t.Errorf("class_id = %q; want %q", assigned.ClassID.String, cls.ID)
	}

	// unknown class
	req, rec = newAuthRequest(http.MethodPost, "/v1/children/"+kid.ID+"/class", teacherToken,
		marchallObj(t, map[string]string{"class_id": "b29b8a0a-0000-0000-0000-000000000000"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// roster
	req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+cls.ID+"/roster", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var roster []child.Child
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(roster) != 1 || roster[0].ID != kid.ID {
		t.Errorf("roster = %v; want just %q", roster, kid.Name)
	}
}

func Test_childApi_create(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)

	body := marchallObj(t, map[string]string{"name": "Amina K", "grade": "4", "parent_id": parent.ID})

	// parents cannot register children
	req, rec := newAuthRequest(http.MethodPost, "/v1/children", getToken(t, parent), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/children", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var chd child.Child
	if err := json.Unmarshal(rec.Body.Bytes(), &chd); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if chd.ParentID.String != parent.ID {
		t.Errorf("parent_id = %q; want %q", chd.ParentID.String, parent.ID)
	}

	// name is required
	req, rec = newAuthRequest(http.MethodPost, "/v1/children", getToken(t, teacher), marchallObj(t, map[string]string{"grade": "4"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}
