package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/user"
)

func Test_lessonApi_plan(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	teacherToken := getToken(t, teacher)

	body := marchallObj(t, map[string]string{
		"subject":  "Mathematics",
		"grade":    "4",
		"topic":    "Fractions",
		"duration": "40 minutes",
	})

	// planning is teacher-gated
	req, rec := newAuthRequest(http.MethodPost, "/v1/lessons/plan", getToken(t, parent), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	aiStub.reply = "Objectives: understand halves and quarters."
	aiStub.err = nil
	req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/plan", teacherToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Content != aiStub.reply {
		t.Errorf("content = %q; want the gateway reply", resp.Content)
	}

	// missing fields
	req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/plan", teacherToken, marchallObj(t, map[string]string{"subject": "Maths"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// gateway throttling surfaces as service unavailable
	aiStub.err = core.ErrAIRateLimited
	req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/plan", teacherToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusServiceUnavailable, rec.Body.String())
	}

	aiStub.err = core.ErrAIQuotaExceeded
	req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/plan", teacherToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusServiceUnavailable)
	}

	// any other gateway status surfaces as a bad gateway with its status
	aiStub.err = &core.AIStatusError{StatusCode: http.StatusInternalServerError}
	req, rec = newAuthRequest(http.MethodPost, "/v1/lessons/plan", teacherToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadGateway,
		wantData: marchallObj(t, httpErr{Error: "AI service error: 500"}),
	}, rec)
	aiStub.err = nil
}

func Test_extractionApi(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "admin1", "admin1@test.cd", "Sup3r$ecret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	body := marchallObj(t, map[string]string{"text": "Amina K, born 2016-03-04, grade 4."})

	// extraction is admin-gated
	req, rec := newAuthRequest(http.MethodPost, "/v1/extractions", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	aiStub.reply = `{"learners":[{"name":"Amina K","date_of_birth":"2016-03-04","grade":"4"}]}`
	aiStub.err = nil
	req, rec = newAuthRequest(http.MethodPost, "/v1/extractions", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var cands []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cands); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(cands) != 1 || cands[0].Status != "pending" {
		t.Fatalf("candidates = %v; want one pending row", cands)
	}

	// a non-JSON model reply is a gateway fault, not an empty result
	aiStub.reply = "I could not find any learners, sorry!"
	req, rec = newAuthRequest(http.MethodPost, "/v1/extractions", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadGateway, rec.Body.String())
	}

	// a well-formed reply with no learners is not a server fault
	aiStub.reply = `{"learners":[]}`
	req, rec = newAuthRequest(http.MethodPost, "/v1/extractions", adminToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "no learner records could be extracted"}),
	}, rec)

	// register the extracted rows
	registerBody := marchallObj(t, map[string]interface{}{
		"candidates": []map[string]string{
			{"name": "Amina K", "date_of_birth": "2016-03-04", "grade": "4", "status": "pending"},
		},
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/extractions/register", adminToken, registerBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cands); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(cands) != 1 || cands[0].Status != "success" {
		t.Fatalf("registration results = %v; want one success row", cands)
	}

	// the same batch again trips the duplicate guard
	req, rec = newAuthRequest(http.MethodPost, "/v1/extractions/register", adminToken, registerBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cands); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if cands[0].Status != "error" {
		t.Errorf("duplicate registration status = %q; want %q", cands[0].Status, "error")
	}
}
