package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/viserknight/mtss/core/attendance"
	"github.com/viserknight/mtss/core/user"
)

func Test_attendanceApi(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent := createUser(t, "Parent", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	teacherToken := getToken(t, teacher)

	cls := createClass(t, "P4 Blue", "4", teacher.ID)
	kid1 := createChild(t, "Amina K", "4", cls.ID, parent.ID)
	kid2 := createChild(t, "Jo M", "4", cls.ID, "")

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	markBody := marchallObj(t, map[string]interface{}{
		"date": date.Format(time.RFC3339),
		"marks": []map[string]string{
			{"child_id": kid1.ID, "status": "present"},
			{"child_id": kid2.ID, "status": "absent"},
		},
	})

	// marking is teacher-gated
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, parent), markBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance", teacherToken, markBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var marked []attendance.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &marked); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(marked) != 2 {
		t.Fatalf("marked %d records; want 2", len(marked))
	}

	// re-marking the same day overwrites instead of duplicating
	remarkBody := marchallObj(t, map[string]interface{}{
		"date": date.Format(time.RFC3339),
		"marks": []map[string]string{
			{"child_id": kid2.ID, "status": "late"},
		},
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance", teacherToken, remarkBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance?child_id="+kid2.ID, teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var recs []attendance.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("have %d records for child; want 1", len(recs))
	}
	if recs[0].Status != "late" {
		t.Errorf("status = %q; want %q", recs[0].Status, "late")
	}

	// unknown child in the batch
	badBody := marchallObj(t, map[string]interface{}{
		"date": date.Format(time.RFC3339),
		"marks": []map[string]string{
			{"child_id": "5cb4f38c-0000-0000-0000-000000000000", "status": "present"},
		},
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance", teacherToken, badBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// invalid status
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance", teacherToken, marchallObj(t, map[string]interface{}{
		"date": date.Format(time.RFC3339),
		"marks": []map[string]string{
			{"child_id": kid1.ID, "status": "vanished"},
		},
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// xlsx export
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/export?class_id="+cls.ID+"&from=2026-03-01&to=2026-03-07", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q; want xlsx", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("export returned an empty workbook")
	}

	// export needs a date range
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/export?class_id="+cls.ID, teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}
