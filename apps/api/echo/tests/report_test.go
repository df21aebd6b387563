package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viserknight/mtss/core/report"
	"github.com/viserknight/mtss/core/user"
)

func newUploadRequest(t *testing.T, path, token, term, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("term", term); err != nil {
		t.Fatalf("WriteField() failed: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_reportApi(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teach1@test.cd", "Sup3r$ecret", user.TeacherRoles, true)
	parent1 := createUser(t, "Parent One", "parent1", "parent1@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	parent2 := createUser(t, "Parent Two", "parent2", "parent2@test.cd", "Sup3r$ecret", user.ParentRoles, true)
	teacherToken := getToken(t, teacher)

	kid := createChild(t, "Amina K", "4", "", parent1.ID)
	content := []byte("%PDF-1.4 term one report")

	// uploads are teacher-gated
	req, rec := newUploadRequest(t, "/v1/children/"+kid.ID+"/reports", getToken(t, parent1), "Term 1", "report.pdf", content)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// term is required
	req, rec = newUploadRequest(t, "/v1/children/"+kid.ID+"/reports", teacherToken, "", "report.pdf", content)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	req, rec = newUploadRequest(t, "/v1/children/"+kid.ID+"/reports", teacherToken, "Term 1", "report.pdf", content)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var rc report.ReportCard
	if err := json.Unmarshal(rec.Body.Bytes(), &rc); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if rc.Filename != "report.pdf" || rc.Term != "Term 1" {
		t.Errorf("card = %+v; want report.pdf for Term 1", rc)
	}

	// unknown child
	req, rec = newUploadRequest(t, "/v1/children/7f000001-0000-0000-0000-000000000000/reports", teacherToken, "Term 1", "report.pdf", content)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// the linked parent lists and downloads; other families see nothing
	listReq, listRec := newAuthRequest(http.MethodGet, "/v1/children/"+kid.ID+"/reports", getToken(t, parent1))
	app.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", listRec.Code, http.StatusOK, listRec.Body.String())
	}
	var cards []report.ReportCard
	if err := json.Unmarshal(listRec.Body.Bytes(), &cards); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("have %d cards; want 1", len(cards))
	}

	listReq, listRec = newAuthRequest(http.MethodGet, "/v1/children/"+kid.ID+"/reports", getToken(t, parent2))
	app.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", listRec.Code, http.StatusNotFound)
	}

	dlReq, dlRec := newAuthRequest(http.MethodGet, "/v1/reports/"+rc.ID+"/download", getToken(t, parent1))
	app.ServeHTTP(dlRec, dlReq)
	if dlRec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", dlRec.Code, http.StatusOK, dlRec.Body.String())
	}
	if !bytes.Equal(dlRec.Body.Bytes(), content) {
		t.Error("downloaded blob does not match the upload")
	}

	dlReq, dlRec = newAuthRequest(http.MethodGet, "/v1/reports/"+rc.ID+"/download", getToken(t, parent2))
	app.ServeHTTP(dlRec, dlReq)
	if dlRec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", dlRec.Code, http.StatusNotFound)
	}

	// destroy
	delReq, delRec := newAuthRequest(http.MethodDelete, "/v1/reports?id="+rc.ID, teacherToken)
	app.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; want %v", delRec.Code, http.StatusNoContent)
	}
	dlReq, dlRec = newAuthRequest(http.MethodGet, "/v1/reports/"+rc.ID+"/download", getToken(t, parent1))
	app.ServeHTTP(dlRec, dlReq)
	if dlRec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", dlRec.Code, http.StatusNotFound)
	}
}
