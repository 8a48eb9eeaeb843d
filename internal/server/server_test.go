package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kpcollege/studentportal/internal/doctext"
	"github.com/kpcollege/studentportal/internal/entity"
	"github.com/kpcollege/studentportal/internal/export"
	"github.com/kpcollege/studentportal/internal/importer"
	"github.com/kpcollege/studentportal/internal/llm"
	"github.com/kpcollege/studentportal/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExtractor struct {
	students   llm.StudentExtraction
	attendance llm.AttendanceExtraction
	err        error
}

func (f *fakeExtractor) ExtractStudents(context.Context, string) (llm.StudentExtraction, error) {
	return f.students, f.err
}

func (f *fakeExtractor) ExtractAttendance(context.Context, llm.Document) (llm.AttendanceExtraction, error) {
	return f.attendance, f.err
}

func newTestServer(fx *fakeExtractor) (*gin.Engine, *store.Store) {
	st := store.New(nil)
	docs := doctext.NewExtractor(doctext.Config{}, nil)
	imp := importer.New(importer.Config{}, st, docs, fx, nil)
	exp := export.NewService(st, nil)
	return NewService(st, imp, exp, nil).Router(), st
}

func docxWith(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	xml := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddAndListStudents(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})

	rec := doJSON(r, http.MethodPost, "/api/students", map[string]any{
		"name": "Anil Kumar", "department": "ECE", "year": "1", "section": "A",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rec.Code, rec.Body)
	}
	var created entity.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.RollNumber == "" {
		t.Fatal("expected a generated roll number")
	}

	rec = doJSON(r, http.MethodGet, "/api/students", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.Count != 1 {
		t.Fatalf("count %d, want 1", listed.Count)
	}

	rec = doJSON(r, http.MethodGet, "/api/students/"+created.ID.String()+"/data", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("data: %d %s", rec.Code, rec.Body)
	}
}

func TestAddStudentDuplicateRollConflicts(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})

	body := map[string]any{
		"name": "Anil Kumar", "department": "ECE", "year": "1", "roll_number": "24KP1A0401",
	}
	if rec := doJSON(r, http.MethodPost, "/api/students", body); rec.Code != http.StatusCreated {
		t.Fatalf("first add: %d %s", rec.Code, rec.Body)
	}
	body["name"] = "Someone Else"
	if rec := doJSON(r, http.MethodPost, "/api/students", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate add: %d, want 409", rec.Code)
	}
}

func TestAddStudentValidation(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})
	rec := doJSON(r, http.MethodPost, "/api/students", map[string]any{"name": "No Dept"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestImportRosterOverHTTP(t *testing.T) {
	fx := &fakeExtractor{students: llm.StudentExtraction{Students: []entity.ParsedStudent{
		{Name: "Anil Kumar", Department: "ECE", Year: "1"},
		{Name: "Bhavana Reddy", Department: "ECE", Year: "1"},
	}}}
	r, st := newTestServer(fx)

	body, contentType := multipartUpload(t, "roster.docx", docxWith(t, "two students"))
	req := httptest.NewRequest(http.MethodPost, "/api/import/roster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}
	var sess importer.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Summary.Eligible != 2 {
		t.Fatalf("summary: %+v", sess.Summary)
	}

	rec = doJSON(r, http.MethodPost, "/api/import/sessions/"+sess.ID.String()+"/commit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", rec.Code, rec.Body)
	}
	if got := len(st.Users()); got != 2 {
		t.Fatalf("want 2 users, got %d", got)
	}

	// A second commit of the same session is rejected.
	rec = doJSON(r, http.MethodPost, "/api/import/sessions/"+sess.ID.String()+"/commit", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("recommit: %d, want 409", rec.Code)
	}
}

func TestImportRosterRejectsUnsupportedType(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})
	body, contentType := multipartUpload(t, "roster.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/import/roster", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rec.Code)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})
	rec := doJSON(r, http.MethodGet, "/api/import/sessions/00000000-0000-0000-0000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestExportRosterDownload(t *testing.T) {
	r, _ := newTestServer(&fakeExtractor{})
	if rec := doJSON(r, http.MethodPost, "/api/students", map[string]any{
		"name": "Anil Kumar", "department": "ECE", "year": "1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("add: %d", rec.Code)
	}

	rec := doJSON(r, http.MethodGet, "/api/export/roster.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty workbook")
	}
}
