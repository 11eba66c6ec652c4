package documenthandler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

func multipartRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUploadAcceptsBothFieldNames(t *testing.T) {
	h := &Handler{MaxBytes: 1 << 20}
	for _, field := range []string{"file", "document"} {
		rec := httptest.NewRecorder()
		up, ok := h.readUpload(rec, multipartRequest(t, field, "cv.pdf", "application/pdf", []byte("%PDF-1.4")))
		if !ok {
			t.Fatalf("field %s: upload rejected with status %d", field, rec.Code)
		}
		if up.FileName != "cv.pdf" || up.ContentType != "application/pdf" {
			t.Fatalf("field %s: unexpected upload %+v", field, up)
		}
	}
}

func TestReadUploadRejectsUnknownField(t *testing.T) {
	h := &Handler{MaxBytes: 1 << 20}
	rec := httptest.NewRecorder()
	if _, ok := h.readUpload(rec, multipartRequest(t, "attachment", "cv.pdf", "application/pdf", []byte("x"))); ok {
		t.Fatal("expected upload under an unknown field name to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReadUploadEnforcesContentTypeWhitelist(t *testing.T) {
	h := &Handler{MaxBytes: 1 << 20, ContentTypes: []string{"application/pdf"}}
	rec := httptest.NewRecorder()
	if _, ok := h.readUpload(rec, multipartRequest(t, "file", "notes.txt", "text/plain", []byte("hi"))); ok {
		t.Fatal("expected disallowed content type to be rejected")
	}
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}
