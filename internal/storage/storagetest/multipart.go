package storagetest

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"testing"
)

// PNG is a tiny payload with a PNG signature
var PNG = []byte("\x89PNG\r\n\x1a\n-test-image-")

// File describes one file part of a multipart form
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form encodes fields and files as multipart/form-data and returns the body
// with its Content-Type header value.
func Form(t testing.TB, fields map[string]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part %s: %v", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("write part %s: %v", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// FileHeader returns a parsed header for f, usable with storage.UploadImage
func FileHeader(t testing.TB, f File) *multipart.FileHeader {
	t.Helper()

	body, contentType := Form(t, nil, f)
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File[f.Field]
	if len(headers) == 0 {
		t.Fatalf("no file for field %s", f.Field)
	}
	return headers[0]
}
