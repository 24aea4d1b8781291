package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/apperr"
	"instaclone/internal/session"
	"instaclone/internal/storage/storagetest"
)

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func oversizedUpload(t *testing.T, field string, size int) (*countingReader, string) {
	t.Helper()
	data := append(append([]byte{}, storagetest.PNG...), bytes.Repeat([]byte{0}, size)...)
	body, contentType := storagetest.Form(t, map[string]string{"description": "big"}, storagetest.File{
		Field: field, Filename: "big.png", ContentType: "image/png", Data: data,
	})
	return &countingReader{r: body}, contentType
}

func TestBodyLimit_RejectsOversizedPostUpload(t *testing.T) {
	s := newTestServer(true)
	limit := s.deps.Config.HTTP.MaxUploadBytes
	r := s.Router()

	body, contentType := oversizedUpload(t, "image", 8<<20)
	req := httptest.NewRequest(http.MethodPost, "/post/create", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp apperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "request_too_large", resp.Code)
	assert.Less(t, body.n, 2*limit, "the body must not be drained past the limit")
}

func TestBodyLimit_RejectsOversizedRegistration(t *testing.T) {
	r := newTestServer(true).Router()

	body, contentType := oversizedUpload(t, "avatar", 4<<20)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBodyLimit_PassesSmallBodies(t *testing.T) {
	r := newTestServer(true).Router()
	r.POST("/echo", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, "%d", len(b))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 1024))))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1024", w.Body.String())
}
