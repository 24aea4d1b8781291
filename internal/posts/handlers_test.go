package posts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/auth"
	"instaclone/internal/storage/storagetest"
)

// newRouter signs every request in as actorID; actorID 0 means anonymous
func newRouter(f fixture, actorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actorID != 0 {
			auth.SetActor(c, auth.Actor{ID: actorID, Username: "actor"})
		}
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(r, r.Group("/", auth.RequireActor()))
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreatePostRedirectsHome(t *testing.T) {
	f := newFixture()
	r := newRouter(f, 1)

	body, contentType := storagetest.Form(t, map[string]string{"description": "beach"},
		storagetest.File{Field: "image", Filename: "b.png", ContentType: "image/png", Data: storagetest.PNG})
	req := httptest.NewRequest(http.MethodPost, "/post/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))
	require.Len(t, f.repo.posts, 1)
	assert.Equal(t, int64(1), f.repo.posts[1].UserID)
}

func TestHandler_CreatePostAcceptsLongDescription(t *testing.T) {
	f := newFixture()
	r := newRouter(f, 1)

	long := strings.Repeat("caption ", 1000)
	body, contentType := storagetest.Form(t, map[string]string{"description": long},
		storagetest.File{Field: "image", Filename: "b.png", ContentType: "image/png", Data: storagetest.PNG})
	req := httptest.NewRequest(http.MethodPost, "/post/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	require.Len(t, f.repo.posts, 1)
	require.NotNil(t, f.repo.posts[1].Description)
	assert.Equal(t, strings.TrimSpace(long), *f.repo.posts[1].Description)
}

func TestHandler_CreatePostWithoutImage(t *testing.T) {
	f := newFixture()
	r := newRouter(f, 1)

	body, contentType := storagetest.Form(t, map[string]string{"description": "no image"})
	req := httptest.NewRequest(http.MethodPost, "/post/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"image"`)
}

func TestHandler_CreatePostRequiresActor(t *testing.T) {
	f := newFixture()
	w := serve(newRouter(f, 0), http.MethodPost, "/post/create", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GetListAndNotFound(t *testing.T) {
	f := newFixture()
	p := f.create(t, 1, "hello")
	r := newRouter(f, 0)

	w := serve(r, http.MethodGet, "/posts/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, p.ID, list.Data[0].ID)

	w = serve(r, http.MethodGet, "/posts/"+strconv.FormatInt(p.ID, 10)+"/", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/posts/999/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = serve(r, http.MethodGet, "/posts/abc/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_UpdatePost(t *testing.T) {
	f := newFixture()
	p := f.create(t, 1, "hello")
	path := "/posts/" + strconv.FormatInt(p.ID, 10) + "/"

	w := serve(newRouter(f, 1), http.MethodPut, path, `{"image":"`+p.Image+`","description":"edited","likes_count":99}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "edited", *f.repo.posts[p.ID].Description)
	assert.Zero(t, f.repo.posts[p.ID].LikesCount, "counters are read-only")

	w = serve(newRouter(f, 1), http.MethodPut, path, `{"description":"no image"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"image"`)

	w = serve(newRouter(f, 2), http.MethodPut, path, `{"image":"`+p.Image+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_DeletePost(t *testing.T) {
	f := newFixture()
	p := f.create(t, 1, "hello")
	path := "/posts/" + strconv.FormatInt(p.ID, 10) + "/"

	assert.Equal(t, http.StatusForbidden, serve(newRouter(f, 2), http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(newRouter(f, 1), http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(newRouter(f, 1), http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(newRouter(f, 1), http.MethodGet, path, "").Code)
}
