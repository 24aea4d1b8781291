package comments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/events"
	"instaclone/internal/posts"
)

type fakeRepo struct {
	owners   map[int64]int64
	counts   map[int64]int64
	comments []Comment
}

func (r *fakeRepo) Create(_ context.Context, c *Comment) (int64, error) {
	owner, ok := r.owners[c.PostID]
	if !ok {
		return 0, posts.ErrPostNotFound
	}
	c.ID = int64(len(r.comments) + 1)
	c.CreatedAt = time.Now()
	r.comments = append(r.comments, *c)
	r.counts[c.PostID]++
	return owner, nil
}

func (r *fakeRepo) ListByPost(_ context.Context, postID int64) ([]Comment, error) {
	list := []Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			list = append(list, c)
		}
	}
	return list, nil
}

type fakePosts struct {
	owners      map[int64]int64
	invalidated []int64
}

func (p *fakePosts) Get(_ context.Context, id int64) (*posts.Post, error) {
	owner, ok := p.owners[id]
	if !ok {
		return nil, posts.ErrPostNotFound
	}
	return &posts.Post{ID: id, UserID: owner}, nil
}

func (p *fakePosts) Invalidate(_ context.Context, id int64) {
	p.invalidated = append(p.invalidated, id)
}

type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	svc   Service
	repo  *fakeRepo
	posts *fakePosts
	pub   *recordingPublisher
}

func newFixture() fixture {
	owners := map[int64]int64{10: 2}
	f := fixture{
		repo:  &fakeRepo{owners: owners, counts: map[int64]int64{}},
		posts: &fakePosts{owners: owners},
		pub:   &recordingPublisher{},
	}
	f.svc = NewService(f.repo, f.posts, f.pub)
	return f
}

func TestService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.Create(ctx, 1, 10, "nice")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Text)
	assert.Equal(t, int64(1), f.repo.counts[10])
	assert.Equal(t, []int64{10}, f.posts.invalidated)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, events.TypeCommentCreated, ev.Type)
	assert.Equal(t, int64(2), ev.RecipientID)
	assert.Equal(t, c.ID, ev.CommentID)
	assert.Equal(t, "nice", ev.Text)
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, 10, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, 1, 99, "hello")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	assert.Empty(t, f.pub.events)
	assert.Zero(t, f.repo.counts[10])
}

func TestService_ListByPost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, text := range []string{"first", "second"} {
		_, err := f.svc.Create(ctx, 1, 10, text)
		require.NoError(t, err)
	}

	list, err := f.svc.ListByPost(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)

	_, err = f.svc.ListByPost(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func newRouter(svc Service, actorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actorID != 0 {
			auth.SetActor(c, auth.Actor{ID: actorID})
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r, r.Group("/", auth.RequireActor()))
	return r
}

func TestHandler_CreateFromForm(t *testing.T) {
	f := newFixture()
	r := newRouter(f.svc, 1)

	form := url.Values{"text": {"nice"}}
	req := httptest.NewRequest(http.MethodPost, "/comment/10", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://localhost:8080/")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Len(t, f.repo.comments, 1)
}

func TestHandler_CreateRejectsEmpty(t *testing.T) {
	f := newFixture()
	r := newRouter(f.svc, 1)

	req := httptest.NewRequest(http.MethodPost, "/comment/10", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"text"`)
}

func TestHandler_CreateAcceptsLongText(t *testing.T) {
	f := newFixture()
	r := newRouter(f.svc, 1)

	long := strings.Repeat("word ", 2000)
	form := url.Values{"text": {long}}
	req := httptest.NewRequest(http.MethodPost, "/comment/10", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code, w.Body.String())
	require.Len(t, f.repo.comments, 1)
	assert.Equal(t, long, f.repo.comments[0].Text)
}

func TestHandler_List(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), 1, 10, "nice")
	require.NoError(t, err)
	r := newRouter(f.svc, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/10/comments/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nice"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/99/comments/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
