package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/auth"
	"instaclone/internal/posts"
	"instaclone/internal/social"
	"instaclone/internal/users"
)

type stubUsers struct {
	users.Service
	byID  map[int64]*users.User
	found []users.User
}

func (s stubUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s stubUsers) Search(_ context.Context, q string) ([]users.User, error) {
	if q == "" {
		return []users.User{}, nil
	}
	return s.found, nil
}

type stubPosts struct {
	posts.Service
	byUser map[int64][]posts.Post
	feed   []posts.Post
	liked  map[int64]bool
}

func (s stubPosts) Feed(context.Context, int64) ([]posts.Post, error) {
	return append([]posts.Post(nil), s.feed...), nil
}

func (s stubPosts) ListByUser(_ context.Context, id int64) ([]posts.Post, error) {
	return append([]posts.Post(nil), s.byUser[id]...), nil
}

func (s stubPosts) MarkLiked(_ context.Context, _ int64, list []posts.Post) error {
	for i := range list {
		v := s.liked[list[i].ID]
		list[i].LikedByMe = &v
	}
	return nil
}

type stubGraph struct {
	social.Service
	following map[[2]int64]bool
}

func (s stubGraph) IsFollowing(_ context.Context, a, b int64) (bool, error) {
	return s.following[[2]int64{a, b}], nil
}

func newStubService() Service {
	alice := &users.User{ID: 1, Username: "alice", FollowingCount: 1}
	bob := &users.User{ID: 2, Username: "bob", PostsCount: 1, FollowersCount: 1}
	return NewService(
		stubUsers{
			byID:  map[int64]*users.User{1: alice, 2: bob},
			found: []users.User{*bob},
		},
		stubPosts{
			byUser: map[int64][]posts.Post{2: {{ID: 7, UserID: 2}}},
			feed:   []posts.Post{{ID: 7, UserID: 2}},
			liked:  map[int64]bool{7: true},
		},
		stubGraph{following: map[[2]int64]bool{{1, 2}: true}},
	)
}

func TestService_Home(t *testing.T) {
	home, err := newStubService().Home(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "alice", home.Viewer.Username)
	require.Len(t, home.Posts, 1)
	require.NotNil(t, home.Posts[0].LikedByMe)
	assert.True(t, *home.Posts[0].LikedByMe)
}

func TestService_Profile(t *testing.T) {
	svc := newStubService()
	ctx := context.Background()

	p, err := svc.Profile(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, p.IsOwnProfile)
	assert.True(t, p.IsFollowing)
	assert.Equal(t, int64(1), p.PostsCount)
	assert.Equal(t, int64(1), p.FollowersCount)
	assert.Len(t, p.Posts, 1)

	own, err := svc.Profile(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, own.IsOwnProfile)
	assert.False(t, own.IsFollowing)
	assert.Empty(t, own.Posts)

	_, err = svc.Profile(ctx, 1, 99)
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestService_Search(t *testing.T) {
	svc := newStubService()

	res, err := svc.Search(context.Background(), "bo")
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "bob", res.Users[0].Username)

	res, err = svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, res.Users)
	assert.Empty(t, res.Users)
}

func TestHandler_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetActor(c, auth.Actor{ID: 1, Username: "alice"})
		c.Next()
	})
	NewHandler(newStubService()).RegisterRoutes(r)

	for path, want := range map[string]int{
		"/":            http.StatusOK,
		"/profile/":    http.StatusOK,
		"/profile/2/":  http.StatusOK,
		"/profile/99/": http.StatusNotFound,
		"/profile/x/":  http.StatusNotFound,
		"/search?q=bo": http.StatusOK,
		"/search":      http.StatusOK,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile/2/", nil))
	assert.Contains(t, w.Body.String(), `"is_following":true`)
	assert.Contains(t, w.Body.String(), `"liked_by_me":true`)
}
