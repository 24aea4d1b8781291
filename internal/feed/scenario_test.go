package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/comments"
	"instaclone/internal/database"
	"instaclone/internal/database/dbtest"
	"instaclone/internal/events"
	"instaclone/internal/likes"
	"instaclone/internal/posts"
	"instaclone/internal/social"
	"instaclone/internal/storage/storagetest"
	"instaclone/internal/users"
)

// app wires the real repositories against a throwaway PostgreSQL
type app struct {
	db       database.Service
	users    users.Service
	posts    posts.Service
	graph    social.Service
	likes    likes.Service
	comments comments.Service
	feed     Service
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := dbtest.New(t)
	store := storagetest.NewMemory()
	pub := events.NopPublisher{}

	a := &app{db: db}
	a.users = users.NewService(users.NewRepository(db), store)
	a.posts = posts.NewService(posts.NewRepository(db), nil, store)
	a.graph = social.NewService(social.NewRepository(db), a.users, pub)
	a.likes = likes.NewService(likes.NewRepository(db), a.posts, pub)
	a.comments = comments.NewService(comments.NewRepository(db), a.posts, pub)
	a.feed = NewService(a.users, a.posts, a.graph)
	return a
}

func (a *app) register(t *testing.T, username string) *users.User {
	t.Helper()
	u, err := a.users.Register(context.Background(), users.RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "correct horse",
		PasswordConfirm: "correct horse",
		Name:            username,
	}, nil)
	require.NoError(t, err)
	return u
}

func (a *app) post(t *testing.T, userID int64, description string) *posts.Post {
	t.Helper()
	fh := storagetest.FileHeader(t, storagetest.File{
		Field: "image", Filename: "p.png", ContentType: "image/png", Data: storagetest.PNG,
	})
	p, err := a.posts.Create(context.Background(), userID, description, fh)
	require.NoError(t, err)
	return p
}

func (a *app) count(t *testing.T, q string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.GetContext(context.Background(), &n, q, args...))
	return n
}

func (a *app) user(t *testing.T, id int64) *users.User {
	t.Helper()
	u, err := a.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (a *app) getPost(t *testing.T, id int64) *posts.Post {
	t.Helper()
	p, err := a.posts.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestScenario_AliceAndBob(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	alice := a.register(t, "alice")
	bob := a.register(t, "bob")

	require.NoError(t, a.graph.Follow(ctx, alice.ID, bob.ID))
	p1 := a.post(t, bob.ID, "P1")

	home, err := a.feed.Home(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, home.Posts, 1)
	assert.Equal(t, p1.ID, home.Posts[0].ID)

	res, err := a.likes.Toggle(ctx, alice.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), a.getPost(t, p1.ID).LikesCount)

	res, err = a.likes.Toggle(ctx, alice.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), a.getPost(t, p1.ID).LikesCount)

	_, err = a.comments.Create(ctx, alice.ID, p1.ID, "nice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.getPost(t, p1.ID).CommentsCount)

	list, err := a.comments.ListByPost(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Username)
}

func TestFollow_ListsAndCounters(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")

	require.NoError(t, a.graph.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, a.graph.Follow(ctx, alice.ID, bob.ID))

	_, following, err := a.graph.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	_, followers, err := a.graph.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	assert.Equal(t, int64(1), a.user(t, alice.ID).FollowingCount)
	assert.Equal(t, int64(1), a.user(t, bob.ID).FollowersCount)

	require.NoError(t, a.graph.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, a.graph.Unfollow(ctx, alice.ID, bob.ID))
	assert.Zero(t, a.user(t, alice.ID).FollowingCount)
	assert.Zero(t, a.user(t, bob.ID).FollowersCount, "never negative")

	assert.ErrorIs(t, a.graph.Follow(ctx, alice.ID, 424242), users.ErrUserNotFound)
}

func TestLikes_ToggleParityAndUniqueness(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	alice := a.register(t, "alice")
	p := a.post(t, alice.ID, "")

	for n := 1; n <= 6; n++ {
		_, err := a.likes.Toggle(ctx, alice.ID, p.ID)
		require.NoError(t, err)
		want := int64(n % 2)
		assert.Equal(t, want, a.getPost(t, p.ID).LikesCount, "after %d toggles", n)
		assert.Equal(t, want, a.count(t, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, p.ID))
	}

	_, err := a.likes.Add(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	_, err = a.likes.Add(ctx, alice.ID, p.ID)
	assert.ErrorIs(t, err, likes.ErrAlreadyLiked)
	assert.Equal(t, int64(1), a.getPost(t, p.ID).LikesCount)

	all, err := a.likes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NoError(t, a.likes.Remove(ctx, alice.ID, all[0].ID))
	assert.Zero(t, a.getPost(t, p.ID).LikesCount)
	assert.ErrorIs(t, a.likes.Remove(ctx, alice.ID, all[0].ID), likes.ErrLikeNotFound)
}

func TestLikes_ConcurrentTogglesKeepCounterExact(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	owner := a.register(t, "owner")
	p := a.post(t, owner.ID, "")

	var likers []int64
	for i := 0; i < 8; i++ {
		likers = append(likers, a.register(t, fmt.Sprintf("liker%d", i)).ID)
	}

	var wg sync.WaitGroup
	for _, id := range likers {
		for k := 0; k < 3; k++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := a.likes.Toggle(ctx, id, p.ID)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	rows := a.count(t, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, p.ID)
	assert.Equal(t, int64(len(likers)), rows, "three toggles each leave every liker liking")
	assert.Equal(t, rows, a.getPost(t, p.ID).LikesCount)
}

func TestFeed_OnlySelfAndFollowed(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")
	carol := a.register(t, "carol")
	require.NoError(t, a.graph.Follow(ctx, alice.ID, bob.ID))

	own := a.post(t, alice.ID, "own")
	followed := a.post(t, bob.ID, "followed")
	a.post(t, carol.ID, "stranger")
	newest := a.post(t, bob.ID, "newest")

	home, err := a.feed.Home(ctx, alice.ID)
	require.NoError(t, err)

	var ids []int64
	for _, p := range home.Posts {
		ids = append(ids, p.ID)
		assert.NotEqual(t, carol.ID, p.UserID)
	}
	assert.Equal(t, []int64{newest.ID, followed.ID, own.ID}, ids)

	profile, err := a.feed.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.Equal(t, int64(2), profile.PostsCount)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Len(t, profile.Posts, 2)

	found, err := a.feed.Search(ctx, "CAR")
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, "carol", found.Users[0].Username)
}

func TestPosts_DeleteCascades(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")
	p := a.post(t, bob.ID, "doomed")
	assert.Equal(t, int64(1), a.user(t, bob.ID).PostsCount)

	_, err := a.likes.Add(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	_, err = a.comments.Create(ctx, alice.ID, p.ID, "rip")
	require.NoError(t, err)

	require.NoError(t, a.posts.Delete(ctx, bob.ID, p.ID))

	assert.Zero(t, a.count(t, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, p.ID))
	assert.Zero(t, a.count(t, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, p.ID))
	assert.Zero(t, a.user(t, bob.ID).PostsCount)

	_, err = a.posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}
