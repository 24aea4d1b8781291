// Package feed composes the read-only pages: the home feed, profiles and
// user search.
package feed

import (
	"context"

	"instaclone/internal/posts"
	"instaclone/internal/social"
	"instaclone/internal/users"
)

// Home is the viewer's feed: their own posts and those of everyone they
// follow, newest first.
type Home struct {
	Viewer users.Summary `json:"viewer"`
	Posts  []posts.Post  `json:"posts"`
}

// Profile is a user's page as seen by the viewer. The counters are the
// cached columns on the user row.
type Profile struct {
	User           *users.User  `json:"user"`
	Posts          []posts.Post `json:"posts"`
	IsOwnProfile   bool         `json:"is_own_profile"`
	IsFollowing    bool         `json:"is_following"`
	PostsCount     int64        `json:"posts_count"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
}

// SearchResult lists users matching a query
type SearchResult struct {
	Query string          `json:"query"`
	Users []users.Summary `json:"users"`
}

type Service interface {
	Home(ctx context.Context, viewerID int64) (*Home, error)
	Profile(ctx context.Context, viewerID, userID int64) (*Profile, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
}

type service struct {
	users users.Service
	posts posts.Service
	graph social.Service
}

func NewService(us users.Service, ps posts.Service, graph social.Service) Service {
	return &service{users: us, posts: ps, graph: graph}
}

func (s *service) Home(ctx context.Context, viewerID int64) (*Home, error) {
	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	list, err := s.posts.Feed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.posts.MarkLiked(ctx, viewerID, list); err != nil {
		return nil, err
	}

	return &Home{Viewer: viewer.Summary(), Posts: list}, nil
}

func (s *service) Profile(ctx context.Context, viewerID, userID int64) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.posts.MarkLiked(ctx, viewerID, list); err != nil {
		return nil, err
	}

	following, err := s.graph.IsFollowing(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           u,
		Posts:          list,
		IsOwnProfile:   viewerID == userID,
		IsFollowing:    following,
		PostsCount:     u.PostsCount,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
	}, nil
}

func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	found, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	res := &SearchResult{Query: query, Users: make([]users.Summary, 0, len(found))}
	for i := range found {
		res.Users = append(res.Users, found[i].Summary())
	}
	return res, nil
}
