package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, Event) error {
	p.calls++
	return errors.New("broker down")
}

func TestNew(t *testing.T) {
	a := New(TypePostLiked, 1, 2)
	b := New(TypePostLiked, 1, 2)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, TypePostLiked, a.Type)
	assert.False(t, a.SelfInflicted())
	assert.True(t, New(TypeCommentCreated, 3, 3).SelfInflicted())
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	Emit(context.Background(), p, New(TypeUserFollowed, 1, 2))
	assert.Equal(t, 1, p.calls)

	Emit(context.Background(), nil, New(TypeUserFollowed, 1, 2))
	Emit(context.Background(), NopPublisher{}, New(TypeUserFollowed, 1, 2))
}
