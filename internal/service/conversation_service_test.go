package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/poster-threads/internal/model"
)

func TestConversationService_AppendDoesNotBumpThread(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	ctx := context.Background()

	created, err := env.threads.Create(ctx, "u1", "Launch Event", "")
	require.NoError(t, err)

	conv, err := env.conversations.Append(ctx, "u1", created.Thread.ID, "  modern tech conference poster ")
	require.NoError(t, err)
	assert.Equal(t, "modern tech conference poster", conv.Message)
	assert.Nil(t, conv.Response)

	thread, err := env.threadRepo.GetOwned(ctx, "u1", created.Thread.ID)
	require.NoError(t, err)
	assert.True(t, thread.UpdatedAt.Equal(created.Thread.UpdatedAt))
}

func TestConversationService_AppendChecks(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	ctx := context.Background()

	created, err := env.threads.Create(ctx, "owner", "t", "")
	require.NoError(t, err)

	_, err = env.conversations.Append(ctx, "intruder", created.Thread.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.conversations.Append(ctx, "owner", "missing-thread", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.conversations.Append(ctx, "owner", created.Thread.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConversationService_RecordResponseOverwrites(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	ctx := context.Background()

	created, err := env.threads.Create(ctx, "u1", "t", "")
	require.NoError(t, err)
	conv, err := env.conversations.Append(ctx, "u1", created.Thread.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, env.conversations.RecordResponse(ctx, conv.ID, model.TextPayload("first")))
	require.NoError(t, env.conversations.RecordResponse(ctx, conv.ID, model.TextPayload("second")))

	detail, err := env.threads.Get(ctx, "u1", created.Thread.ID)
	require.NoError(t, err)
	require.Len(t, detail.Conversations, 1)
	require.NotNil(t, detail.Conversations[0].Response)
	assert.Equal(t, "second", detail.Conversations[0].Response.Text)

	assert.ErrorIs(t, env.conversations.RecordResponse(ctx, "missing", model.TextPayload("x")), ErrNotFound)
}

func TestConversationService_History(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})
	ctx := context.Background()

	a, err := env.threads.Create(ctx, "u1", "a", "")
	require.NoError(t, err)
	b, err := env.threads.Create(ctx, "u1", "b", "")
	require.NoError(t, err)
	for _, step := range []struct{ thread, msg string }{
		{a.Thread.ID, "one"}, {b.Thread.ID, "two"}, {a.Thread.ID, "three"},
	} {
		_, err := env.conversations.Append(ctx, "u1", step.thread, step.msg)
		require.NoError(t, err)
	}

	history, err := env.conversations.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "three", history[0].Message)
	assert.Equal(t, "one", history[2].Message)

	limited, err := env.conversations.History(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	other, err := env.conversations.History(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConversationService_Unavailable(t *testing.T) {
	env := newUnavailableEnv(&fakeGenerator{})
	ctx := context.Background()

	_, err := env.conversations.Append(ctx, "u1", "t", "hi")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	_, err = env.conversations.History(ctx, "u1", 0)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, env.conversations.RecordResponse(ctx, "c", model.TextPayload("x")), ErrServiceUnavailable)
}
