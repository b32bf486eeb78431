package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	pub := NewPublisher(NewInMemoryStore())

	require.NoError(t, pub.Emit(ctx, Event{SubmissionID: "sub-1", Actor: "admin-1", Action: ActionViewed}))
	require.NoError(t, pub.Emit(ctx, Event{SubmissionID: "sub-1", Actor: "admin-1", Action: ActionStatusChanged, Notes: "approved"}))
	require.NoError(t, pub.Emit(ctx, Event{SubmissionID: "sub-2", Actor: "admin-2", Action: ActionViewed}))

	trail, err := pub.List(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, ActionViewed, trail[0].Action)
	assert.Equal(t, ActionStatusChanged, trail[1].Action)
	assert.Equal(t, "approved", trail[1].Notes)
	assert.False(t, trail[0].Timestamp.IsZero(), "missing timestamps are filled in")
}

func TestPublisherKeepsExplicitTimestamp(t *testing.T) {
	ctx := context.Background()
	pub := NewPublisher(NewInMemoryStore())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(ctx, Event{Timestamp: at, SubmissionID: "sub-1", Action: ActionDeleted}))
	trail, err := pub.List(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, at, trail[0].Timestamp)
}
