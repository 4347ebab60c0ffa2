package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okotkov/chatrelay/internal/domain"
	"github.com/okotkov/chatrelay/internal/repository/postgres"
	"github.com/okotkov/chatrelay/internal/testutil"
)

func TestRoomRepository_GetForUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRoomRepository(testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	older := testutil.NewRoomBuilder().
		WithParticipants(alice, bob).
		WithMessage(bob, "hello").
		WithMessage(alice, "hi back").
		WithUpdatedAt(time.Now().Add(-2 * time.Hour)).
		Build(t, testDB.DB)

	newer := testutil.NewRoomBuilder().
		WithParticipants(alice, bob).
		WithUpdatedAt(time.Now()).
		Build(t, testDB.DB)

	rooms, err := repo.GetForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, newer.ID, rooms[0].ID)
	assert.Equal(t, older.ID, rooms[1].ID)

	// Participants come with their users loaded.
	require.Len(t, rooms[1].Participants, 2)
	for _, p := range rooms[1].Participants {
		assert.NotEqual(t, uuid.Nil, p.User.ID)
	}

	// Messages newest-first with authors loaded.
	require.Len(t, rooms[1].Messages, 2)
	assert.Equal(t, "hi back", rooms[1].Messages[0].Content)
	assert.Equal(t, "hello", rooms[1].Messages[1].Content)
	assert.Equal(t, bob.ID, rooms[1].Messages[1].User.ID)
}

func TestRoomRepository_GetParticipants(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRoomRepository(testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	room := testutil.NewRoomBuilder().WithParticipants(alice, bob).Build(t, testDB.DB)

	participants, err := repo.GetParticipants(ctx, room.ID)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, ids)
}

func TestRoomRepository_TouchUpdatedAt(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRoomRepository(testDB.DB)
	ctx := context.Background()

	room := testutil.NewRoomBuilder().
		WithUpdatedAt(time.Now().Add(-time.Hour)).
		Build(t, testDB.DB)

	require.NoError(t, repo.TouchUpdatedAt(ctx, room.ID))

	var fresh domain.Room
	require.NoError(t, testDB.DB.First(&fresh, "id = ?", room.ID).Error)
	assert.True(t, fresh.UpdatedAt.After(room.UpdatedAt))
}
