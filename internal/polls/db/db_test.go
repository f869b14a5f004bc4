package db_test

import (
	"context"
	"testing"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/models"
	"campus-events/internal/polls/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoll(id string, closesAt time.Time, active bool) *models.Poll {
	return &models.Poll{
		ID:        id,
		Question:  "Which day for the hackathon?",
		Active:    active,
		ClosesAt:  closesAt,
		CreatedAt: time.Now().UTC(),
		Options: []*models.PollOption{
			{ID: id + "-a", PollID: id, Label: "Saturday", Position: 0},
			{ID: id + "-b", PollID: id, Label: "Sunday", Position: 1},
		},
	}
}

func TestPollTallies(t *testing.T) {
	pollDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("p1", time.Time{}, true)))

	require.NoError(t, pollDB.CreateVote(ctx, &models.PollVote{PollID: "p1", UserID: "u1", OptionID: "p1-b", CreatedAt: time.Now().UTC()}))
	require.NoError(t, pollDB.CreateVote(ctx, &models.PollVote{PollID: "p1", UserID: "u2", OptionID: "p1-b", CreatedAt: time.Now().UTC()}))

	err := pollDB.CreateVote(ctx, &models.PollVote{PollID: "p1", UserID: "u1", OptionID: "p1-a", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	poll, err := pollDB.GetPollByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, 0, poll.Options[0].Votes)
	assert.Equal(t, 2, poll.Options[1].Votes)

	vote, err := pollDB.GetVote(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "p1-b", vote.OptionID)
}

func TestListPolls_ActiveOnly(t *testing.T) {
	pollDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("open", now.Add(time.Hour), true)))
	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("closed", now.Add(-time.Hour), true)))
	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("inactive", time.Time{}, false)))

	active, err := pollDB.ListPolls(ctx, true, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "open", active[0].ID)
	assert.Len(t, active[0].Options, 2)

	all, err := pollDB.ListPolls(ctx, false, now)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeletePoll(t *testing.T) {
	pollDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("p1", time.Time{}, true)))
	require.NoError(t, pollDB.CreateVote(ctx, &models.PollVote{PollID: "p1", UserID: "u1", OptionID: "p1-a", CreatedAt: time.Now().UTC()}))

	require.NoError(t, pollDB.DeletePoll(ctx, "p1"))
	_, err := pollDB.GetPollByID(ctx, "p1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, pollDB.DeletePoll(ctx, "p1"), apperror.ErrNotFound)

	_, err = pollDB.GetVote(ctx, "p1", "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreatePoll_KeepsInactive(t *testing.T) {
	pollDB := &db.DB{Bun: dbtest.NewDB(t)}
	ctx := context.Background()
	require.NoError(t, pollDB.CreatePoll(ctx, newPoll("draft", time.Time{}, false)))

	poll, err := pollDB.GetPollByID(ctx, "draft")
	require.NoError(t, err)
	assert.False(t, poll.Active)
}
