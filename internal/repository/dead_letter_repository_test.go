package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"talent_assessment_backend/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadLetterRepoForTest(t *testing.T) (*DeadLetterRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewDeadLetterRepository(rdb), mr
}

func deadLetterFixture(responseID uint) *model.EvaluationDeadLetter {
	return &model.EvaluationDeadLetter{
		ResponseID:    responseID,
		ParticipantID: 10,
		CompetencyID:  model.CompetencyDigitalTransformation,
		Reason:        "scoring timeout: deadline exceeded",
		FailedAt:      time.Now().Truncate(time.Second),
	}
}

func TestDeadLetterRecordAndFind(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, deadLetterFixture(31)))

	found, err := repo.FindForResponse(ctx, 31)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, uint(31), found.ResponseID)
	assert.Equal(t, "scoring timeout: deadline exceeded", found.Reason)
}

func TestDeadLetterFindMissingReturnsNil(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)

	found, err := repo.FindForResponse(context.Background(), 404)

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeadLetterClearForResponse(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, deadLetterFixture(31)))
	require.NoError(t, repo.ClearForResponse(ctx, 31))

	found, err := repo.FindForResponse(ctx, 31)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeadLetterListNewestFirst(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Record(ctx, deadLetterFixture(uint(i))))
	}

	letters, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 3)
	assert.Equal(t, uint(3), letters[0].ResponseID, "most recent failure first")
	assert.Equal(t, uint(1), letters[2].ResponseID)
}

func TestDeadLetterListHonorsLimit(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Record(ctx, deadLetterFixture(uint(i))))
	}

	letters, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, letters, 2)
}

func TestDeadLetterListIsCapped(t *testing.T) {
	repo, mr := deadLetterRepoForTest(t)
	ctx := context.Background()

	for i := 1; i <= deadLetterListCap+20; i++ {
		require.NoError(t, repo.Record(ctx, deadLetterFixture(uint(i))))
	}

	listLen, err := redis.NewClient(&redis.Options{Addr: mr.Addr()}).LLen(ctx, deadLetterListKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(deadLetterListCap), listLen)
}

func TestDeadLetterPerResponseKeyOverwrites(t *testing.T) {
	repo, _ := deadLetterRepoForTest(t)
	ctx := context.Background()

	first := deadLetterFixture(31)
	first.Reason = "provider returned status 500"
	require.NoError(t, repo.Record(ctx, first))

	second := deadLetterFixture(31)
	second.Reason = fmt.Sprintf("scoring timeout after %ds", 60)
	require.NoError(t, repo.Record(ctx, second))

	found, err := repo.FindForResponse(ctx, 31)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.Reason, found.Reason, "per-response key keeps only the latest failure")
}
