package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/storage"
	"github.com/callqa/slangcheck/internal/testutil"
)

func TestSaveAndGetTranscription(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	err := store.SaveTranscriptions(ctx, []model.Transcription{
		{CallID: 101, Transcript: "AGENT: Hello.", HumanGrade: "Yes"},
	})
	require.NoError(t, err)

	rec, err := store.GetTranscription(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), rec.CallID)
	assert.Equal(t, "AGENT: Hello.", rec.Transcript)
	assert.Equal(t, "Yes", rec.HumanGrade)
	assert.False(t, rec.ImportedAt.IsZero())
}

func TestSaveTranscriptionsUpsert(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTranscriptions(ctx, []model.Transcription{
		{CallID: 7, Transcript: "AGENT: first pass", HumanGrade: "No"},
	}))
	require.NoError(t, store.SaveTranscriptions(ctx, []model.Transcription{
		{CallID: 7, Transcript: "AGENT: corrected", HumanGrade: "Yes"},
	}))

	rec, err := store.GetTranscription(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "AGENT: corrected", rec.Transcript)
	assert.Equal(t, "Yes", rec.HumanGrade)

	total, err := store.TotalTranscriptionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSaveTranscriptionsValidation(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	err := store.SaveTranscriptions(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrNilParameter)

	err = store.SaveTranscriptions(ctx, []model.Transcription{})
	assert.ErrorIs(t, err, storage.ErrEmptySlice)

	err = store.SaveTranscriptions(ctx, []model.Transcription{{Transcript: "AGENT: no id"}})
	assert.ErrorIs(t, err, storage.ErrInvalidTranscription)

	err = store.SaveTranscriptions(ctx, []model.Transcription{
		{CallID: 4, Transcript: "AGENT: once"},
		{CallID: 4, Transcript: "AGENT: twice"},
	})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestGetTranscriptionNotFound(t *testing.T) {
	store := testutil.SetupTestDB(t)

	_, err := store.GetTranscription(context.Background(), 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListTranscriptions(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.SeedTranscriptions(t, store, map[int64]string{
		3: "AGENT: three",
		1: "AGENT: one",
		2: "AGENT: two",
	})

	all, err := store.ListTranscriptions(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].CallID)
	assert.Equal(t, int64(3), all[2].CallID)

	page, err := store.ListTranscriptions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].CallID)
}

func TestListUnprocessed(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.SeedTranscriptions(t, store, map[int64]string{
		1: "AGENT: one",
		2: "AGENT: two",
		3: "AGENT: three",
	})

	require.NoError(t, store.SaveEvaluation(ctx, passingEvaluation(1, 2)))

	unprocessed, err := store.ListUnprocessed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, unprocessed, 2)
	assert.Equal(t, int64(1), unprocessed[0].CallID)
	assert.Equal(t, int64(3), unprocessed[1].CallID)

	limited, err := store.ListUnprocessed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(1), limited[0].CallID)

	count, err := store.UnprocessedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
