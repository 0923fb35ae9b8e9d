package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitools/revstats/internal/batch"
	"github.com/ankitools/revstats/internal/dataset"
	"github.com/ankitools/revstats/internal/statistics"
	"github.com/ankitools/revstats/internal/testutil"
)

func readResultLines(t *testing.T, path string) []statistics.UserStatistics {
	t.Helper()
	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	var results []statistics.UserStatistics
	for _, line := range strings.Split(strings.TrimSpace(string(contents)), "\n") {
		if line == "" {
			continue
		}
		var result statistics.UserStatistics
		require.NoError(t, json.Unmarshal([]byte(line), &result))
		results = append(results, result)
	}
	return results
}

func TestProcessor_Process(t *testing.T) {
	setup := func(t *testing.T) (*batch.Processor, *bytes.Buffer) {
		t.Helper()
		db := testutil.OpenStore(t)
		testutil.SeedUser(t, db, 1, []int64{100}, 2)
		testutil.SeedUser(t, db, 2, []int64{200, 201}, 5)
		testutil.SeedUser(t, db, 3, []int64{300}, 1)
		// user 7 exists in cards and decks but has no reviews
		testutil.InsertDeck(t, db, 7, 1, "Default")
		testutil.InsertCard(t, db, 7, 700, 7000, 1)

		var console bytes.Buffer
		processor := batch.NewProcessor(
			dataset.NewLoader(dataset.NewDBRepository(db)),
			batch.WithConsole(&console),
			batch.WithProgress(io.Discard),
		)
		return processor, &console
	}

	t.Run("writes one JSON line per user in input order", func(t *testing.T) {
		processor, console := setup(t)
		output := filepath.Join(t.TempDir(), "results.jsonl")

		results, err := processor.Process(context.Background(), []int64{1, 2, 3}, output, 4)
		require.NoError(t, err)
		require.Len(t, results, 3)

		fromFile := readResultLines(t, output)
		assert.Equal(t, results, fromFile)
		assert.EqualValues(t, 1, fromFile[0].UserID)
		assert.EqualValues(t, 2, fromFile[1].UserID)
		assert.EqualValues(t, 3, fromFile[2].UserID)

		assert.Equal(t, 10, fromFile[1].RevlogsCount)
		assert.Equal(t, 2, fromFile[1].CardCount)
		assert.InDelta(t, 5.0, fromFile[1].AvgReviewCountPerCard, 0.001)

		assert.Contains(t, console.String(), "Results saved to "+output)
	})

	t.Run("skips users without data", func(t *testing.T) {
		processor, console := setup(t)
		output := filepath.Join(t.TempDir(), "results.jsonl")

		results, err := processor.Process(context.Background(), []int64{1, 7, 99, 3}, output, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.EqualValues(t, 1, results[0].UserID)
		assert.EqualValues(t, 3, results[1].UserID)

		assert.Contains(t, console.String(), "no data found for user 7")
		assert.Contains(t, console.String(), "no data found for user 99")
	})

	t.Run("shuffled input reorders rows without changing them", func(t *testing.T) {
		processor, _ := setup(t)
		dir := t.TempDir()
		first := filepath.Join(dir, "first.jsonl")
		second := filepath.Join(dir, "second.jsonl")

		_, err := processor.Process(context.Background(), []int64{1, 2, 3}, first, 4)
		require.NoError(t, err)
		_, err = processor.Process(context.Background(), []int64{3, 1, 2}, second, 4)
		require.NoError(t, err)

		firstResults := readResultLines(t, first)
		secondResults := readResultLines(t, second)
		require.Len(t, secondResults, 3)
		assert.Equal(t, firstResults[2], secondResults[0])
		assert.Equal(t, firstResults[0], secondResults[1])
		assert.Equal(t, firstResults[1], secondResults[2])
	})

	t.Run("reruns are byte identical", func(t *testing.T) {
		processor, _ := setup(t)
		dir := t.TempDir()
		first := filepath.Join(dir, "first.jsonl")
		second := filepath.Join(dir, "second.jsonl")

		_, err := processor.Process(context.Background(), []int64{1, 2, 3, 7}, first, 3)
		require.NoError(t, err)
		_, err = processor.Process(context.Background(), []int64{1, 2, 3, 7}, second, 3)
		require.NoError(t, err)

		firstContents, err := os.ReadFile(first)
		require.NoError(t, err)
		secondContents, err := os.ReadFile(second)
		require.NoError(t, err)
		assert.Equal(t, firstContents, secondContents)
	})

	t.Run("creates the output directory", func(t *testing.T) {
		processor, _ := setup(t)
		output := filepath.Join(t.TempDir(), "nested", "dir", "results.jsonl")

		_, err := processor.Process(context.Background(), []int64{1}, output, 1)
		require.NoError(t, err)
		assert.FileExists(t, output)
	})

	t.Run("produces an empty file when every user is skipped", func(t *testing.T) {
		processor, console := setup(t)
		output := filepath.Join(t.TempDir(), "results.jsonl")

		results, err := processor.Process(context.Background(), []int64{50, 51}, output, 2)
		require.NoError(t, err)
		assert.Empty(t, results)

		contents, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Empty(t, contents)
		assert.Contains(t, console.String(), "Results saved to "+output)
	})

	t.Run("overwrites a previous output file", func(t *testing.T) {
		processor, _ := setup(t)
		output := filepath.Join(t.TempDir(), "results.jsonl")
		require.NoError(t, os.WriteFile(output, []byte("stale contents\n"), 0644))

		_, err := processor.Process(context.Background(), []int64{1}, output, 1)
		require.NoError(t, err)

		fromFile := readResultLines(t, output)
		require.Len(t, fromFile, 1)
		assert.EqualValues(t, 1, fromFile[0].UserID)
	})

	t.Run("retention rate serializes as null when undefined", func(t *testing.T) {
		db := testutil.OpenStore(t)
		testutil.InsertDeck(t, db, 5, 1, "Default")
		testutil.InsertCard(t, db, 5, 100, 1000, 1)
		testutil.InsertReview(t, db, 5, 100, 10, dataset.StateLearning, dataset.RatingGood)

		processor := batch.NewProcessor(
			dataset.NewLoader(dataset.NewDBRepository(db)),
			batch.WithConsole(io.Discard),
			batch.WithProgress(io.Discard),
		)
		output := filepath.Join(t.TempDir(), "results.jsonl")
		_, err := processor.Process(context.Background(), []int64{5}, output, 1)
		require.NoError(t, err)

		contents, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(contents), `"retention_rate":null`)
	})
}
