package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	require.NoError(t, idx.IndexBatch(context.Background(), []Document{
		{ID: "1", Title: "The Dark Knight", Genre: "Action"},
		{ID: "2", Title: "Knight and Day", Genre: "Comedy"},
		{ID: "3", Title: "Inception", Genre: "Science Fiction"},
	}))
	return idx
}

func TestSearchMatchesTitle(t *testing.T) {
	idx := newIndex(t)

	ids, err := idx.Search(context.Background(), "knight")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestSearchMatchesGenre(t *testing.T) {
	idx := newIndex(t)

	ids, err := idx.Search(context.Background(), "comedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids)
}

func TestSearchStemsTerms(t *testing.T) {
	idx := newIndex(t)

	ids, err := idx.Search(context.Background(), "Knights")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestSearchEmptyAndMiss(t *testing.T) {
	idx := newIndex(t)

	ids, err := idx.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = idx.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteRemovesFromResults(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Delete(ctx, "1"))
	ids, err := idx.Search(ctx, "knight")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids)
}
