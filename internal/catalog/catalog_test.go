package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishuflix/internal/catalog"
)

func item(id int, title string, genres ...string) catalog.Item {
	if len(genres) == 0 {
		genres = []string{"Drama"}
	}
	return catalog.Item{ID: id, Title: title, Kind: catalog.KindFilm, Genres: genres, Rating: 8}
}

func TestEmbedded_ParsesAndCollapsesDuplicates(t *testing.T) {
	categories, err := catalog.Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	assert.Equal(t, catalog.TrendingNow, categories[0].Title)

	idx := catalog.NewIndex(categories)

	seen := make(map[int]bool)
	for _, it := range idx.Items() {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}

	// Mirzapur appears in Continue Watching and again, flagged new, in the Top 10.
	mirzapur, ok := idx.Lookup(21)
	require.True(t, ok)
	assert.Equal(t, "Mirzapur", mirzapur.Title)
	assert.True(t, mirzapur.New, "last-seen data wins")
}

func TestNewIndex_FirstPositionLastData(t *testing.T) {
	idx := catalog.NewIndex([]catalog.Category{
		{Title: "A", Items: []catalog.Item{item(1, "One"), item(2, "Two")}},
		{Title: "B", Items: []catalog.Item{item(3, "Three"), item(1, "One (Remastered)")}},
	})

	items := idx.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "One (Remastered)", items[0].Title)

	// category entries resolve to the canonical item
	a, ok := idx.Category("A")
	require.True(t, ok)
	assert.Equal(t, "One (Remastered)", a.Items[0].Title)
}

func TestIndex_LookupAndFilter(t *testing.T) {
	idx := catalog.NewIndex([]catalog.Category{
		{Title: "A", Items: []catalog.Item{item(1, "One"), item(2, "Two"), item(3, "Three")}},
	})

	_, ok := idx.Lookup(42)
	assert.False(t, ok)

	odd := idx.Filter(func(i catalog.Item) bool { return i.ID%2 == 1 })
	require.Len(t, odd, 2)
	assert.Equal(t, "Three", odd[1].Title)
}

func TestIndex_Similar(t *testing.T) {
	idx := catalog.NewIndex([]catalog.Category{
		{Title: "A", Items: []catalog.Item{
			item(1, "Heist", "Crime", "Thriller"),
			item(2, "Cartoon", "Animation"),
			item(3, "Noir", "Crime"),
			item(4, "Chase", "Thriller"),
		}},
	})

	similar := idx.Similar(1, 12)
	require.Len(t, similar, 2)
	assert.Equal(t, 3, similar[0].ID)
	assert.Equal(t, 4, similar[1].ID)

	assert.Len(t, idx.Similar(1, 1), 1)
	assert.Nil(t, idx.Similar(99, 12))
}

func TestCategory_Flags(t *testing.T) {
	assert.True(t, catalog.Category{Title: catalog.ContinueWatching}.Synthetic())
	assert.True(t, catalog.Category{Title: catalog.MyList}.Synthetic())
	assert.False(t, catalog.Category{Title: catalog.TrendingNow}.Synthetic())
	assert.True(t, catalog.Category{Title: catalog.TopTenMovies}.Ranked())
	assert.False(t, catalog.Category{Title: catalog.TopPicks}.Ranked())
}

func TestParse_RejectsBadItems(t *testing.T) {
	tests := map[string]string{
		"no genres":   "categories:\n  - title: X\n    items:\n      - {id: 1, title: A, kind: film, genres: [], rating: 5}\n",
		"bad kind":    "categories:\n  - title: X\n    items:\n      - {id: 1, title: A, kind: podcast, genres: [Drama], rating: 5}\n",
		"bad rating":  "categories:\n  - title: X\n    items:\n      - {id: 1, title: A, kind: film, genres: [Drama], rating: 11}\n",
		"zero id":     "categories:\n  - title: X\n    items:\n      - {id: 0, title: A, kind: film, genres: [Drama], rating: 5}\n",
		"no title":    "categories:\n  - items: []\n",
		"not yaml":    "categories: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "categories:\n  - title: Trending Now\n    items:\n      - {id: 7, title: Seven, kind: series, genres: [Crime], rating: 8.6}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	categories, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, catalog.KindSeries, categories[0].Items[0].Kind)
}
