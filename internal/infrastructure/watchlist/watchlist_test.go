package watchlist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cs2arb/internal/infrastructure/watchlist"
)

func TestWatchlistOperations(t *testing.T) {
	rq := require.New(t)

	w := watchlist.New(filepath.Join(t.TempDir(), "watchlist.json"), "a", "b", "a", " ")
	rq.Equal([]string{"a", "b"}, w.List())

	rq.True(w.Add("c"))
	rq.False(w.Add("a"))
	rq.False(w.Add("  "))
	rq.True(w.Has("c"))

	rq.True(w.Remove("a"))
	rq.False(w.Remove("a"))
	rq.Equal([]string{"b", "c"}, w.List())

	list := w.List()
	list[0] = "mutated"
	rq.Equal("b", w.List()[0])

	w.Clear()
	rq.Zero(w.Len())
}

func TestWatchlistSaveAndLoad(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "data", "watchlist.json")

	w := watchlist.New(path, "AK-47 | Redline (Field-Tested)", "★ Karambit | Fade (Factory New)")
	rq.NoError(w.Save(ctx))

	data, err := os.ReadFile(path)
	rq.NoError(err)
	rq.Contains(string(data), `"items"`)

	loaded, err := watchlist.Load(ctx, path)
	rq.NoError(err)
	rq.Equal(w.List(), loaded.List())
}

func TestLoadOrDefault(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	testCases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name: "Missing file",
			want: watchlist.DefaultItems,
		},
		{
			name:    "Broken file",
			content: `{"items": [`,
			want:    watchlist.DefaultItems,
		},
		{
			name:    "Stored list",
			content: `{"items": ["x"]}`,
			want:    []string{"x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			if tc.content != "" {
				rq.NoError(os.WriteFile(path, []byte(tc.content), 0o600))
			}

			rq.Equal(tc.want, watchlist.LoadOrDefault(ctx, path).List())
		})
	}

	missing, err := watchlist.Load(ctx, filepath.Join(dir, "absent.json"))
	rq.NoError(err)
	rq.Zero(missing.Len())
}
