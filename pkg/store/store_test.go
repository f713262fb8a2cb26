package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRelease(name, version string) *release.Release {
	return &release.Release{
		Name:    name,
		Version: version,
		Date:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Assets:  []string{"https://cdn.example.com/" + name + "/" + version + "/f"},
	}
}

// testStore runs the behaviour every release.Store has to provide
func testStore(t *testing.T, newStore func(t *testing.T) release.Store) {
	t.Helper()

	t.Run("insert and get", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		id, err := st.Insert(ctx, testRelease("a.app", "1"))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		r, err := st.Get(ctx, "a.app", "1")
		require.NoError(t, err)
		assert.Equal(t, "a.app", r.Name)
		assert.Equal(t, "1", r.Version)
		assert.True(t, r.Date.Equal(testRelease("a.app", "1").Date))
		assert.Equal(t, []string{"https://cdn.example.com/a.app/1/f"}, r.Assets)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := newStore(t).Get(context.Background(), "a.app", "1")
		assert.ErrorIs(t, err, release.ErrNotFound)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		_, err := st.Insert(ctx, testRelease("a.app", "1"))
		require.NoError(t, err)
		_, err = st.Insert(ctx, testRelease("a.app", "1"))
		assert.ErrorIs(t, err, release.ErrConflict)

		count, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("list sorted and paged", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		for _, r := range []*release.Release{
			testRelease("b.app", "1"),
			testRelease("a.app", "1"),
			testRelease("a.app", "3"),
			testRelease("a.app", "2"),
		} {
			_, err := st.Insert(ctx, r)
			require.NoError(t, err)
		}

		all, err := st.List(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, all, 4)
		var got []string
		for _, r := range all {
			got = append(got, r.Name+"@"+r.Version)
		}
		assert.Equal(t, []string{"a.app@3", "a.app@2", "a.app@1", "b.app@1"}, got)

		page, err := st.List(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "1", page[0].Version)

		page, err = st.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, page)

		count, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("names and versions", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		for _, r := range []*release.Release{
			testRelease("a.app", "1"),
			testRelease("b.app", "1"),
			testRelease("a.app", "2"),
		} {
			_, err := st.Insert(ctx, r)
			require.NoError(t, err)
		}

		names, err := st.Names(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.app", "b.app"}, names)

		versions, err := st.Versions(ctx, "a.app")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2"}, versions)

		versions, err = st.Versions(ctx, "c.app")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		_, err := st.Insert(ctx, testRelease("a.app", "1"))
		require.NoError(t, err)

		deleted, err := st.Delete(ctx, "a.app", "1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		deleted, err = st.Delete(ctx, "a.app", "1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)

		_, err = st.Get(ctx, "a.app", "1")
		assert.ErrorIs(t, err, release.ErrNotFound)

		// the pair can be published again
		_, err = st.Insert(ctx, testRelease("a.app", "1"))
		require.NoError(t, err)
	})
}
