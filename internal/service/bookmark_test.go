package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/db"
)

func TestBookmarkCreate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	carol := env.seedUser(t, "carol")

	cat, err := env.category.Create(alice, "research", false)
	require.NoError(t, err)
	require.NoError(t, env.category.AddCollaborator(alice, cat.ID, bob.Email, db.RoleReader))

	t.Run("url is required", func(t *testing.T) {
		_, err := env.bookmark.Create(alice, "", nil, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
	})

	t.Run("uncategorized create", func(t *testing.T) {
		b, err := env.bookmark.Create(alice, "https://go.dev", nil, nil)
		require.NoError(t, err)
		assert.Nil(t, b.CategoryID)
	})

	t.Run("reader may place a bookmark in the category", func(t *testing.T) {
		b, err := env.bookmark.Create(bob, "https://go.dev/blog", nil, &cat.ID)
		require.NoError(t, err)
		require.NotNil(t, b.CategoryID)
		assert.Equal(t, cat.ID, *b.CategoryID)
	})

	t.Run("outsider gets not found for an inaccessible category", func(t *testing.T) {
		_, err := env.bookmark.Create(carol, "https://go.dev", nil, &cat.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("absent category is not found", func(t *testing.T) {
		missing := uint64(9999)
		_, err := env.bookmark.Create(alice, "https://go.dev", nil, &missing)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("anyone may attach to a public category", func(t *testing.T) {
		pub, err := env.category.Create(alice, "links", true)
		require.NoError(t, err)

		_, err = env.bookmark.Create(carol, "https://go.dev", nil, &pub.ID)
		assert.NoError(t, err)
	})
}

func TestBookmarkOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	cat, err := env.category.Create(alice, "research", false)
	require.NoError(t, err)
	require.NoError(t, env.category.AddCollaborator(alice, cat.ID, bob.Email, db.RoleEditor))

	b, err := env.bookmark.Create(alice, "https://go.dev", nil, &cat.ID)
	require.NoError(t, err)

	t.Run("category editor cannot touch another user's bookmark", func(t *testing.T) {
		url := "https://example.com"
		_, err := env.bookmark.Update(bob, b.ID, &url, nil, false, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

		err = env.bookmark.Delete(bob, b.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("creator updates and deletes", func(t *testing.T) {
		body := "notes"
		got, err := env.bookmark.Update(alice, b.ID, nil, &body, false, nil)
		require.NoError(t, err)
		require.NotNil(t, got.Body)
		assert.Equal(t, "notes", *got.Body)

		assert.NoError(t, env.bookmark.Delete(alice, b.ID))

		_, err = env.bookmark.Get(alice, b.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestBookmarkGetCountsVisits(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")

	b, err := env.bookmark.Create(alice, "https://go.dev", nil, nil)
	require.NoError(t, err)

	got, err := env.bookmark.Get(alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Visits)

	got, err = env.bookmark.Get(alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Visits)
}

func TestBookmarkUpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	mine, err := env.category.Create(alice, "mine", false)
	require.NoError(t, err)
	theirs, err := env.category.Create(bob, "theirs", false)
	require.NoError(t, err)

	b, err := env.bookmark.Create(alice, "https://go.dev", nil, &mine.ID)
	require.NoError(t, err)

	t.Run("moving into an inaccessible category fails", func(t *testing.T) {
		_, err := env.bookmark.Update(alice, b.ID, nil, nil, true, &theirs.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("detaching clears the category", func(t *testing.T) {
		got, err := env.bookmark.Update(alice, b.ID, nil, nil, true, nil)
		require.NoError(t, err)

		stored := db.Bookmark{}
		require.NoError(t, env.conn.First(&stored, got.ID).Error)
		assert.Nil(t, stored.CategoryID)
	})
}

func TestBookmarkList(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	body := "compiler notes"
	_, err := env.bookmark.Create(alice, "https://go.dev", &body, nil)
	require.NoError(t, err)
	_, err = env.bookmark.Create(alice, "https://example.com", nil, nil)
	require.NoError(t, err)
	_, err = env.bookmark.Create(bob, "https://go.dev/blog", nil, nil)
	require.NoError(t, err)

	t.Run("only the caller's bookmarks", func(t *testing.T) {
		got, err := env.bookmark.List(alice, "")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("search matches url and body case-insensitively", func(t *testing.T) {
		got, err := env.bookmark.List(alice, "GO.DEV")
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = env.bookmark.List(alice, "Compiler")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestBookmarkPublicList(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")

	pub, err := env.category.Create(alice, "links", true)
	require.NoError(t, err)
	priv, err := env.category.Create(alice, "secret", false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.bookmark.Create(alice, fmt.Sprintf("https://go.dev/%d", i), nil, &pub.ID)
		require.NoError(t, err)
	}
	_, err = env.bookmark.Create(alice, "https://hidden.example.com", nil, &priv.ID)
	require.NoError(t, err)
	_, err = env.bookmark.Create(alice, "https://loose.example.com", nil, nil)
	require.NoError(t, err)

	t.Run("only bookmarks in public categories", func(t *testing.T) {
		items, total, err := env.bookmark.PublicList(0, 0, "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 3)
		assert.Equal(t, "links", items[0].CategoryName)
	})

	t.Run("limit above the cap is clamped", func(t *testing.T) {
		_, total, err := env.bookmark.PublicList(200, 0, "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("offset beyond the total yields an empty page with correct total", func(t *testing.T) {
		items, total, err := env.bookmark.PublicList(10, 50, "", nil)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, int64(3), total)
	})

	t.Run("pagination walks the set", func(t *testing.T) {
		first, _, err := env.bookmark.PublicList(2, 0, "", nil)
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, _, err := env.bookmark.PublicList(2, 2, "", nil)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.NotEqual(t, first[0].ID, second[0].ID)
	})

	t.Run("search filter", func(t *testing.T) {
		_, total, err := env.bookmark.PublicList(0, 0, "go.dev/1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("category filter", func(t *testing.T) {
		_, total, err := env.bookmark.PublicList(0, 0, "", &priv.ID)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
