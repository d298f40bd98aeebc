package project

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaydeck/replaydeck/internal/store"
	"github.com/replaydeck/replaydeck/internal/store/fake"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("GeneratesKeyAndAttachesToUser", func(t *testing.T) {
		docs := fake.NewDocStore()
		svc := NewService(docs)

		proj, err := svc.Create(ctx, "My App", "user-1")
		require.NoError(t, err)
		assert.NotEmpty(t, proj.ID)
		assert.Equal(t, "My App", proj.Name)
		assert.Equal(t, "user-1", proj.CreatedBy)
		assert.True(t, strings.HasPrefix(proj.PublicAPIKey, "pk_"))
		assert.Greater(t, len(proj.PublicAPIKey), 30)

		user, err := docs.GetUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Contains(t, user.Projects, proj.ID)
	})

	t.Run("KeysAreUnique", func(t *testing.T) {
		docs := fake.NewDocStore()
		svc := NewService(docs)

		a, err := svc.Create(ctx, "A", "user-1")
		require.NoError(t, err)
		b, err := svc.Create(ctx, "B", "user-1")
		require.NoError(t, err)
		assert.NotEqual(t, a.PublicAPIKey, b.PublicAPIKey)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		docs := fake.NewDocStore()
		docs.Err = errors.New("backend down")
		svc := NewService(docs)

		_, err := svc.Create(ctx, "My App", "user-1")
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	docs := fake.NewDocStore()
	svc := NewService(docs)

	created, err := svc.Create(ctx, "My App", "user-1")
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		proj, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.PublicAPIKey, proj.PublicAPIKey)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsOnlyOwnProjects", func(t *testing.T) {
		docs := fake.NewDocStore()
		svc := NewService(docs)

		mine, err := svc.Create(ctx, "Mine", "user-1")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "Theirs", "user-2")
		require.NoError(t, err)

		projects, err := svc.ListForUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, mine.ID, projects[0].ID)
	})

	t.Run("UnknownUserIsEmpty", func(t *testing.T) {
		svc := NewService(fake.NewDocStore())
		projects, err := svc.ListForUser(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("DanglingProjectRefSkipped", func(t *testing.T) {
		docs := fake.NewDocStore()
		svc := NewService(docs)
		require.NoError(t, docs.SaveUser(ctx, &store.User{ID: "user-1", Projects: []string{"gone"}}))

		projects, err := svc.ListForUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, projects)
	})
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	docs := fake.NewDocStore()
	svc := NewService(docs)

	created, err := svc.Create(ctx, "My App", "user-1")
	require.NoError(t, err)

	t.Run("ValidKey", func(t *testing.T) {
		proj, err := svc.Authorize(ctx, created.PublicAPIKey)
		require.NoError(t, err)
		assert.Equal(t, created.ID, proj.ID)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := svc.Authorize(ctx, "pk_does_not_exist")
		require.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, err := svc.Authorize(ctx, "")
		require.ErrorIs(t, err, ErrInvalidAPIKey)
	})
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	docs := fake.NewDocStore()
	svc := NewService(docs)

	t.Run("Persists", func(t *testing.T) {
		err := svc.SaveUser(ctx, &store.User{ID: "user-1", Email: "a@example.com"})
		require.NoError(t, err)

		user, err := docs.GetUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("RequiresID", func(t *testing.T) {
		require.Error(t, svc.SaveUser(ctx, &store.User{}))
	})
}
