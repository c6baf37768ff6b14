package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cms-admin/internal/domain"
)

func TestMemoryCollection(t *testing.T) {
	ctx := context.Background()
	posts := NewMemoryCollection[domain.Post]("posts")

	for _, slug := range []string{"a", "b", "c"} {
		status := domain.StatusDraft
		if slug != "b" {
			status = domain.StatusPublished
		}
		require.NoError(t, posts.Insert(ctx, &domain.Post{Slug: slug, Status: status}))
	}

	all, err := posts.Find(ctx, nil, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Slug)

	published, err := posts.Find(ctx, Filter{"status": domain.StatusPublished}, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	page, err := posts.Find(ctx, nil, ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Slug)

	one, err := posts.FindOne(ctx, Filter{"slug": "a"})
	require.NoError(t, err)
	one.Title = "renamed"
	require.NoError(t, posts.Update(ctx, one))

	got, err := posts.Get(ctx, one.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, posts.Delete(ctx, one.ID))
	_, err = posts.Get(ctx, one.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = posts.FindOne(ctx, Filter{"slug": "zzz"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryCollection[domain.User](domain.CollectionUsers))

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", Role: domain.RoleAdmin}))
	require.NoError(t, repo.Create(ctx, &domain.User{Username: "bob", Role: domain.RoleUser}))

	user, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)

	_, err = repo.GetByUsername(ctx, "mallory")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	users, total, err := repo.List(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)
}

func TestFindAll_ReadsPastOneBatch(t *testing.T) {
	ctx := context.Background()
	posts := NewMemoryCollection[domain.Post](domain.CollectionPosts)
	total := 2*ScanBatchSize + 1
	for i := 0; i < total; i++ {
		status := domain.StatusPublished
		if i%2 == 1 {
			status = domain.StatusDraft
		}
		require.NoError(t, posts.Insert(ctx, &domain.Post{Title: "p", Status: status}))
	}

	all, err := FindAll[domain.Post](ctx, posts, nil)
	require.NoError(t, err)
	assert.Len(t, all, total)

	published, err := FindAll[domain.Post](ctx, posts, Filter{"status": domain.StatusPublished})
	require.NoError(t, err)
	assert.Len(t, published, ScanBatchSize+1)

	assert.ErrorIs(t, posts.Insert(ctx, all[0]), ErrDuplicate)
}
