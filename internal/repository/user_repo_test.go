package repository

import (
	"context"
	"testing"
	"time"

	"tokenvault/internal/models"
	"tokenvault/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestEnsureUserDerivesIdentifier(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.EnsureUser(ctx, "1f3a9c0e-77aa-4bcd-9e01-22334455aabb", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "ALIC-1F3A9C0E", u.PublicTag)
	require.Equal(t, "ALIC", u.PublicPrefix)
	require.Equal(t, "1F3A9C0E", u.PublicSuffix)

	again, err := repo.EnsureUser(ctx, u.ID, "other@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", again.Email)
}

func TestFindByPublicTagOrdersByCreation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := &models.User{ID: "abcd1234-0000-4000-8000-000000000002", Email: "dave@example.com", CreatedAt: base.Add(time.Hour)}
	older := &models.User{ID: "abcd1234-0000-4000-8000-000000000001", Email: "dave@example.org", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, older))

	list, err := repo.FindByPublicTag(ctx, "DAVE-ABCD1234")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, older.ID, list[0].ID)

	list, err = repo.FindByPublicParts(ctx, "DAVE", "ABCD1234")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, older.ID, list[0].ID)

	n, err := repo.CountByPublicPrefix(ctx, "DAVE")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestUpdateFCMToken(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, err := repo.EnsureUser(ctx, "u-1", "erin@example.com")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateFCMToken(ctx, u.ID, "device-token"))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "device-token", got.FCMToken)
	require.Equal(t, "ERIN-U-1", got.PublicTag)
}
