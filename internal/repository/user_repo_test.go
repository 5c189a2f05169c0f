package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judiguard/judi_guard_server/internal/testutil"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db)

	found, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Username, found.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByID(99999)
	assert.Error(t, err)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "unique@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	found, err := repo.GetByEmail(email)
	require.NoError(t, err)
	assert.Equal(t, email, found.Email)
}

func TestUserRepository_GetByGoogleID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	googleID := "google-sub-12345"
	user := testutil.TestUser(t, db)
	user.GoogleID = &googleID
	require.NoError(t, repo.Update(user))

	found, err := repo.GetByGoogleID(googleID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_SaveYouTubeTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	err := repo.SaveYouTubeTokens(context.Background(), user.ID, "access-1", "refresh-1", expiry)
	require.NoError(t, err)

	found, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.YouTubeAccessToken)
	assert.Equal(t, "access-1", *found.YouTubeAccessToken)
	require.NotNil(t, found.YouTubeRefreshToken)
	assert.Equal(t, "refresh-1", *found.YouTubeRefreshToken)
	assert.True(t, found.YouTubeConnected())
}

func TestUserRepository_ClearYouTubeTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithYouTubeConnected())

	err := repo.ClearYouTubeTokens(context.Background(), user.ID)
	require.NoError(t, err)

	found, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, found.YouTubeAccessToken)
	assert.Nil(t, found.YouTubeRefreshToken)
	assert.Empty(t, found.YouTubeChannelID)
	assert.False(t, found.YouTubeConnected())
}

func TestUserRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.GetByID(user.ID)
	assert.Error(t, err)
}
