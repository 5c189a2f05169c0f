package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/testutil"
)

func TestPasswordResetRepository_GetByToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPasswordResetRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestPasswordReset(t, db, user.ID, "reset-token-1")

	found, err := repo.GetByToken("reset-token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	assert.True(t, found.Valid())
}

func TestPasswordResetRepository_MarkUsed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPasswordResetRepository(db)
	user := testutil.TestUser(t, db)
	reset := testutil.TestPasswordReset(t, db, user.ID, "reset-token-2")

	require.NoError(t, repo.MarkUsed(reset.ID))

	found, err := repo.GetByToken("reset-token-2")
	require.NoError(t, err)
	assert.True(t, found.Used)
	assert.False(t, found.Valid())
}

func TestPasswordResetRepository_InvalidateForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPasswordResetRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestPasswordReset(t, db, user.ID, "old-token-1")
	testutil.TestPasswordReset(t, db, user.ID, "old-token-2")

	require.NoError(t, repo.InvalidateForUser(user.ID))

	for _, token := range []string{"old-token-1", "old-token-2"} {
		found, err := repo.GetByToken(token)
		require.NoError(t, err)
		assert.True(t, found.Used)
	}
}

func TestPasswordResetRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPasswordResetRepository(db)
	user := testutil.TestUser(t, db)

	expired := &model.PasswordReset{
		UserID:    user.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Create(expired))
	testutil.TestPasswordReset(t, db, user.ID, "live-token")

	removed, err := repo.DeleteExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.GetByToken("expired-token")
	assert.Error(t, err)

	_, err = repo.GetByToken("live-token")
	assert.NoError(t, err)
}
