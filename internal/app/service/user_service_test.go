package service

import (
	"testing"

	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/internal/db"
	"github.com/hkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (UserService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userService := NewUserService(repository.NewUserRepository(testDB))

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	return userService, testDB, user
}

func TestUserService_GetUserByID(t *testing.T) {
	userService, _, user := setupUserServiceTest(t)

	found, err := userService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	userService, _, _ := setupUserServiceTest(t)

	_, err := userService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateUser(t *testing.T) {
	userService, _, user := setupUserServiceTest(t)

	updated, err := userService.UpdateUser(user.ID, "", "alice.new@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", updated.Email)
	assert.Equal(t, "alice", updated.Username)
}

func TestUserService_UpdateUser_PasswordRehashed(t *testing.T) {
	userService, _, user := setupUserServiceTest(t)

	oldHash := user.PasswordHash
	updated, err := userService.UpdateUser(user.ID, "", "", "newpassword")
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.True(t, util.VerifyPassword(updated.PasswordHash, "newpassword"))
}

func TestUserService_UpdateUser_UsernameTaken(t *testing.T) {
	userService, testDB, user := setupUserServiceTest(t)

	testDB.Create(&model.User{
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "hash",
	})

	_, err := userService.UpdateUser(user.ID, "bob", "", "")
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestUserService_DeleteUser(t *testing.T) {
	userService, _, user := setupUserServiceTest(t)

	err := userService.DeleteUser(user.ID)
	require.NoError(t, err)

	_, err = userService.GetUserByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	userService, _, _ := setupUserServiceTest(t)

	err := userService.DeleteUser(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
