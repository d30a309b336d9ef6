package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/internal/app/service"
	"github.com/hkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserControllerTest(t *testing.T) (*UserController, *gin.Engine, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	userService := service.NewUserService(userRepo)
	userController := NewUserController(userService)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return userController, router, testDB, user
}

func setCallerInContext(c *gin.Context, userID uint, role model.UserRole) {
	c.Set("user_id", userID)
	c.Set("user_role", role)
}

func TestUserController_GetUser_Success(t *testing.T) {
	controller, router, _, user := setupUserControllerTest(t)

	router.GET("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.GetUser(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	profile := response["user"].(map[string]interface{})
	assert.Equal(t, "testuser", profile["username"])
	assert.Equal(t, "test@example.com", profile["email"])
	// Responses never carry password material.
	assert.NotContains(t, profile, "password_hash")
}

func TestUserController_GetUser_OtherUserForbidden(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	other := &model.User{
		Username:     "otheruser",
		Email:        "other@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.GET("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.GetUser(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/%d", other.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserController_GetUser_AdminCanAccessAnyone(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	admin := &model.User{
		Username:     "adminuser",
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	router.GET("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, admin.ID, model.RoleAdmin)
		controller.GetUser(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserController_GetUser_Unauthorized(t *testing.T) {
	controller, router, _, user := setupUserControllerTest(t)

	router.GET("/users/:id", controller.GetUser)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserController_GetUser_InvalidID(t *testing.T) {
	controller, router, _, user := setupUserControllerTest(t)

	router.GET("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.GetUser(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserController_UpdateUser_Success(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	router.PUT("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.UpdateUser(c)
	})

	body, _ := json.Marshal(map[string]interface{}{
		"username": "renamed",
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/users/%d", user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, user.ID).Error)
	assert.Equal(t, "renamed", reloaded.Username)
	// Untouched fields survive a partial update.
	assert.Equal(t, "test@example.com", reloaded.Email)
}

func TestUserController_UpdateUser_DuplicateUsername(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	other := &model.User{
		Username:     "takenname",
		Email:        "taken@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.PUT("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.UpdateUser(c)
	})

	body, _ := json.Marshal(map[string]interface{}{
		"username": "takenname",
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/users/%d", user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserController_UpdateUser_InvalidEmail(t *testing.T) {
	controller, router, _, user := setupUserControllerTest(t)

	router.PUT("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.UpdateUser(c)
	})

	body, _ := json.Marshal(map[string]interface{}{
		"email": "not-an-email",
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/users/%d", user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserController_DeleteUser_Success(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	router.DELETE("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.DeleteUser(c)
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err := testDB.First(&model.User{}, user.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserController_DeleteUser_OtherUserForbidden(t *testing.T) {
	controller, router, testDB, user := setupUserControllerTest(t)

	other := &model.User{
		Username:     "victim",
		Email:        "victim@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.DELETE("/users/:id", func(c *gin.Context) {
		setCallerInContext(c, user.ID, model.RoleUser)
		controller.DeleteUser(c)
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/users/%d", other.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, testDB.First(&model.User{}, other.ID).Error)
}
