package service

import (
	"errors"

	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/pkg/logger"
	"github.com/hkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

type UserService interface {
	GetUserByID(id uint) (*model.User, error)
	UpdateUser(id uint, username, email, password string) (*model.User, error)
	DeleteUser(id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(id uint) (*model.User, error) {
	logger.Debug("Fetching user profile", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User profile not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user profile", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return user, nil
}

// UpdateUser applies only the fields the caller provided; empty strings
// leave the current value untouched.
func (s *userService) UpdateUser(id uint, username, email, password string) (*model.User, error) {
	logger.Info("Updating user", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found for update", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user for update", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	updated := false
	if username != "" && username != user.Username {
		existing, err := s.userRepo.FindByUsername(username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to check username availability", err, map[string]interface{}{
				"username": username,
			})
			return nil, err
		}
		if existing != nil {
			logger.Warn("User update failed: username already exists", map[string]interface{}{
				"user_id":  id,
				"username": username,
			})
			return nil, ErrUsernameAlreadyExists
		}
		user.Username = username
		updated = true
	}
	if email != "" && email != user.Email {
		existing, err := s.userRepo.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to check email availability", err, map[string]interface{}{
				"email": email,
			})
			return nil, err
		}
		if existing != nil {
			logger.Warn("User update failed: email already exists", map[string]interface{}{
				"user_id": id,
				"email":   email,
			})
			return nil, ErrEmailAlreadyExists
		}
		user.Email = email
		updated = true
	}
	if password != "" {
		hashedPassword, err := util.HashPassword(password)
		if err != nil {
			logger.Error("Failed to hash new password", err, map[string]interface{}{
				"user_id": id,
			})
			return nil, err
		}
		user.PasswordHash = hashedPassword
		updated = true
	}

	if !updated {
		logger.Debug("No changes detected for user", map[string]interface{}{
			"user_id": id,
		})
		return user, nil
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Info("User updated successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user, nil
}

func (s *userService) DeleteUser(id uint) error {
	logger.Info("Deleting user", map[string]interface{}{
		"user_id": id,
	})

	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found for deletion", map[string]interface{}{
				"user_id": id,
			})
			return ErrUserNotFound
		}
		logger.Error("Failed to fetch user for deletion", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	if err := s.userRepo.Delete(id); err != nil {
		logger.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Info("User deleted successfully", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
