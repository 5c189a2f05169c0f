package service

import (
	"errors"
	"log"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/oss"
	"github.com/judiguard/judi_guard_server/internal/repository"
)

var (
	ErrInvalidAvatarType = errors.New("avatar must be a jpg, png, gif or webp image")
	ErrAvatarTooLarge    = errors.New("avatar file is too large")
)

const maxAvatarBytes = 2 << 20 // 2 MiB

type UserService struct {
	userRepo     *repository.UserRepository
	analysisRepo *repository.AnalysisRepository
	commentRepo  *repository.CommentRepository
	resetRepo    *repository.PasswordResetRepository
	ossClient    *oss.Client
}

func NewUserService(
	userRepo *repository.UserRepository,
	analysisRepo *repository.AnalysisRepository,
	commentRepo *repository.CommentRepository,
	resetRepo *repository.PasswordResetRepository,
	ossClient *oss.Client,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		commentRepo:  commentRepo,
		resetRepo:    resetRepo,
		ossClient:    ossClient,
	}
}

func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return UserInfoFromModel(user), nil
}

// UpdateProfile changes username and/or email, enforcing uniqueness. An
// email change re-enters the unverified state.
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}

	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		fields["username"] = *req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		fields["email"] = *req.Email
		fields["is_verified"] = false
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}

// UploadAvatar stores a new profile picture and removes the previous one.
func (s *UserService) UploadAvatar(userID int64, filename string, data []byte) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if len(data) > maxAvatarBytes {
		return "", ErrAvatarTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", ErrInvalidAvatarType
	}

	avatarURL, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"avatar_url": avatarURL,
	}); err != nil {
		return "", err
	}

	// Old avatar cleanup is best effort
	if user.AvatarURL != "" {
		if key := s.ossClient.ExtractObjectKey(user.AvatarURL); key != "" {
			if err := s.ossClient.Delete(key); err != nil {
				log.Printf("Failed to delete old avatar for user %d: %v", userID, err)
			}
		}
	}

	return avatarURL, nil
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(userID int64) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.commentRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.analysisRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.resetRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	return s.userRepo.Delete(userID)
}
