package service

import (
	"fmt"
	"net/url"

	"github.com/judiguard/judi_guard_server/internal/repository"
)

// StudioService builds deep links into YouTube Studio.
type StudioService struct {
	analysisRepo *repository.AnalysisRepository
	userRepo     *repository.UserRepository
}

func NewStudioService(analysisRepo *repository.AnalysisRepository, userRepo *repository.UserRepository) *StudioService {
	return &StudioService{
		analysisRepo: analysisRepo,
		userRepo:     userRepo,
	}
}

// CommentLink returns a link to the Studio comments page of an analyzed
// video. The authuser hint steers Google's account picker to the account
// that owns the channel.
func (s *StudioService) CommentLink(userID, analysisID int64) (string, error) {
	analysis, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		return "", ErrAnalysisNotFound
	}
	if analysis.UserID != userID {
		return "", ErrAnalysisNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", ErrUserNotFound
	}

	return fmt.Sprintf("https://studio.youtube.com/video/%s/comments?authuser=%s",
		analysis.YouTubeVideoID, url.QueryEscape(user.Email)), nil
}
