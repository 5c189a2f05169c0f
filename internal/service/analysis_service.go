package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/queue"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/repository"
)

var (
	ErrInvalidVideoID      = errors.New("could not extract a video id from the given input")
	ErrYouTubeNotConnected = errors.New("no youtube account is connected")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrAnalysisHasComments = errors.New("analysis still holds comments and cannot be deleted")
)

type AnalysisService struct {
	analysisRepo *repository.AnalysisRepository
	commentRepo  *repository.CommentRepository
	userRepo     *repository.UserRepository
	queue        *queue.Queue
	ytFactory    *youtube.Factory
	cfg          *config.Config
}

func NewAnalysisService(
	analysisRepo *repository.AnalysisRepository,
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	q *queue.Queue,
	ytFactory *youtube.Factory,
	cfg *config.Config,
) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		queue:        q,
		ytFactory:    ytFactory,
		cfg:          cfg,
	}
}

// Start validates the request, records a PENDING run and enqueues it for
// the worker. The call returns before any YouTube traffic happens.
func (s *AnalysisService) Start(ctx context.Context, userID int64, videoInput string) (*model.VideoAnalysis, error) {
	videoID := youtube.ParseVideoID(videoInput)
	if videoID == "" {
		return nil, ErrInvalidVideoID
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.YouTubeConnected() {
		return nil, ErrYouTubeNotConnected
	}

	analysis := &model.VideoAnalysis{
		UserID:         userID,
		YouTubeVideoID: videoID,
		Status:         model.StatusPending,
		RequestedAt:    time.Now(),
	}
	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, err
	}

	msg := &queue.AnalysisMessage{
		AnalysisID:     analysis.ID,
		UserID:         userID,
		YouTubeVideoID: videoID,
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		// The run would sit PENDING forever without a queue entry
		if failErr := s.analysisRepo.MarkFailed(analysis.ID, "failed to enqueue analysis job", 0, 0); failErr != nil {
			log.Printf("Failed to mark unqueued analysis %d as failed: %v", analysis.ID, failErr)
		}
		return nil, err
	}

	return analysis, nil
}

// GetByID returns a run. Other users' runs read as not found.
func (s *AnalysisService) GetByID(userID, analysisID int64) (*model.VideoAnalysis, error) {
	analysis, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, ErrAnalysisNotFound
	}
	return analysis, nil
}

// List returns the user's runs, newest first.
func (s *AnalysisService) List(userID int64, page, pageSize int, status string) ([]*model.VideoAnalysis, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.analysisRepo.ListByUserID(userID, page, pageSize, status)
}

// Results returns a run's comments, newest first.
func (s *AnalysisService) Results(userID, analysisID int64, page, pageSize int, classification string) ([]*model.AnalyzedComment, int64, error) {
	if _, err := s.GetByID(userID, analysisID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return s.commentRepo.ListByAnalysisID(analysisID, page, pageSize, classification)
}

// Delete removes a run record. Runs that still hold comments are kept so
// classification history never silently disappears.
func (s *AnalysisService) Delete(userID, analysisID int64) error {
	if _, err := s.GetByID(userID, analysisID); err != nil {
		return err
	}

	count, err := s.commentRepo.CountByAnalysisID(analysisID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAnalysisHasComments
	}

	return s.analysisRepo.Delete(analysisID)
}

// DeleteComment removes one stored comment from YouTube. A failed attempt
// is recorded on the row and the deleted flag stays false; an already
// deleted comment returns unchanged.
func (s *AnalysisService) DeleteComment(ctx context.Context, userID, commentID int64) (*model.AnalyzedComment, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrCommentNotFound
	}

	if comment.IsDeletedOnYouTube {
		return comment, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	client, err := s.ytFactory.ClientForUser(ctx, user)
	if err != nil {
		if errors.Is(err, youtube.ErrNotConnected) {
			return nil, ErrYouTubeNotConnected
		}
		return nil, err
	}

	if err := client.DeleteComment(ctx, comment.YouTubeCommentID); err != nil {
		if markErr := s.commentRepo.MarkDeletionFailed(comment.ID, err.Error()); markErr != nil {
			log.Printf("Failed to record deletion failure for comment %d: %v", comment.ID, markErr)
		}
		return nil, err
	}

	if err := s.commentRepo.MarkDeleted(comment.ID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(comment.ID)
}

// BatchDeleteJudi attempts to remove every flagged comment of a run and
// records the tally on the run. Individual failures never abort the pass.
func (s *AnalysisService) BatchDeleteJudi(ctx context.Context, userID, analysisID int64) (*dto.BatchDeleteResponse, error) {
	if _, err := s.GetByID(userID, analysisID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	client, err := s.ytFactory.ClientForUser(ctx, user)
	if err != nil {
		if errors.Is(err, youtube.ErrNotConnected) {
			return nil, ErrYouTubeNotConnected
		}
		return nil, err
	}

	comments, err := s.commentRepo.ListJudiByAnalysisID(analysisID)
	if err != nil {
		return nil, err
	}

	success, failure := 0, 0
	for _, comment := range comments {
		if err := client.DeleteComment(ctx, comment.YouTubeCommentID); err != nil {
			failure++
			if markErr := s.commentRepo.MarkDeletionFailed(comment.ID, err.Error()); markErr != nil {
				log.Printf("Failed to record deletion failure for comment %d: %v", comment.ID, markErr)
			}
			continue
		}
		success++
		if markErr := s.commentRepo.MarkDeleted(comment.ID); markErr != nil {
			log.Printf("Failed to record deletion for comment %d: %v", comment.ID, markErr)
		}
	}

	if err := s.analysisRepo.RecordBatchDeletion(analysisID, success, failure); err != nil {
		return nil, err
	}

	return &dto.BatchDeleteResponse{
		AnalysisID:   analysisID,
		Attempted:    len(comments),
		SuccessCount: success,
		FailureCount: failure,
	}, nil
}

// AnalysisDetailFromModel shapes a run for API responses.
func AnalysisDetailFromModel(a *model.VideoAnalysis) *dto.AnalysisDetail {
	detail := &dto.AnalysisDetail{
		ID:                       a.ID,
		YouTubeVideoID:           a.YouTubeVideoID,
		VideoTitle:               a.VideoTitle,
		Status:                   a.Status,
		TotalCommentsFetched:     a.TotalCommentsFetched,
		TotalCommentsAnalyzed:    a.TotalCommentsAnalyzed,
		ErrorMessage:             a.ErrorMessage,
		RequestedAt:              a.RequestedAt.Format(time.RFC3339),
		LastBatchDeletionSuccess: a.LastBatchDeletionSuccess,
		LastBatchDeletionFailure: a.LastBatchDeletionFailure,
	}
	if a.ProcessingStartedAt != nil {
		detail.ProcessingStartedAt = a.ProcessingStartedAt.Format(time.RFC3339)
	}
	if a.CompletedAt != nil {
		detail.CompletedAt = a.CompletedAt.Format(time.RFC3339)
	}
	if a.LastBatchDeletionAt != nil {
		detail.LastBatchDeletionAt = a.LastBatchDeletionAt.Format(time.RFC3339)
	}
	return detail
}

// AnalysisListItemFromModel shapes a run for list responses, which
// carry less detail than the single-run view.
func AnalysisListItemFromModel(a *model.VideoAnalysis) *dto.AnalysisListItem {
	return &dto.AnalysisListItem{
		ID:                    a.ID,
		YouTubeVideoID:        a.YouTubeVideoID,
		VideoTitle:            a.VideoTitle,
		Status:                a.Status,
		TotalCommentsFetched:  a.TotalCommentsFetched,
		TotalCommentsAnalyzed: a.TotalCommentsAnalyzed,
		CreatedAt:             a.RequestedAt.Format(time.RFC3339),
	}
}

// CommentItemFromModel shapes a stored comment for API responses.
func CommentItemFromModel(c *model.AnalyzedComment) *dto.AnalyzedCommentItem {
	item := &dto.AnalyzedCommentItem{
		ID:                 c.ID,
		YouTubeCommentID:   c.YouTubeCommentID,
		TextDisplay:        c.TextDisplay,
		AuthorDisplayName:  c.AuthorDisplayName,
		AuthorChannelID:    c.AuthorChannelID,
		LikeCount:          c.LikeCount,
		TotalReplyCount:    c.TotalReplyCount,
		Classification:     c.Classification,
		ConfidenceScore:    c.ConfidenceScore,
		ModelVersion:       c.ModelVersion,
		IsDeletedOnYouTube: c.IsDeletedOnYouTube,
		DeletionError:      c.DeletionError,
	}
	if c.ParentYouTubeCommentID != nil {
		item.ParentCommentID = *c.ParentYouTubeCommentID
	}
	if c.PublishedAt != nil {
		item.PublishedAt = c.PublishedAt.Format(time.RFC3339)
	}
	return item
}
