package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/pkg/pubsub"
	"github.com/judiguard/judi_guard_server/internal/pkg/queue"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/repository"
)

// CommentSource is what the processor needs from the YouTube layer.
type CommentSource interface {
	VideoDetails(ctx context.Context, videoID string) (*youtube.Video, error)
	ListCommentThreads(ctx context.Context, videoID string, pageSize, maxThreads int) ([]youtube.Comment, error)
}

// SourceFactory builds a per-user comment source.
type SourceFactory func(ctx context.Context, user *model.User) (CommentSource, error)

// Classifier is what the processor needs from the ML layer.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, float64, string, error)
}

// Processor drives a single analysis run from PENDING to a terminal
// status: fetch the video's comments, classify each one, persist the
// outcomes and publish progress to the owning user.
type Processor struct {
	analysisRepo *repository.AnalysisRepository
	commentRepo  *repository.CommentRepository
	userRepo     *repository.UserRepository
	sourceFor    SourceFactory
	classifier   Classifier
	publisher    *pubsub.Publisher
	cfg          *config.Config
}

func NewProcessor(
	analysisRepo *repository.AnalysisRepository,
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	sourceFor SourceFactory,
	classifier Classifier,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Processor {
	return &Processor{
		analysisRepo: analysisRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		sourceFor:    sourceFor,
		classifier:   classifier,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Process handles one queued run. Classifier failures on individual
// comments leave those rows marked ERROR_ANALYSIS and the run completes;
// only source, auth and persistence failures fail the whole run.
func (p *Processor) Process(ctx context.Context, msg *queue.AnalysisMessage) error {
	claimed, err := p.analysisRepo.MarkProcessing(msg.AnalysisID)
	if err != nil {
		return fmt.Errorf("failed to claim analysis %d: %w", msg.AnalysisID, err)
	}
	if !claimed {
		// Redelivered message or a run someone already finished
		log.Printf("Analysis %d is not pending, skipping", msg.AnalysisID)
		return nil
	}

	publishProgress := func(step, status string, fetched, analyzed int, errMsg string) {
		if err := p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
			UserID:     msg.UserID,
			AnalysisID: msg.AnalysisID,
			Status:     status,
			Step:       step,
			Fetched:    fetched,
			Analyzed:   analyzed,
			Error:      errMsg,
		}); err != nil {
			log.Printf("Analysis %d: failed to publish progress: %v", msg.AnalysisID, err)
		}
	}

	handleError := func(step string, fetched, analyzed int, err error) error {
		errMsg := err.Error()
		if markErr := p.analysisRepo.MarkFailed(msg.AnalysisID, errMsg, fetched, analyzed); markErr != nil {
			log.Printf("Analysis %d: failed to mark failed: %v", msg.AnalysisID, markErr)
		}
		publishProgress(step, model.StatusFailed, fetched, analyzed, errMsg)
		return err
	}

	publishProgress(pubsub.StepConnecting, model.StatusProcessing, 0, 0, "")

	user, err := p.userRepo.GetByID(msg.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handleError(pubsub.StepConnecting, 0, 0, errors.New("owning user no longer exists"))
		}
		return handleError(pubsub.StepConnecting, 0, 0, err)
	}

	source, err := p.sourceFor(ctx, user)
	if err != nil {
		return handleError(pubsub.StepConnecting, 0, 0, err)
	}

	// Video title is display sugar; a failed lookup must not kill the run
	if video, err := source.VideoDetails(ctx, msg.YouTubeVideoID); err != nil {
		log.Printf("Analysis %d: failed to fetch video details: %v", msg.AnalysisID, err)
	} else if err := p.analysisRepo.UpdateFields(msg.AnalysisID, map[string]interface{}{
		"video_title": video.Title,
	}); err != nil {
		log.Printf("Analysis %d: failed to store video title: %v", msg.AnalysisID, err)
	}

	publishProgress(pubsub.StepFetching, model.StatusProcessing, 0, 0, "")

	comments, err := source.ListCommentThreads(ctx, msg.YouTubeVideoID,
		p.cfg.Analysis.PageSize, p.cfg.Analysis.MaxComments)
	if err != nil {
		return handleError(pubsub.StepFetching, 0, 0, err)
	}

	fetched := len(comments)
	publishProgress(pubsub.StepClassifying, model.StatusProcessing, fetched, 0, "")

	analyzed := 0
	for _, raw := range comments {
		ok, err := p.processComment(ctx, msg, &raw)
		if err != nil {
			// Persistence failure: partial progress stays recorded
			return handleError(pubsub.StepClassifying, fetched, analyzed, err)
		}
		if ok {
			analyzed++
		}
	}

	if err := p.analysisRepo.MarkCompleted(msg.AnalysisID, fetched, analyzed); err != nil {
		return handleError(pubsub.StepClassifying, fetched, analyzed, err)
	}

	publishProgress(pubsub.StepDone, model.StatusCompleted, fetched, analyzed, "")
	log.Printf("Analysis %d completed: %d fetched, %d analyzed", msg.AnalysisID, fetched, analyzed)
	return nil
}

// processComment persists one raw comment and classifies it. The bool
// reports whether the comment carries a classification afterwards; the
// error is reserved for persistence failures.
func (p *Processor) processComment(ctx context.Context, msg *queue.AnalysisMessage, raw *youtube.Comment) (bool, error) {
	// A comment classified on an earlier run keeps its label; only the
	// run linkage and mutable YouTube fields move forward.
	if existing, err := p.commentRepo.GetByYouTubeCommentID(raw.ID); err == nil && classified(existing.Classification) {
		if err := p.commentRepo.UpdateFields(existing.ID, map[string]interface{}{
			"video_analysis_id": msg.AnalysisID,
			"text_original":     raw.TextOriginal,
			"text_display":      raw.TextDisplay,
			"like_count":        int(raw.LikeCount),
			"total_reply_count": int(raw.TotalReplyCount),
		}); err != nil {
			return false, fmt.Errorf("failed to relink comment %s: %w", raw.ID, err)
		}
		return true, nil
	}

	row := rowFromRaw(msg, raw)

	if err := p.commentRepo.Upsert(row); err != nil {
		return false, fmt.Errorf("failed to store comment %s: %w", raw.ID, err)
	}

	stored, err := p.commentRepo.GetByYouTubeCommentID(raw.ID)
	if err != nil {
		return false, fmt.Errorf("failed to reload comment %s: %w", raw.ID, err)
	}

	label, confidence, version, err := p.classifier.Classify(ctx, raw.TextOriginal)
	if err != nil {
		log.Printf("Analysis %d: classification of comment %s failed: %v", msg.AnalysisID, raw.ID, err)
		if markErr := p.commentRepo.UpdateClassification(stored.ID, model.ClassificationError, 0, ""); markErr != nil {
			return false, fmt.Errorf("failed to mark comment %s: %w", raw.ID, markErr)
		}
		return false, nil
	}

	if err := p.commentRepo.UpdateClassification(stored.ID, label, confidence, version); err != nil {
		return false, fmt.Errorf("failed to store classification for comment %s: %w", raw.ID, err)
	}
	return true, nil
}

func classified(classification string) bool {
	return classification == model.ClassificationJudi || classification == model.ClassificationNonJudi
}

func rowFromRaw(msg *queue.AnalysisMessage, raw *youtube.Comment) *model.AnalyzedComment {
	row := &model.AnalyzedComment{
		VideoAnalysisID:       msg.AnalysisID,
		UserID:                msg.UserID,
		YouTubeVideoID:        msg.YouTubeVideoID,
		YouTubeCommentID:      raw.ID,
		TextOriginal:          raw.TextOriginal,
		TextDisplay:           raw.TextDisplay,
		AuthorDisplayName:     raw.AuthorDisplayName,
		AuthorChannelID:       raw.AuthorChannelID,
		AuthorProfileImageURL: raw.AuthorAvatarURL,
		LikeCount:             int(raw.LikeCount),
		TotalReplyCount:       int(raw.TotalReplyCount),
		Classification:        model.ClassificationPending,
	}
	if raw.ParentID != "" {
		parentID := raw.ParentID
		row.ParentYouTubeCommentID = &parentID
	}
	if !raw.PublishedAt.IsZero() {
		publishedAt := raw.PublishedAt
		row.PublishedAt = &publishedAt
	}
	if !raw.UpdatedAt.IsZero() {
		updatedAt := raw.UpdatedAt
		row.UpdatedAtYouTube = &updatedAt
	}
	return row
}
