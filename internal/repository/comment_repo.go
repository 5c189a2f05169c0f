package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/judiguard/judi_guard_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.AnalyzedComment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.AnalyzedComment, error) {
	var comment model.AnalyzedComment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) GetByYouTubeCommentID(youtubeCommentID string) (*model.AnalyzedComment, error) {
	var comment model.AnalyzedComment
	err := r.db.Where("youtube_comment_id = ?", youtubeCommentID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Upsert stores a comment keyed by its YouTube comment ID. Re-analyzing a
// video updates the existing row in place instead of duplicating it; the
// unique index is the backstop against concurrent writers.
func (r *CommentRepository) Upsert(comment *model.AnalyzedComment) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "youtube_comment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"video_analysis_id",
			"text_original",
			"text_display",
			"like_count",
			"total_reply_count",
			"updated_at_youtube",
			"classification",
			"confidence_score",
			"model_version",
			"updated_at",
		}),
	}).Create(comment).Error
}

func (r *CommentRepository) Update(comment *model.AnalyzedComment) error {
	return r.db.Save(comment).Error
}

func (r *CommentRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.AnalyzedComment{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateClassification records the model's verdict for one comment.
func (r *CommentRepository) UpdateClassification(id int64, classification string, confidence float64, modelVersion string) error {
	return r.db.Model(&model.AnalyzedComment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"classification":   classification,
			"confidence_score": confidence,
			"model_version":    modelVersion,
		}).Error
}

// MarkDeleted flags a comment as removed on YouTube.
func (r *CommentRepository) MarkDeleted(id int64) error {
	now := time.Now()
	return r.db.Model(&model.AnalyzedComment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted_on_youtube": true,
			"deletion_attempted_at": now,
			"deletion_error":        "",
		}).Error
}

// MarkDeletionFailed records a failed deletion attempt. The deleted flag
// stays false.
func (r *CommentRepository) MarkDeletionFailed(id int64, deletionError string) error {
	now := time.Now()
	return r.db.Model(&model.AnalyzedComment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"deletion_attempted_at": now,
			"deletion_error":        deletionError,
		}).Error
}

// ListByAnalysisID returns a run's comments, newest first by publish time.
func (r *CommentRepository) ListByAnalysisID(analysisID int64, page, pageSize int, classification string) ([]*model.AnalyzedComment, int64, error) {
	var comments []*model.AnalyzedComment
	var total int64

	query := r.db.Model(&model.AnalyzedComment{}).Where("video_analysis_id = ?", analysisID)
	if classification != "" {
		query = query.Where("classification = ?", classification)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("published_at DESC").Offset(offset).Limit(pageSize).Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListJudiByAnalysisID returns every flagged comment of a run that is not
// yet deleted, for the batch-delete pass.
func (r *CommentRepository) ListJudiByAnalysisID(analysisID int64) ([]*model.AnalyzedComment, error) {
	var comments []*model.AnalyzedComment
	err := r.db.Where("video_analysis_id = ? AND classification = ? AND is_deleted_on_youtube = ?",
		analysisID, model.ClassificationJudi, false).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByAnalysisID reports how many comments a run holds.
func (r *CommentRepository) CountByAnalysisID(analysisID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AnalyzedComment{}).
		Where("video_analysis_id = ?", analysisID).Count(&count).Error
	return count, err
}

// DeleteByUserID removes every comment a user owns. Used by account
// deletion.
func (r *CommentRepository) DeleteByUserID(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.AnalyzedComment{}).Error
}

// Exists reports whether a YouTube comment is already stored.
func (r *CommentRepository) Exists(youtubeCommentID string) (bool, error) {
	var comment model.AnalyzedComment
	err := r.db.Select("id").Where("youtube_comment_id = ?", youtubeCommentID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
