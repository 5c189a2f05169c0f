package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(analysis *model.VideoAnalysis) error {
	return r.db.Create(analysis).Error
}

func (r *AnalysisRepository) GetByID(id int64) (*model.VideoAnalysis, error) {
	var analysis model.VideoAnalysis
	err := r.db.Where("id = ?", id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepository) Update(analysis *model.VideoAnalysis) error {
	return r.db.Save(analysis).Error
}

func (r *AnalysisRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.VideoAnalysis{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AnalysisRepository) Delete(id int64) error {
	return r.db.Delete(&model.VideoAnalysis{}, id).Error
}

// DeleteByUserID removes every run a user owns. Used by account deletion.
func (r *AnalysisRepository) DeleteByUserID(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.VideoAnalysis{}).Error
}

// ListByUserID returns the user's runs, newest first.
func (r *AnalysisRepository) ListByUserID(userID int64, page, pageSize int, status string) ([]*model.VideoAnalysis, int64, error) {
	var analyses []*model.VideoAnalysis
	var total int64

	query := r.db.Model(&model.VideoAnalysis{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&analyses).Error; err != nil {
		return nil, 0, err
	}

	return analyses, total, nil
}

// ListStaleProcessing returns runs stuck in PROCESSING since before the
// cutoff. The cleanup job fails them.
func (r *AnalysisRepository) ListStaleProcessing(cutoff time.Time) ([]*model.VideoAnalysis, error) {
	var analyses []*model.VideoAnalysis
	err := r.db.Where("status = ? AND processing_started_at < ?", model.StatusProcessing, cutoff).
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

// MarkProcessing moves a PENDING run into PROCESSING. The status guard in
// the WHERE clause makes redelivered queue messages harmless: a second
// worker finds zero affected rows and skips the run.
func (r *AnalysisRepository) MarkProcessing(id int64) (bool, error) {
	now := time.Now()
	res := r.db.Model(&model.VideoAnalysis{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":                model.StatusProcessing,
			"processing_started_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted finalizes a successful run.
func (r *AnalysisRepository) MarkCompleted(id int64, fetched, analyzed int) error {
	now := time.Now()
	return r.db.Model(&model.VideoAnalysis{}).
		Where("id = ? AND status = ?", id, model.StatusProcessing).
		Updates(map[string]interface{}{
			"status":                  model.StatusCompleted,
			"total_comments_fetched":  fetched,
			"total_comments_analyzed": analyzed,
			"completed_at":            now,
		}).Error
}

// MarkFailed finalizes a failed run, keeping whatever partial counts the
// worker reached.
func (r *AnalysisRepository) MarkFailed(id int64, errorMessage string, fetched, analyzed int) error {
	now := time.Now()
	return r.db.Model(&model.VideoAnalysis{}).
		Where("id = ? AND status IN ?", id, []string{model.StatusPending, model.StatusProcessing}).
		Updates(map[string]interface{}{
			"status":                  model.StatusFailed,
			"error_message":           errorMessage,
			"total_comments_fetched":  fetched,
			"total_comments_analyzed": analyzed,
			"completed_at":            now,
		}).Error
}

// RecordBatchDeletion stores the outcome of a batch-delete pass without
// touching the run status.
func (r *AnalysisRepository) RecordBatchDeletion(id int64, success, failure int) error {
	now := time.Now()
	return r.db.Model(&model.VideoAnalysis{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_batch_deletion_at":      now,
			"last_batch_deletion_success": success,
			"last_batch_deletion_failure": failure,
		}).Error
}
