package model

import (
	"time"
)

// VideoAnalysis run statuses. Transitions are monotonic:
// PENDING -> PROCESSING -> COMPLETED | FAILED. Terminal states never change.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// VideoAnalysis is one user-initiated request to analyze the comments of a
// YouTube video. Rows are historical records and are only mutated by the
// worker driving the run.
type VideoAnalysis struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	UserID         int64  `gorm:"not null;index:idx_user_video" json:"user_id"`
	YouTubeVideoID string `gorm:"column:youtube_video_id;size:16;not null;index:idx_user_video" json:"youtube_video_id"`
	VideoTitle     string `gorm:"size:200" json:"video_title,omitempty"`

	Status                string `gorm:"size:20;default:PENDING;index" json:"status"`
	TotalCommentsFetched  int    `gorm:"default:0" json:"total_comments_fetched"`
	TotalCommentsAnalyzed int    `gorm:"default:0" json:"total_comments_analyzed"`
	ErrorMessage          string `gorm:"type:text" json:"error_message,omitempty"`

	// Batch-deletion bookkeeping. Deletion outcomes never move Status;
	// the run state machine stays four-valued.
	LastBatchDeletionAt      *time.Time `json:"last_batch_deletion_at,omitempty"`
	LastBatchDeletionSuccess int        `gorm:"default:0" json:"last_batch_deletion_success"`
	LastBatchDeletionFailure int        `gorm:"default:0" json:"last_batch_deletion_failure"`

	RequestedAt         time.Time  `json:"requested_at"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (VideoAnalysis) TableName() string {
	return "video_analyses"
}

// Terminal reports whether the run has reached a final status.
func (a *VideoAnalysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}
