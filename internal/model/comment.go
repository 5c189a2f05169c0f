package model

import (
	"time"
)

// Comment classifications.
const (
	ClassificationJudi     = "JUDI"
	ClassificationNonJudi  = "NON_JUDI"
	ClassificationPending  = "PENDING_ANALYSIS"
	ClassificationError    = "ERROR_ANALYSIS"
	ClassificationUnknown  = "UNKNOWN"
)

// AnalyzedComment is one YouTube comment together with its classification
// outcome. YouTubeCommentID carries a database-level unique index: a comment
// is stored at most once across all runs, re-analysis updates instead of
// duplicating.
type AnalyzedComment struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	VideoAnalysisID int64  `gorm:"not null;index" json:"video_analysis_id"`
	UserID          int64  `gorm:"not null;index" json:"user_id"`
	YouTubeVideoID  string `gorm:"column:youtube_video_id;size:16;not null" json:"youtube_video_id"`

	YouTubeCommentID       string  `gorm:"column:youtube_comment_id;size:64;not null;uniqueIndex" json:"youtube_comment_id"`
	ParentYouTubeCommentID *string `gorm:"column:parent_youtube_comment_id;size:64;index" json:"parent_youtube_comment_id,omitempty"`

	TextOriginal          string     `gorm:"type:text;not null" json:"text_original"`
	TextDisplay           string     `gorm:"type:text;not null" json:"text_display"`
	AuthorDisplayName     string     `gorm:"size:200" json:"author_display_name"`
	AuthorChannelID       string     `gorm:"size:64" json:"author_channel_id"`
	AuthorProfileImageURL string     `gorm:"size:500" json:"author_profile_image_url,omitempty"`
	PublishedAt           *time.Time `gorm:"index" json:"published_at,omitempty"`
	UpdatedAtYouTube      *time.Time `gorm:"column:updated_at_youtube" json:"updated_at_youtube,omitempty"`
	LikeCount             int        `gorm:"default:0" json:"like_count"`
	TotalReplyCount       int        `gorm:"default:0" json:"total_reply_count"`

	Classification  string  `gorm:"size:20;default:PENDING_ANALYSIS;index" json:"classification"`
	ConfidenceScore float64 `json:"confidence_score"`
	ModelVersion    string  `gorm:"size:50" json:"model_version,omitempty"`

	IsDeletedOnYouTube  bool       `gorm:"column:is_deleted_on_youtube;default:false" json:"is_deleted_on_youtube"`
	DeletionAttemptedAt *time.Time `json:"deletion_attempted_at,omitempty"`
	DeletionError       string     `gorm:"type:text" json:"deletion_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalyzedComment) TableName() string {
	return "analyzed_comments"
}
