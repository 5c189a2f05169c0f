package dto

type StartAnalysisRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

type AnalysisDetail struct {
	ID                    int64  `json:"id"`
	YouTubeVideoID        string `json:"youtube_video_id"`
	VideoTitle            string `json:"video_title,omitempty"`
	Status                string `json:"status"`
	TotalCommentsFetched  int    `json:"total_comments_fetched"`
	TotalCommentsAnalyzed int    `json:"total_comments_analyzed"`
	ErrorMessage          string `json:"error_message,omitempty"`
	RequestedAt           string `json:"requested_at"`
	ProcessingStartedAt   string `json:"processing_started_at,omitempty"`
	CompletedAt           string `json:"completed_at,omitempty"`

	LastBatchDeletionAt      string `json:"last_batch_deletion_at,omitempty"`
	LastBatchDeletionSuccess int    `json:"last_batch_deletion_success"`
	LastBatchDeletionFailure int    `json:"last_batch_deletion_failure"`
}

type AnalysisListItem struct {
	ID                    int64  `json:"id"`
	YouTubeVideoID        string `json:"youtube_video_id"`
	VideoTitle            string `json:"video_title,omitempty"`
	Status                string `json:"status"`
	TotalCommentsFetched  int    `json:"total_comments_fetched"`
	TotalCommentsAnalyzed int    `json:"total_comments_analyzed"`
	CreatedAt             string `json:"created_at"`
}

type AnalyzedCommentItem struct {
	ID                 int64   `json:"id"`
	YouTubeCommentID   string  `json:"youtube_comment_id"`
	ParentCommentID    string  `json:"parent_comment_id,omitempty"`
	TextDisplay        string  `json:"text_display"`
	AuthorDisplayName  string  `json:"author_display_name"`
	AuthorChannelID    string  `json:"author_channel_id"`
	PublishedAt        string  `json:"published_at,omitempty"`
	LikeCount          int     `json:"like_count"`
	TotalReplyCount    int     `json:"total_reply_count"`
	Classification     string  `json:"classification"`
	ConfidenceScore    float64 `json:"confidence_score"`
	ModelVersion       string  `json:"model_version,omitempty"`
	IsDeletedOnYouTube bool    `json:"is_deleted_on_youtube"`
	DeletionError      string  `json:"deletion_error,omitempty"`
}

type BatchDeleteResponse struct {
	AnalysisID   int64 `json:"analysis_id"`
	Attempted    int   `json:"attempted"`
	SuccessCount int   `json:"success_count"`
	FailureCount int   `json:"failure_count"`
}
