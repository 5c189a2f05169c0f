package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/internal/model"
)

// TestUser creates a verified user with a stub password hash.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	nano := time.Now().UnixNano()
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", nano%1000000),
		Email:        fmt.Sprintf("test_%d@example.com", nano),
		PasswordHash: &passwordHash,
		IsVerified:   true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

func WithUnverified() func(*model.User) {
	return func(u *model.User) {
		u.IsVerified = false
	}
}

// WithYouTubeConnected links a fake YouTube account.
func WithYouTubeConnected() func(*model.User) {
	return func(u *model.User) {
		access := "ya29.test-access-token"
		refresh := "1//test-refresh-token"
		expiry := time.Now().Add(time.Hour)
		u.YouTubeAccessToken = &access
		u.YouTubeRefreshToken = &refresh
		u.YouTubeTokenExpiresAt = &expiry
		u.YouTubeChannelID = "UCtestchannel"
		u.YouTubeChannelName = "Test Channel"
	}
}

// TestAnalysis creates an analysis run, COMPLETED unless overridden.
func TestAnalysis(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.VideoAnalysis)) *model.VideoAnalysis {
	t.Helper()

	analysis := &model.VideoAnalysis{
		UserID:         userID,
		YouTubeVideoID: "dQw4w9WgXcQ",
		VideoTitle:     fmt.Sprintf("Test Video %d", time.Now().UnixNano()%10000),
		Status:         model.StatusCompleted,
		RequestedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(analysis)
	}

	if err := db.Create(analysis).Error; err != nil {
		t.Fatalf("Failed to create test analysis: %v", err)
	}

	return analysis
}

func WithStatus(status string) func(*model.VideoAnalysis) {
	return func(a *model.VideoAnalysis) {
		a.Status = status
	}
}

func WithVideoID(videoID string) func(*model.VideoAnalysis) {
	return func(a *model.VideoAnalysis) {
		a.YouTubeVideoID = videoID
	}
}

func WithProcessingStartedAt(at time.Time) func(*model.VideoAnalysis) {
	return func(a *model.VideoAnalysis) {
		a.ProcessingStartedAt = &at
	}
}

// TestAnalyzedComment creates a classified comment for a run.
func TestAnalyzedComment(t *testing.T, db *gorm.DB, analysis *model.VideoAnalysis, opts ...func(*model.AnalyzedComment)) *model.AnalyzedComment {
	t.Helper()

	published := time.Now().Add(-time.Hour)
	comment := &model.AnalyzedComment{
		VideoAnalysisID:   analysis.ID,
		UserID:            analysis.UserID,
		YouTubeVideoID:    analysis.YouTubeVideoID,
		YouTubeCommentID:  fmt.Sprintf("yt_comment_%d", time.Now().UnixNano()),
		TextOriginal:      "a test comment",
		TextDisplay:       "a test comment",
		AuthorDisplayName: "commenter",
		AuthorChannelID:   "UCcommenter",
		PublishedAt:       &published,
		Classification:    model.ClassificationNonJudi,
		ConfidenceScore:   0.95,
		ModelVersion:      "distilbert-v1",
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

func WithClassification(classification string) func(*model.AnalyzedComment) {
	return func(c *model.AnalyzedComment) {
		c.Classification = classification
	}
}

func WithCommentID(id string) func(*model.AnalyzedComment) {
	return func(c *model.AnalyzedComment) {
		c.YouTubeCommentID = id
	}
}

func WithText(text string) func(*model.AnalyzedComment) {
	return func(c *model.AnalyzedComment) {
		c.TextOriginal = text
		c.TextDisplay = text
	}
}

func WithAuthorChannel(channelID string) func(*model.AnalyzedComment) {
	return func(c *model.AnalyzedComment) {
		c.AuthorChannelID = channelID
	}
}

// TestPasswordReset creates an unused reset token valid for 30 minutes.
func TestPasswordReset(t *testing.T, db *gorm.DB, userID int64, token string) *model.PasswordReset {
	t.Helper()

	reset := &model.PasswordReset{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	if err := db.Create(reset).Error; err != nil {
		t.Fatalf("Failed to create test password reset: %v", err)
	}

	return reset
}
