package model

import (
	"time"
)

type User struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	GoogleID     *string `gorm:"column:google_id;size:64;uniqueIndex" json:"-"`
	AvatarURL    string  `gorm:"size:500" json:"avatar_url"`

	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	OtpCode      *string    `gorm:"size:16" json:"-"`
	OtpExpiresAt *time.Time `json:"-"`

	// YouTube account link. Tokens are only read by the youtube package.
	YouTubeAccessToken    *string    `gorm:"column:youtube_access_token;size:2048" json:"-"`
	YouTubeRefreshToken   *string    `gorm:"column:youtube_refresh_token;size:512" json:"-"`
	YouTubeTokenExpiresAt *time.Time `gorm:"column:youtube_token_expires_at" json:"-"`
	YouTubeChannelID      string     `gorm:"column:youtube_channel_id;size:64" json:"youtube_channel_id,omitempty"`
	YouTubeChannelName    string     `gorm:"column:youtube_channel_name;size:200" json:"youtube_channel_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// YouTubeConnected reports whether the user has a linked YouTube account.
func (u *User) YouTubeConnected() bool {
	return u.YouTubeAccessToken != nil && *u.YouTubeAccessToken != ""
}
