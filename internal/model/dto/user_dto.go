package dto

type UserInfo struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	AvatarURL          string `json:"avatar_url"`
	IsVerified         bool   `json:"is_verified"`
	YouTubeConnected   bool   `json:"youtube_connected"`
	YouTubeChannelID   string `json:"youtube_channel_id,omitempty"`
	YouTubeChannelName string `json:"youtube_channel_name,omitempty"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
}
