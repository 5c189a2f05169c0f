package model

import (
	"time"
)

type PasswordReset struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// Valid reports whether the token can still be redeemed.
func (p *PasswordReset) Valid() bool {
	return !p.Used && time.Now().Before(p.ExpiresAt)
}
