package models

import "time"

// AnonymousUserID is the sentinel userId stored on anonymous replies.
const AnonymousUserID = "anonymous"

// Reply is a threaded comment on a coin. ParentID is a flat reference; no
// depth limit is enforced and nesting is reconstructed at read time.
type Reply struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CoinID      uint      `gorm:"not null;index" json:"coin_id"`
	UserID      string    `gorm:"not null" json:"user_id"`
	Username    *string   `json:"username"`
	UserAvatar  *string   `json:"user_avatar"`
	Content     string    `gorm:"not null" json:"content"`
	LikeCount   int       `gorm:"default:0" json:"like_count"`
	ParentID    *uint     `json:"parent_id"`
	IsAnonymous bool      `gorm:"default:false" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}
