package models

import (
	"encoding/json"
	"time"
)

// User is an account with its social-graph membership sets. The id sets hold
// string-encoded foreign ids (relationship membership, not ownership).
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"not null;uniqueIndex" json:"username"`
	Email       string  `gorm:"not null;uniqueIndex" json:"email"`
	Password    string  `gorm:"not null" json:"password"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Avatar      *string `json:"avatar"`

	// Custodial wallet address provisioned by the external registry.
	MetalAddress string `json:"metal_address"`

	HoldingIDs    []string `gorm:"serializer:json" json:"holding_ids"`
	FriendIDs     []string `gorm:"serializer:json" json:"friend_ids"`
	LikedCoinIDs  []string `gorm:"serializer:json" json:"liked_coin_ids"`
	LikedReplyIDs []string `gorm:"serializer:json" json:"liked_reply_ids"`
	CoinIDs       []string `gorm:"serializer:json" json:"coin_ids"`

	PhoneNumber             *string    `json:"phone_number"`
	PhoneVerified           bool       `gorm:"default:false" json:"phone_verified"`
	PhoneVerificationCode   *string    `json:"-"`
	PhoneVerificationExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the user serialized without credential fields.
func (u *User) Public() map[string]interface{} {
	raw, _ := json.Marshal(u)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	delete(out, "password")
	return out
}
