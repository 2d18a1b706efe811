package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSON is a custom type for schemaless JSON columns
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// CoinMetadata is the external-registry linkage carried by a Coin. It holds
// the minted token's on-chain address and supply figures once known, and the
// pending-job bookkeeping while creation is still in flight.
type CoinMetadata struct {
	Address         string  `json:"address,omitempty"`
	Name            string  `json:"name,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	MerchantAddress string  `json:"merchantAddress,omitempty"`
	TotalSupply     float64 `json:"totalSupply,omitempty"`
	MerchantSupply  float64 `json:"merchantSupply,omitempty"`
	Price           float64 `json:"price,omitempty"`

	RemainingRewardSupply float64 `json:"remainingRewardSupply,omitempty"`
	StartingRewardSupply  float64 `json:"startingRewardSupply,omitempty"`

	// Job tracking for tokens minted asynchronously by the registry.
	JobID                string `json:"jobId,omitempty"`
	PendingTokenCreation bool   `json:"pendingTokenCreation,omitempty"`
	CreationFailed       bool   `json:"creationFailed,omitempty"`
	FailureReason        string `json:"failureReason,omitempty"`
}

// Coin represents one token, whether externally minted or purely simulated.
// Coins are never hard-deleted; withdrawal flags them instead.
type Coin struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Symbol      string `gorm:"not null;uniqueIndex" json:"symbol"`
	Description string `gorm:"not null" json:"description"`
	Image       string `json:"image"`
	CreatedBy   string `gorm:"not null" json:"created_by"`

	MarketCap           int64  `gorm:"default:0" json:"market_cap"`
	ReplyCount          int    `gorm:"default:0" json:"reply_count"`
	HolderCount         int    `gorm:"default:0" json:"holder_count"`
	PreviousHolderCount int    `gorm:"default:0" json:"previous_holder_count"`
	Price               string `gorm:"default:0.001" json:"price"`
	PriceChange24h      string `gorm:"default:0" json:"price_change_24h"`
	Volume24h           string `gorm:"default:0" json:"volume_24h"`

	IsMigrated  bool       `gorm:"default:false" json:"is_migrated"`
	IsTrending  bool       `gorm:"default:false" json:"is_trending"`
	IsWithdrawn bool       `gorm:"default:false;index" json:"is_withdrawn"`
	WithdrawnAt *time.Time `json:"withdrawn_at"`

	Tags     []string      `gorm:"serializer:json" json:"tags"`
	Metadata *CoinMetadata `gorm:"serializer:json" json:"metadata,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TokenMetadata is a side table keyed by the registry's token id, holding
// presentation fields the registry itself does not store.
type TokenMetadata struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	TokenID         string   `gorm:"not null;uniqueIndex" json:"token_id"`
	Description     *string  `json:"description"`
	Image           *string  `json:"image"`
	Tags            []string `gorm:"serializer:json" json:"tags"`
	MetalAddress    *string  `json:"metal_address"`
	MerchantAddress *string  `json:"merchant_address"`
	AdditionalData  JSON     `gorm:"type:text" json:"additional_data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
