package models

import "time"

type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// Transaction is an immutable ledger entry. Appending one adjusts the
// referenced coin's aggregate stats; entries themselves are never mutated.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	CoinID    uint      `gorm:"not null;index" json:"coin_id"`
	Type      TradeType `gorm:"not null" json:"type"`
	Amount    string    `gorm:"not null" json:"amount"`
	SolAmount string    `gorm:"not null" json:"sol_amount"`
	CreatedAt time.Time `json:"created_at"`
}
