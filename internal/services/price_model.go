package services

import (
	"math/rand"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/shopspring/decimal"
)

// PriceModel produces the next coin price after a trade. The ledger does not
// care how the step is derived, so the simulation can be swapped for a real
// pricing formula without touching the append path.
type PriceModel interface {
	NextPrice(current decimal.Decimal, tradeType models.TradeType) decimal.Decimal
}

// randomWalkModel steps the price by a random amount within maxStep, upward
// on buys and downward on sells. It stands in for real market movement.
type randomWalkModel struct {
	maxStep decimal.Decimal
}

// NewRandomWalkModel returns the default simulation price model with a
// maximum step of 0.001 per trade.
func NewRandomWalkModel() PriceModel {
	return &randomWalkModel{maxStep: decimal.RequireFromString("0.001")}
}

func (m *randomWalkModel) NextPrice(current decimal.Decimal, tradeType models.TradeType) decimal.Decimal {
	step := m.maxStep.Mul(decimal.NewFromFloat(rand.Float64()))
	if tradeType == models.TradeTypeSell {
		step = step.Neg()
	}
	return current.Add(step).Round(6)
}
