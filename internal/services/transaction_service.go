package services

import (
	"fmt"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionService interface {
	AppendTransaction(req AppendTransactionRequest) (*models.Transaction, error)
	ListTransactions(coinID uint) ([]models.Transaction, error)
	ListTransactionsByUser(userID string) ([]models.Transaction, error)
}

type AppendTransactionRequest struct {
	UserID    string           `json:"user_id" validate:"required"`
	CoinID    uint             `json:"coin_id" validate:"required"`
	Type      models.TradeType `json:"type" validate:"required,oneof=buy sell"`
	Amount    string           `json:"amount" validate:"required"`
	SolAmount string           `json:"sol_amount" validate:"required"`
}

type transactionService struct {
	db         *gorm.DB
	coins      CoinService
	priceModel PriceModel
	validator  *validator.Validate
}

// NewTransactionService creates the ledger. The price model is injected so the
// randomized simulation step can be replaced in tests or by a real formula.
func NewTransactionService(db *gorm.DB, coins CoinService, priceModel PriceModel) TransactionService {
	return &transactionService{
		db:         db,
		coins:      coins,
		priceModel: priceModel,
		validator:  validator.New(),
	}
}

// AppendTransaction persists an immutable ledger entry and applies the fixed
// stat-update formula to the referenced coin: marketCap grows by the truncated
// solAmount, holderCount moves by one (floored at zero on sells), volume
// accumulates, and the price takes one model step. There is no rollback; once
// appended, the effect on the coin is permanent.
func (s *transactionService) AppendTransaction(req AppendTransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	solAmount, err := decimal.NewFromString(req.SolAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid sol amount %q: %w", req.SolAmount, err)
	}

	coin, err := s.coins.GetCoin(req.CoinID)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:    req.UserID,
		CoinID:    req.CoinID,
		Type:      req.Type,
		Amount:    req.Amount,
		SolAmount: req.SolAmount,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, err
	}

	marketCap := coin.MarketCap + solAmount.IntPart()

	holderCount := coin.HolderCount
	switch req.Type {
	case models.TradeTypeBuy:
		holderCount++
	case models.TradeTypeSell:
		if holderCount > 0 {
			holderCount--
		}
	}

	currentVolume, err := decimal.NewFromString(coin.Volume24h)
	if err != nil {
		currentVolume = decimal.Zero
	}
	volume := currentVolume.Add(solAmount).StringFixed(2)

	currentPrice, err := decimal.NewFromString(coin.Price)
	if err != nil {
		currentPrice = decimal.RequireFromString("0.001")
	}
	newPrice := s.priceModel.NextPrice(currentPrice, req.Type)

	priceChange := "0"
	if !currentPrice.IsZero() {
		priceChange = newPrice.Sub(currentPrice).
			Div(currentPrice).
			Mul(decimal.NewFromInt(100)).
			StringFixed(2)
	}

	priceStr := newPrice.StringFixed(6)
	if _, err := s.coins.UpdateCoin(coin.ID, CoinUpdate{
		MarketCap:      &marketCap,
		HolderCount:    &holderCount,
		Price:          &priceStr,
		PriceChange24h: &priceChange,
		Volume24h:      &volume,
	}); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *transactionService) ListTransactions(coinID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("coin_id = ?", coinID).
		Order("created_at desc, id desc").
		Find(&txs).Error
	return txs, err
}

func (s *transactionService) ListTransactionsByUser(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&txs).Error
	return txs, err
}
