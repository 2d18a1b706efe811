package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrSymbolExists is returned when creating a coin whose symbol is already
// taken. Symbol uniqueness is enforced at the store boundary.
var ErrSymbolExists = errors.New("coin with this symbol already exists")

const defaultTrendingLimit = 9

type CoinService interface {
	CreateCoin(req CreateCoinRequest) (*models.Coin, error)
	GetCoin(id uint) (*models.Coin, error)
	GetCoinBySymbol(symbol string) (*models.Coin, error)
	GetCoinByTokenAddress(address string) (*models.Coin, error)
	GetCoinByJobID(jobID string) (*models.Coin, error)
	ListCoins(includeWithdrawn bool) ([]models.Coin, error)
	ListTrendingCoins(limit int) ([]models.Coin, error)
	ListCoinsByTag(tag string, includeWithdrawn bool) ([]models.Coin, error)
	SearchCoins(query string, includeWithdrawn bool) ([]models.Coin, error)
	UpdateCoin(id uint, updates CoinUpdate) (*models.Coin, error)
	WithdrawCoin(id uint) (*models.Coin, error)
	LatestCreatedCoin() (*models.Coin, error)
	LatestWithdrawnCoin() (*models.Coin, error)
}

// CreateCoinRequest carries the fields a caller may set at creation time.
// Stats default to zero; the reconciler passes externally sourced values when
// materializing a registry token that has no local record yet.
type CreateCoinRequest struct {
	Name        string `validate:"required"`
	Symbol      string `validate:"required"`
	Description string `validate:"required"`
	Image       string
	CreatedBy   string `validate:"required"`

	IsMigrated bool
	IsTrending bool
	Tags       []string

	MarketCap           int64
	HolderCount         int
	PreviousHolderCount int
	Price               string
	PriceChange24h      string
	Volume24h           string

	Metadata *models.CoinMetadata
}

// CoinUpdate is a shallow merge: only non-nil fields are applied.
// Last write wins on concurrent updates to the same coin.
type CoinUpdate struct {
	Name                *string
	Description         *string
	Image               *string
	MarketCap           *int64
	ReplyCount          *int
	HolderCount         *int
	PreviousHolderCount *int
	Price               *string
	PriceChange24h      *string
	Volume24h           *string
	IsMigrated          *bool
	IsTrending          *bool
	Tags                []string
	Metadata            *models.CoinMetadata
}

type coinService struct {
	db        *gorm.DB
	validator *validator.Validate
}

func NewCoinService(db *gorm.DB) CoinService {
	return &coinService{db: db, validator: validator.New()}
}

func (s *coinService) CreateCoin(req CreateCoinRequest) (*models.Coin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var existing models.Coin
	err := s.db.Where("symbol = ?", req.Symbol).First(&existing).Error
	if err == nil {
		return nil, ErrSymbolExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	price := req.Price
	if price == "" {
		price = "0.001"
	}
	priceChange := req.PriceChange24h
	if priceChange == "" {
		priceChange = "0"
	}
	volume := req.Volume24h
	if volume == "" {
		volume = "0"
	}

	coin := &models.Coin{
		Name:                req.Name,
		Symbol:              req.Symbol,
		Description:         req.Description,
		Image:               req.Image,
		CreatedBy:           req.CreatedBy,
		MarketCap:           req.MarketCap,
		HolderCount:         req.HolderCount,
		PreviousHolderCount: req.PreviousHolderCount,
		Price:               price,
		PriceChange24h:      priceChange,
		Volume24h:           volume,
		IsMigrated:          req.IsMigrated,
		IsTrending:          req.IsTrending,
		Tags:                req.Tags,
		Metadata:            req.Metadata,
		LastUpdated:         time.Now(),
	}
	if err := s.db.Create(coin).Error; err != nil {
		return nil, err
	}
	return coin, nil
}

func (s *coinService) GetCoin(id uint) (*models.Coin, error) {
	var coin models.Coin
	if err := s.db.First(&coin, id).Error; err != nil {
		return nil, err
	}
	return &coin, nil
}

// GetCoinBySymbol does an exact, case-sensitive match.
func (s *coinService) GetCoinBySymbol(symbol string) (*models.Coin, error) {
	var coin models.Coin
	if err := s.db.Where("symbol = ?", symbol).Order("id asc").First(&coin).Error; err != nil {
		return nil, err
	}
	return &coin, nil
}

// GetCoinByTokenAddress scans for the coin whose metadata carries the given
// registry address. Withdrawn coins are included so a re-listed token still
// matches its original record.
func (s *coinService) GetCoinByTokenAddress(address string) (*models.Coin, error) {
	if address == "" {
		return nil, gorm.ErrRecordNotFound
	}
	coins, err := s.ListCoins(true)
	if err != nil {
		return nil, err
	}
	for i := range coins {
		if coins[i].Metadata != nil && coins[i].Metadata.Address == address {
			return &coins[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// GetCoinByJobID scans for the placeholder coin tracking the given creation
// job. At most one match is expected; the first (lowest id) wins.
func (s *coinService) GetCoinByJobID(jobID string) (*models.Coin, error) {
	if jobID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	coins, err := s.ListCoins(true)
	if err != nil {
		return nil, err
	}
	for i := range coins {
		if coins[i].Metadata != nil && coins[i].Metadata.JobID == jobID {
			return &coins[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *coinService) ListCoins(includeWithdrawn bool) ([]models.Coin, error) {
	query := s.db.Order("id asc")
	if !includeWithdrawn {
		query = query.Where("is_withdrawn = ?", false)
	}
	var coins []models.Coin
	err := query.Find(&coins).Error
	return coins, err
}

// ListTrendingCoins orders by holder growth since the last snapshot,
// ties broken by insertion order.
func (s *coinService) ListTrendingCoins(limit int) ([]models.Coin, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	var coins []models.Coin
	err := s.db.Where("is_withdrawn = ?", false).
		Order("(holder_count - previous_holder_count) desc, id asc").
		Limit(limit).
		Find(&coins).Error
	return coins, err
}

func (s *coinService) ListCoinsByTag(tag string, includeWithdrawn bool) ([]models.Coin, error) {
	coins, err := s.ListCoins(includeWithdrawn)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Coin, 0)
	for _, coin := range coins {
		for _, t := range coin.Tags {
			if t == tag {
				matched = append(matched, coin)
				break
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MarketCap > matched[j].MarketCap
	})
	return matched, nil
}

// SearchCoins does a case-insensitive substring match against name, symbol
// and description.
func (s *coinService) SearchCoins(query string, includeWithdrawn bool) ([]models.Coin, error) {
	coins, err := s.ListCoins(includeWithdrawn)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	matched := make([]models.Coin, 0)
	for _, coin := range coins {
		if strings.Contains(strings.ToLower(coin.Name), q) ||
			strings.Contains(strings.ToLower(coin.Symbol), q) ||
			strings.Contains(strings.ToLower(coin.Description), q) {
			matched = append(matched, coin)
		}
	}
	return matched, nil
}

func (s *coinService) UpdateCoin(id uint, updates CoinUpdate) (*models.Coin, error) {
	coin, err := s.GetCoin(id)
	if err != nil {
		return nil, err
	}

	if updates.Name != nil {
		coin.Name = *updates.Name
	}
	if updates.Description != nil {
		coin.Description = *updates.Description
	}
	if updates.Image != nil {
		coin.Image = *updates.Image
	}
	if updates.MarketCap != nil {
		coin.MarketCap = *updates.MarketCap
	}
	if updates.ReplyCount != nil {
		coin.ReplyCount = *updates.ReplyCount
	}
	if updates.HolderCount != nil {
		coin.HolderCount = *updates.HolderCount
	}
	if updates.PreviousHolderCount != nil {
		coin.PreviousHolderCount = *updates.PreviousHolderCount
	}
	if updates.Price != nil {
		coin.Price = *updates.Price
	}
	if updates.PriceChange24h != nil {
		coin.PriceChange24h = *updates.PriceChange24h
	}
	if updates.Volume24h != nil {
		coin.Volume24h = *updates.Volume24h
	}
	if updates.IsMigrated != nil {
		coin.IsMigrated = *updates.IsMigrated
	}
	if updates.IsTrending != nil {
		coin.IsTrending = *updates.IsTrending
	}
	if updates.Tags != nil {
		coin.Tags = updates.Tags
	}
	if updates.Metadata != nil {
		coin.Metadata = updates.Metadata
	}
	coin.LastUpdated = time.Now()

	if err := s.db.Save(coin).Error; err != nil {
		return nil, err
	}
	return coin, nil
}

// WithdrawCoin flags the coin as withdrawn. Idempotent: re-withdrawing only
// re-stamps the timestamp. Coins are never hard-deleted.
func (s *coinService) WithdrawCoin(id uint) (*models.Coin, error) {
	coin, err := s.GetCoin(id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	coin.IsWithdrawn = true
	coin.WithdrawnAt = &now
	if err := s.db.Save(coin).Error; err != nil {
		return nil, err
	}
	return coin, nil
}

func (s *coinService) LatestCreatedCoin() (*models.Coin, error) {
	var coin models.Coin
	err := s.db.Where("is_withdrawn = ?", false).
		Order("created_at desc, id desc").
		First(&coin).Error
	if err != nil {
		return nil, err
	}
	return &coin, nil
}

func (s *coinService) LatestWithdrawnCoin() (*models.Coin, error) {
	var coin models.Coin
	err := s.db.Where("is_withdrawn = ? AND withdrawn_at IS NOT NULL", true).
		Order("withdrawn_at desc, id desc").
		First(&coin).Error
	if err != nil {
		return nil, err
	}
	return &coin, nil
}
