package services

import (
	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ReplyService interface {
	CreateReply(req CreateReplyRequest) (*models.Reply, error)
	GetReply(id uint) (*models.Reply, error)
	LikeReply(id uint) (*models.Reply, error)
	ListReplies(coinID uint) ([]models.Reply, error)
	ListRepliesByUser(userID string) ([]models.Reply, error)
}

type CreateReplyRequest struct {
	CoinID      uint    `json:"coin_id" validate:"required"`
	UserID      string  `json:"user_id" validate:"required"`
	Username    *string `json:"username"`
	UserAvatar  *string `json:"user_avatar"`
	Content     string  `json:"content" validate:"required"`
	ParentID    *uint   `json:"parent_id"`
	IsAnonymous bool    `json:"is_anonymous"`
}

type replyService struct {
	db        *gorm.DB
	coins     CoinService
	validator *validator.Validate
}

func NewReplyService(db *gorm.DB, coins CoinService) ReplyService {
	return &replyService{db: db, coins: coins, validator: validator.New()}
}

// CreateReply appends a comment and bumps the coin's reply count.
func (s *replyService) CreateReply(req CreateReplyRequest) (*models.Reply, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	coin, err := s.coins.GetCoin(req.CoinID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{
		CoinID:      req.CoinID,
		UserID:      req.UserID,
		Username:    req.Username,
		UserAvatar:  req.UserAvatar,
		Content:     req.Content,
		ParentID:    req.ParentID,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.db.Create(reply).Error; err != nil {
		return nil, err
	}

	replyCount := coin.ReplyCount + 1
	if _, err := s.coins.UpdateCoin(coin.ID, CoinUpdate{ReplyCount: &replyCount}); err != nil {
		return nil, err
	}

	return reply, nil
}

func (s *replyService) GetReply(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := s.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// LikeReply increments the like counter unconditionally; repeated likes by
// the same user are not deduplicated at this layer.
func (s *replyService) LikeReply(id uint) (*models.Reply, error) {
	reply, err := s.GetReply(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Reply{}).
		Where("id = ?", id).
		Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
		return nil, err
	}
	reply.LikeCount++
	return reply, nil
}

func (s *replyService) ListReplies(coinID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := s.db.Where("coin_id = ?", coinID).
		Order("created_at desc, id desc").
		Find(&replies).Error
	return replies, err
}

func (s *replyService) ListRepliesByUser(userID string) ([]models.Reply, error) {
	var replies []models.Reply
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&replies).Error
	return replies, err
}
