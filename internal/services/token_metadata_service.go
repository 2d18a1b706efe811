package services

import (
	"github.com/Deivitto/MetalFun/internal/models"
	"gorm.io/gorm"
)

type TokenMetadataService interface {
	GetTokenMetadata(tokenID string) (*models.TokenMetadata, error)
	CreateTokenMetadata(metadata *models.TokenMetadata) (*models.TokenMetadata, error)
	UpdateTokenMetadata(tokenID string, updates TokenMetadataUpdate) (*models.TokenMetadata, error)
}

// TokenMetadataUpdate applies only non-nil fields.
type TokenMetadataUpdate struct {
	Description     *string     `json:"description"`
	Image           *string     `json:"image"`
	Tags            []string    `json:"tags"`
	MetalAddress    *string     `json:"metal_address"`
	MerchantAddress *string     `json:"merchant_address"`
	AdditionalData  models.JSON `json:"additional_data"`
}

type tokenMetadataService struct {
	db *gorm.DB
}

func NewTokenMetadataService(db *gorm.DB) TokenMetadataService {
	return &tokenMetadataService{db: db}
}

func (s *tokenMetadataService) GetTokenMetadata(tokenID string) (*models.TokenMetadata, error) {
	var metadata models.TokenMetadata
	if err := s.db.Where("token_id = ?", tokenID).First(&metadata).Error; err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (s *tokenMetadataService) CreateTokenMetadata(metadata *models.TokenMetadata) (*models.TokenMetadata, error) {
	if err := s.db.Create(metadata).Error; err != nil {
		return nil, err
	}
	return metadata, nil
}

func (s *tokenMetadataService) UpdateTokenMetadata(tokenID string, updates TokenMetadataUpdate) (*models.TokenMetadata, error) {
	metadata, err := s.GetTokenMetadata(tokenID)
	if err != nil {
		return nil, err
	}

	if updates.Description != nil {
		metadata.Description = updates.Description
	}
	if updates.Image != nil {
		metadata.Image = updates.Image
	}
	if updates.Tags != nil {
		metadata.Tags = updates.Tags
	}
	if updates.MetalAddress != nil {
		metadata.MetalAddress = updates.MetalAddress
	}
	if updates.MerchantAddress != nil {
		metadata.MerchantAddress = updates.MerchantAddress
	}
	if updates.AdditionalData != nil {
		metadata.AdditionalData = updates.AdditionalData
	}

	if err := s.db.Save(metadata).Error; err != nil {
		return nil, err
	}
	return metadata, nil
}
