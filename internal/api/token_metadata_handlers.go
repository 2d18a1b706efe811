package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/services"
)

func (s *APIServer) handleGetTokenMetadata(c *fiber.Ctx) error {
	tokenID := c.Params("tokenId")
	metadata, err := s.tokenMetadataService.GetTokenMetadata(tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Token metadata not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch token metadata",
		})
	}
	return c.JSON(metadata)
}

func (s *APIServer) handleCreateTokenMetadata(c *fiber.Ctx) error {
	var metadata models.TokenMetadata
	if err := c.BodyParser(&metadata); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if metadata.TokenID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Token ID is required",
		})
	}

	created, err := s.tokenMetadataService.CreateTokenMetadata(&metadata)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create token metadata",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *APIServer) handleUpdateTokenMetadata(c *fiber.Ctx) error {
	tokenID := c.Params("tokenId")

	var updates services.TokenMetadataUpdate
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	metadata, err := s.tokenMetadataService.UpdateTokenMetadata(tokenID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Token metadata not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update token metadata",
		})
	}
	return c.JSON(metadata)
}
