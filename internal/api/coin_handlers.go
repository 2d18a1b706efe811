package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Deivitto/MetalFun/internal/services"
)

func (s *APIServer) handleListCoins(c *fiber.Ctx) error {
	includeWithdrawn := c.QueryBool("includeWithdrawn", false)
	coins, err := s.coinService.ListCoins(includeWithdrawn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch coins",
		})
	}
	return c.JSON(coins)
}

func (s *APIServer) handleTrendingCoins(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	coins, err := s.coinService.ListTrendingCoins(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch trending coins",
		})
	}
	return c.JSON(coins)
}

func (s *APIServer) handleLatestCreatedCoin(c *fiber.Ctx) error {
	coin, err := s.coinService.LatestCreatedCoin()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No coins found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch latest coin",
		})
	}
	return c.JSON(coin)
}

func (s *APIServer) handleLatestWithdrawnCoin(c *fiber.Ctx) error {
	coin, err := s.coinService.LatestWithdrawnCoin()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No withdrawn coins found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch latest withdrawn coin",
		})
	}
	return c.JSON(coin)
}

func (s *APIServer) handleSearchCoins(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Search query is required",
		})
	}
	includeWithdrawn := c.QueryBool("includeWithdrawn", false)
	coins, err := s.coinService.SearchCoins(query, includeWithdrawn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to search coins",
		})
	}
	return c.JSON(coins)
}

func (s *APIServer) handleCoinsByTag(c *fiber.Ctx) error {
	tag := c.Params("tag")
	includeWithdrawn := c.QueryBool("includeWithdrawn", false)
	coins, err := s.coinService.ListCoinsByTag(tag, includeWithdrawn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch coins by tag",
		})
	}
	return c.JSON(coins)
}

func (s *APIServer) handleGetCoin(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid coin ID",
		})
	}
	coin, err := s.coinService.GetCoin(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coin not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch coin",
		})
	}
	return c.JSON(coin)
}

func (s *APIServer) handleCreateCoin(c *fiber.Ctx) error {
	var req services.CreateCoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	coin, err := s.coinService.CreateCoin(req)
	if err != nil {
		if errors.Is(err, services.ErrSymbolExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(coin)
}

func (s *APIServer) handleWithdrawCoin(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid coin ID",
		})
	}
	coin, err := s.coinService.WithdrawCoin(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coin not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to withdraw coin",
		})
	}
	return c.JSON(coin)
}
