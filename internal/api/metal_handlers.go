package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Deivitto/MetalFun/internal/metal"
	"github.com/Deivitto/MetalFun/internal/services"
)

// handleMetalTokens pulls the registry token list and reconciles local coins
// against it before returning the raw list.
func (s *APIServer) handleMetalTokens(c *fiber.Ctx) error {
	list, err := s.reconcileService.SyncAllTokens(c.Context())
	if err != nil {
		return s.metalError(c, err, "Failed to fetch tokens from Metal API")
	}
	return c.JSON(list)
}

func (s *APIServer) handleMetalCreateToken(c *fiber.Ctx) error {
	var body struct {
		Name            string `json:"name"`
		Symbol          string `json:"symbol"`
		MerchantAddress string `json:"merchant_address"`
		CanDistribute   *bool  `json:"can_distribute"`
		CanLP           *bool  `json:"can_lp"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if body.Name == "" || body.Symbol == "" || body.MerchantAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Name, symbol, and merchant address are required",
		})
	}

	req := metal.CreateTokenRequest{
		Name:            body.Name,
		Symbol:          body.Symbol,
		MerchantAddress: body.MerchantAddress,
		CanDistribute:   true,
		CanLP:           true,
	}
	if body.CanDistribute != nil {
		req.CanDistribute = *body.CanDistribute
	}
	if body.CanLP != nil {
		req.CanLP = *body.CanLP
	}

	job, err := s.reconcileService.SubmitCreation(c.Context(), req)
	if err != nil {
		return s.metalError(c, err, "Failed to create token with Metal API")
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (s *APIServer) handleMetalCreateLiquidity(c *fiber.Ctx) error {
	var body struct {
		TokenAddress string `json:"token_address"`
	}
	if err := c.BodyParser(&body); err != nil || body.TokenAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Token address is required",
		})
	}

	result, err := s.metalClient.CreateLiquidity(c.Context(), body.TokenAddress)
	if err != nil {
		return s.metalError(c, err, "Failed to create liquidity with Metal API")
	}
	return c.JSON(result)
}

func (s *APIServer) handleMetalTokenStatus(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	status, err := s.reconcileService.ResolveJob(c.Context(), jobID)
	if err != nil {
		return s.metalError(c, err, "Failed to fetch token status from Metal API")
	}
	return c.JSON(status)
}

// handleMetalHolder provisions (or fetches) a custodial wallet for the user.
// When the session user is the target, their stored address is refreshed.
func (s *APIServer) handleMetalHolder(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User ID is required",
		})
	}

	wallet, err := s.metalClient.ProvisionWallet(c.Context(), userID)
	if err != nil {
		return s.metalError(c, err, "Failed to create or get holder from Metal API")
	}

	if currentID, ok := s.currentUserID(c); ok && wallet.Address != "" {
		if strconv.FormatUint(uint64(currentID), 10) == userID {
			_, err := s.userService.UpdateUser(currentID, services.UserUpdate{
				MetalAddress: &wallet.Address,
			})
			if err != nil {
				log.Printf("failed to refresh metal address for user %d: %v", currentID, err)
			}
		}
	}
	return c.JSON(wallet)
}

// metalError proxies the registry's status code when the failure came from
// the registry itself.
func (s *APIServer) metalError(c *fiber.Ctx, err error, message string) error {
	var apiErr *metal.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.StatusCode).JSON(fiber.Map{
			"message": message,
			"error":   apiErr.Body,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}
