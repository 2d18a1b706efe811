package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/services"
)

func (s *APIServer) handleFindUser(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username is required",
		})
	}
	user, err := s.userService.GetUserByUsername(username)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleGetUser(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	return c.JSON(user.Public())
}

// handleUserCoins lists coins created by the user, matched on username.
func (s *APIServer) handleUserCoins(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	coins, err := s.coinService.ListCoins(false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch coins",
		})
	}
	created := make([]models.Coin, 0)
	for _, coin := range coins {
		if coin.CreatedBy == user.Username {
			created = append(created, coin)
		}
	}
	return c.JSON(created)
}

func (s *APIServer) handleUserLikedCoins(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	coins, err := s.coinService.ListCoins(false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch coins",
		})
	}
	liked := make([]models.Coin, 0)
	for _, coin := range coins {
		id := strconv.FormatUint(uint64(coin.ID), 10)
		for _, likedID := range user.LikedCoinIDs {
			if likedID == id {
				liked = append(liked, coin)
				break
			}
		}
	}
	return c.JSON(liked)
}

func (s *APIServer) handleUserReplies(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	replies, err := s.replyService.ListRepliesByUser(strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch replies",
		})
	}
	return c.JSON(replies)
}

func (s *APIServer) handleUserTransactions(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	transactions, err := s.txService.ListTransactionsByUser(strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch transactions",
		})
	}
	return c.JSON(transactions)
}

// handleUpdateUser lets a user edit their own profile. Only the display
// fields are writable.
func (s *APIServer) handleUpdateUser(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	if !s.requireOwner(c, user.ID) {
		return nil
	}

	var body struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	updated, err := s.userService.UpdateUser(user.ID, services.UserUpdate{
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
		Avatar:      body.Avatar,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update user",
		})
	}
	return c.JSON(updated.Public())
}

func (s *APIServer) handleAddFriend(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	if !s.requireOwner(c, user.ID) {
		return nil
	}

	var body struct {
		FriendID uint `json:"friend_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.FriendID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Friend ID is required",
		})
	}

	if _, err := s.userService.GetUser(body.FriendID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Friend not found",
		})
	}

	friendID := strconv.FormatUint(uint64(body.FriendID), 10)
	for _, existing := range user.FriendIDs {
		if existing == friendID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Already friends with this user",
			})
		}
	}

	updated, err := s.userService.AddFriend(user.ID, body.FriendID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to add friend",
		})
	}
	return c.JSON(updated.Public())
}

func (s *APIServer) handleListFriends(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}

	friends := make([]map[string]interface{}, 0, len(user.FriendIDs))
	for _, friendID := range user.FriendIDs {
		id, err := strconv.ParseUint(friendID, 10, 32)
		if err != nil {
			continue
		}
		friend, err := s.userService.GetUser(uint(id))
		if err != nil {
			continue
		}
		friends = append(friends, friend.Public())
	}
	return c.JSON(friends)
}

func (s *APIServer) handleRemoveFriend(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	if !s.requireOwner(c, user.ID) {
		return nil
	}

	friendID, err := strconv.ParseUint(c.Params("friendId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid friend ID",
		})
	}

	encoded := strconv.FormatUint(friendID, 10)
	found := false
	for _, existing := range user.FriendIDs {
		if existing == encoded {
			found = true
			break
		}
	}
	if !found {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Not friends with this user",
		})
	}

	updated, err := s.userService.RemoveFriend(user.ID, uint(friendID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to remove friend",
		})
	}
	return c.JSON(updated.Public())
}

func (s *APIServer) handleSendPhoneVerification(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	if !s.requireOwner(c, user.ID) {
		return nil
	}

	var body struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.BodyParser(&body); err != nil || body.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Phone number is required",
		})
	}

	if existing, err := s.userService.GetUserByPhoneNumber(body.PhoneNumber); err == nil && existing.ID != user.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Phone number is already registered to another user",
		})
	}

	if _, err := s.userService.SetPhoneNumber(user.ID, body.PhoneNumber); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to set phone number",
		})
	}
	code, err := s.userService.GenerateVerificationCode(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate verification code",
		})
	}

	// No SMS gateway is wired; the code is returned for client-side delivery.
	return c.JSON(fiber.Map{
		"message": "Verification code sent successfully",
		"code":    code,
	})
}

func (s *APIServer) handleVerifyPhone(c *fiber.Ctx) error {
	user, ok := s.userFromParam(c)
	if !ok {
		return nil
	}
	if !s.requireOwner(c, user.ID) {
		return nil
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Verification code is required",
		})
	}
	if user.PhoneNumber == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User doesn't have a phone number",
		})
	}

	verified, err := s.userService.VerifyPhoneNumber(user.ID, body.Code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to verify phone number",
		})
	}
	if !verified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid or expired verification code",
		})
	}

	updated, err := s.userService.GetUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch user",
		})
	}
	return c.JSON(updated.Public())
}

// handleCheckPhoneNumber reports whether a phone number is verified and
// whether the caller may claim it.
func (s *APIServer) handleCheckPhoneNumber(c *fiber.Ctx) error {
	phoneNumber := c.Params("phoneNumber")
	if phoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Phone number is required",
		})
	}
	if !strings.HasPrefix(phoneNumber, "+") {
		phoneNumber = "+" + phoneNumber
	}

	holder, err := s.userService.GetUserByPhoneNumber(phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"is_verified": false, "is_available": true})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to check phone number",
		})
	}

	currentID, authenticated := s.currentUserID(c)
	isCurrentUser := authenticated && holder.ID == currentID
	return c.JSON(fiber.Map{
		"is_verified":  true,
		"is_available": isCurrentUser,
		"user_id":      holder.ID,
	})
}

// userFromParam resolves the :id path param. On failure the response has
// already been written and the bool is false.
func (s *APIServer) userFromParam(c *fiber.Ctx) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID",
		})
		return nil, false
	}
	user, err := s.userService.GetUser(uint(id))
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
		return nil, false
	}
	return user, true
}

// requireOwner enforces that the session user matches the target user.
func (s *APIServer) requireOwner(c *fiber.Ctx, userID uint) bool {
	currentID, ok := s.currentUserID(c)
	if !ok || currentID != userID {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Unauthorized",
		})
		return false
	}
	return true
}
