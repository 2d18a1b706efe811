package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Deivitto/MetalFun/internal/services"
)

const sessionUserKey = "userId"

// currentUserID returns the authenticated user's id from the session.
func (s *APIServer) currentUserID(c *fiber.Ctx) (uint, bool) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return 0, false
	}
	raw := sess.Get(sessionUserKey)
	id, ok := raw.(uint)
	if !ok {
		return 0, false
	}
	return id, true
}

func (s *APIServer) setSessionUser(c *fiber.Ctx, userID uint) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

func (s *APIServer) handleRegister(c *fiber.Ctx) error {
	var req services.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := s.userService.CreateUser(req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	if err := s.setSessionUser(c, user.ID); err != nil {
		log.Printf("failed to establish session for user %d: %v", user.ID, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

func (s *APIServer) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := s.userService.Authenticate(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid username or password",
		})
	}

	if err := s.setSessionUser(c, user.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to establish session",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleLogout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("failed to destroy session: %v", err)
		}
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *APIServer) handleCurrentUser(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	user, err := s.userService.GetUser(userID)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	return c.JSON(user.Public())
}

// handleUpdateCurrentUser updates the session user's profile. Only the
// display fields are writable through this endpoint.
func (s *APIServer) handleUpdateCurrentUser(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var body struct {
		DisplayName *string `json:"displayName"`
		Bio         *string `json:"bio"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := s.userService.UpdateUser(userID, services.UserUpdate{
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
		Avatar:      body.Avatar,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update user",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleSessionAddFriend(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	friendID, err := strconv.ParseUint(c.Params("friendId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid friend ID",
		})
	}
	if _, err := s.userService.GetUser(uint(friendID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Friend not found",
		})
	}
	user, err := s.userService.AddFriend(userID, uint(friendID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to add friend",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleSessionRemoveFriend(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	friendID, err := strconv.ParseUint(c.Params("friendId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid friend ID",
		})
	}
	user, err := s.userService.RemoveFriend(userID, uint(friendID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to remove friend",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleLikeCoin(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	coinID, err := strconv.ParseUint(c.Params("coinId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid coin ID",
		})
	}
	if _, err := s.coinService.GetCoin(uint(coinID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Coin not found",
		})
	}
	user, err := s.userService.AddLikedCoin(userID, uint(coinID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to like coin",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleUnlikeCoin(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	coinID, err := strconv.ParseUint(c.Params("coinId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid coin ID",
		})
	}
	user, err := s.userService.RemoveLikedCoin(userID, uint(coinID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to unlike coin",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleLikeReplySession(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	replyID, err := strconv.ParseUint(c.Params("replyId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid reply ID",
		})
	}
	if _, err := s.replyService.GetReply(uint(replyID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Reply not found",
		})
	}
	user, err := s.userService.AddLikedReply(userID, uint(replyID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to like reply",
		})
	}
	return c.JSON(user.Public())
}

func (s *APIServer) handleUnlikeReply(c *fiber.Ctx) error {
	userID, ok := s.currentUserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	replyID, err := strconv.ParseUint(c.Params("replyId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid reply ID",
		})
	}
	user, err := s.userService.RemoveLikedReply(userID, uint(replyID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to unlike reply",
		})
	}
	return c.JSON(user.Public())
}
