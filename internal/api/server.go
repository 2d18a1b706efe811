package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"github.com/Deivitto/MetalFun/internal/metal"
	"github.com/Deivitto/MetalFun/internal/services"
)

type APIServer struct {
	app      *fiber.App
	sessions *session.Store

	coinService          services.CoinService
	txService            services.TransactionService
	replyService         services.ReplyService
	userService          services.UserService
	tokenMetadataService services.TokenMetadataService
	reconcileService     services.ReconcileService
	metalClient          metal.Client
}

func NewAPIServer(
	coinService services.CoinService,
	txService services.TransactionService,
	replyService services.ReplyService,
	userService services.UserService,
	tokenMetadataService services.TokenMetadataService,
	reconcileService services.ReconcileService,
	metalClient metal.Client,
) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app: app,
		sessions: session.New(session.Config{
			KeyGenerator: uuid.NewString,
		}),
		coinService:          coinService,
		txService:            txService,
		replyService:         replyService,
		userService:          userService,
		tokenMetadataService: tokenMetadataService,
		reconcileService:     reconcileService,
		metalClient:          metalClient,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Session auth
	s.app.Post("/api/register", s.handleRegister)
	s.app.Post("/api/login", s.handleLogin)
	s.app.Post("/api/logout", s.handleLogout)
	s.app.Get("/api/user", s.handleCurrentUser)
	s.app.Patch("/api/user", s.handleUpdateCurrentUser)
	s.app.Post("/api/user/friends/:friendId", s.handleSessionAddFriend)
	s.app.Delete("/api/user/friends/:friendId", s.handleSessionRemoveFriend)
	s.app.Post("/api/user/like-coin/:coinId", s.handleLikeCoin)
	s.app.Delete("/api/user/like-coin/:coinId", s.handleUnlikeCoin)
	s.app.Post("/api/user/like-reply/:replyId", s.handleLikeReplySession)
	s.app.Delete("/api/user/like-reply/:replyId", s.handleUnlikeReply)

	// Coins. Fixed paths are registered before the :id catch-all.
	s.app.Get("/api/coins", s.handleListCoins)
	s.app.Get("/api/coins/trending", s.handleTrendingCoins)
	s.app.Get("/api/coins/latest-created", s.handleLatestCreatedCoin)
	s.app.Get("/api/coins/latest-withdrawn", s.handleLatestWithdrawnCoin)
	s.app.Get("/api/coins/search", s.handleSearchCoins)
	s.app.Get("/api/coins/tag/:tag", s.handleCoinsByTag)
	s.app.Get("/api/coins/:id", s.handleGetCoin)
	s.app.Post("/api/coins", s.handleCreateCoin)
	s.app.Post("/api/coins/:id/withdraw", s.handleWithdrawCoin)

	// Ledger
	s.app.Get("/api/coins/:id/transactions", s.handleCoinTransactions)
	s.app.Post("/api/transactions", s.handleAppendTransaction)

	// Replies
	s.app.Get("/api/coins/:id/replies", s.handleCoinReplies)
	s.app.Post("/api/replies", s.handleCreateReply)
	s.app.Post("/api/replies/:id/like", s.handleLikeReply)

	// Token metadata
	s.app.Get("/api/token-metadata/:tokenId", s.handleGetTokenMetadata)
	s.app.Post("/api/token-metadata", s.handleCreateTokenMetadata)
	s.app.Patch("/api/token-metadata/:tokenId", s.handleUpdateTokenMetadata)

	// Users. The find route must come before :id.
	s.app.Get("/api/users/find", s.handleFindUser)
	s.app.Get("/api/users/:id", s.handleGetUser)
	s.app.Get("/api/users/:id/coins", s.handleUserCoins)
	s.app.Get("/api/users/:id/liked-coins", s.handleUserLikedCoins)
	s.app.Get("/api/users/:id/replies", s.handleUserReplies)
	s.app.Get("/api/users/:id/transactions", s.handleUserTransactions)
	s.app.Patch("/api/users/:id", s.handleUpdateUser)
	s.app.Post("/api/users/:id/friends", s.handleAddFriend)
	s.app.Get("/api/users/:id/friends", s.handleListFriends)
	s.app.Delete("/api/users/:id/friends/:friendId", s.handleRemoveFriend)

	// Phone verification
	s.app.Post("/api/users/:id/phone-verification/send", s.handleSendPhoneVerification)
	s.app.Post("/api/users/:id/phone-verification/verify", s.handleVerifyPhone)
	s.app.Get("/api/phone-verification/check/:phoneNumber", s.handleCheckPhoneNumber)

	// Registry proxy and reconciliation
	s.app.Get("/api/metal/tokens", s.handleMetalTokens)
	s.app.Post("/api/metal/create-token", s.handleMetalCreateToken)
	s.app.Post("/api/metal/create-liquidity", s.handleMetalCreateLiquidity)
	s.app.Get("/api/metal/token-status/:jobId", s.handleMetalTokenStatus)
	s.app.Post("/api/metal/holder/:userId", s.handleMetalHolder)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start blocks serving on the given port.
func (s *APIServer) Start(port string) error {
	return s.app.Listen(fmt.Sprintf(":%s", port))
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for in-process testing.
func (s *APIServer) App() *fiber.App {
	return s.app
}
