package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/services"
)

type UserServiceTestSuite struct {
	suite.Suite
	db          services.DBService
	userService services.UserService
}

func (suite *UserServiceTestSuite) SetupSuite() {
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.db = db

	suite.userService = services.NewUserService(db.GetDB())
}

func (suite *UserServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.db.GetDB().Where("1 = 1").Delete(&models.User{})
}

func (suite *UserServiceTestSuite) createUser(username string) *models.User {
	user, err := suite.userService.CreateUser(services.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "hunter22",
	})
	suite.Require().NoError(err)
	return user
}

func (suite *UserServiceTestSuite) TestCreateUser() {
	suite.Run("Password is hashed and an address is assigned", func() {
		user := suite.createUser("alice")
		suite.NotEqual("hunter22", user.Password)
		suite.Contains(user.Password, ".")
		suite.NotEmpty(user.MetalAddress)
		suite.Empty(user.FriendIDs)
	})

	suite.Run("Duplicate username is rejected", func() {
		suite.createUser("bob")
		_, err := suite.userService.CreateUser(services.CreateUserRequest{
			Username: "bob",
			Email:    "other@example.com",
			Password: "hunter22",
		})
		suite.ErrorIs(err, services.ErrUsernameTaken)
	})

	suite.Run("Duplicate email is rejected", func() {
		suite.createUser("carol")
		_, err := suite.userService.CreateUser(services.CreateUserRequest{
			Username: "carol2",
			Email:    "carol@example.com",
			Password: "hunter22",
		})
		suite.ErrorIs(err, services.ErrEmailTaken)
	})

	suite.Run("Short password fails validation", func() {
		_, err := suite.userService.CreateUser(services.CreateUserRequest{
			Username: "dave",
			Email:    "dave@example.com",
			Password: "abc",
		})
		suite.Error(err)
	})

	suite.Run("Public view omits the password", func() {
		user := suite.createUser("erin")
		public := user.Public()
		suite.NotContains(public, "password")
		suite.Equal("erin", public["username"])
	})
}

func (suite *UserServiceTestSuite) TestAuthenticate() {
	suite.createUser("frank")

	suite.Run("Valid credentials", func() {
		user, err := suite.userService.Authenticate("frank", "hunter22")
		suite.NoError(err)
		suite.Equal("frank", user.Username)
	})

	suite.Run("Wrong password", func() {
		_, err := suite.userService.Authenticate("frank", "wrong")
		suite.ErrorIs(err, services.ErrInvalidCredentials)
	})

	suite.Run("Unknown username", func() {
		_, err := suite.userService.Authenticate("ghost", "hunter22")
		suite.ErrorIs(err, services.ErrInvalidCredentials)
	})
}

func (suite *UserServiceTestSuite) TestUpdateUser() {
	user := suite.createUser("grace")

	displayName := "Grace H"
	bio := "compiler person"
	updated, err := suite.userService.UpdateUser(user.ID, services.UserUpdate{
		DisplayName: &displayName,
		Bio:         &bio,
	})
	suite.NoError(err)
	suite.Require().NotNil(updated.DisplayName)
	suite.Equal("Grace H", *updated.DisplayName)
	suite.Require().NotNil(updated.Bio)
	suite.Equal("compiler person", *updated.Bio)
	suite.Equal("grace", updated.Username)
}

func (suite *UserServiceTestSuite) TestFriends() {
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	suite.Run("Add friend", func() {
		updated, err := suite.userService.AddFriend(alice.ID, bob.ID)
		suite.NoError(err)
		suite.Len(updated.FriendIDs, 1)
	})

	suite.Run("Adding twice keeps a single entry", func() {
		updated, err := suite.userService.AddFriend(alice.ID, bob.ID)
		suite.NoError(err)
		suite.Len(updated.FriendIDs, 1)
	})

	suite.Run("Remove friend", func() {
		updated, err := suite.userService.RemoveFriend(alice.ID, bob.ID)
		suite.NoError(err)
		suite.Empty(updated.FriendIDs)
	})

	suite.Run("Removing a non-friend is a no-op", func() {
		updated, err := suite.userService.RemoveFriend(alice.ID, bob.ID)
		suite.NoError(err)
		suite.Empty(updated.FriendIDs)
	})
}

func (suite *UserServiceTestSuite) TestLikes() {
	user := suite.createUser("henry")

	suite.Run("Liked coins are a set", func() {
		_, err := suite.userService.AddLikedCoin(user.ID, 7)
		suite.NoError(err)
		updated, err := suite.userService.AddLikedCoin(user.ID, 7)
		suite.NoError(err)
		suite.Len(updated.LikedCoinIDs, 1)

		updated, err = suite.userService.RemoveLikedCoin(user.ID, 7)
		suite.NoError(err)
		suite.Empty(updated.LikedCoinIDs)
	})

	suite.Run("Liked replies are independent of liked coins", func() {
		_, err := suite.userService.AddLikedCoin(user.ID, 3)
		suite.NoError(err)
		updated, err := suite.userService.AddLikedReply(user.ID, 3)
		suite.NoError(err)
		suite.Len(updated.LikedCoinIDs, 1)
		suite.Len(updated.LikedReplyIDs, 1)
	})
}

func (suite *UserServiceTestSuite) TestPhoneVerification() {
	user := suite.createUser("ivy")

	suite.Run("Code must be generated after a number is set", func() {
		_, err := suite.userService.GenerateVerificationCode(user.ID)
		suite.Error(err)
	})

	suite.Run("Full verification flow", func() {
		_, err := suite.userService.SetPhoneNumber(user.ID, "+15551234567")
		suite.Require().NoError(err)

		code, err := suite.userService.GenerateVerificationCode(user.ID)
		suite.Require().NoError(err)
		suite.Len(code, 6)

		verified, err := suite.userService.VerifyPhoneNumber(user.ID, "000000")
		suite.NoError(err)
		suite.False(verified)

		verified, err = suite.userService.VerifyPhoneNumber(user.ID, code)
		suite.NoError(err)
		suite.True(verified)

		found, err := suite.userService.GetUserByPhoneNumber("+15551234567")
		suite.NoError(err)
		suite.Equal(user.ID, found.ID)
	})

	suite.Run("Unverified numbers are not discoverable", func() {
		other := suite.createUser("jack")
		_, err := suite.userService.SetPhoneNumber(other.ID, "+15559999999")
		suite.Require().NoError(err)

		_, err = suite.userService.GetUserByPhoneNumber("+15559999999")
		suite.Error(err)
	})

	suite.Run("Claiming a verified number revokes the previous holder", func() {
		claimant := suite.createUser("kate")
		_, err := suite.userService.SetPhoneNumber(claimant.ID, "+15551234567")
		suite.Require().NoError(err)

		previous, err := suite.userService.GetUser(user.ID)
		suite.NoError(err)
		suite.False(previous.PhoneVerified)
	})
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
