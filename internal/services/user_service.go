package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// phoneCodeTTL is how long a phone verification code stays valid.
const phoneCodeTTL = 30 * time.Minute

type UserService interface {
	CreateUser(req CreateUserRequest) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
	GetUser(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByPhoneNumber(phoneNumber string) (*models.User, error)
	UpdateUser(id uint, updates UserUpdate) (*models.User, error)

	AddFriend(userID, friendID uint) (*models.User, error)
	RemoveFriend(userID, friendID uint) (*models.User, error)
	AddLikedCoin(userID, coinID uint) (*models.User, error)
	RemoveLikedCoin(userID, coinID uint) (*models.User, error)
	AddLikedReply(userID, replyID uint) (*models.User, error)
	RemoveLikedReply(userID, replyID uint) (*models.User, error)

	SetPhoneNumber(userID uint, phoneNumber string) (*models.User, error)
	GenerateVerificationCode(userID uint) (string, error)
	VerifyPhoneNumber(userID uint, code string) (bool, error)
	RevokePhoneVerification(phoneNumber string) error
}

type CreateUserRequest struct {
	Username     string  `json:"username" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	DisplayName  *string `json:"display_name"`
	Bio          *string `json:"bio"`
	Avatar       *string `json:"avatar"`
	MetalAddress string  `json:"metal_address"`
}

// UserUpdate is a shallow merge: only non-nil fields are applied. Password is
// expected to be pre-hashed by the caller.
type UserUpdate struct {
	DisplayName   *string
	Bio           *string
	Avatar        *string
	Password      *string
	MetalAddress  *string
	PhoneVerified *bool
}

type userService struct {
	db        *gorm.DB
	validator *validator.Validate
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db, validator: validator.New()}
}

func (s *userService) CreateUser(req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.GetUserByUsername(req.Username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.GetUserByEmail(req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	metalAddress := req.MetalAddress
	if metalAddress == "" {
		metalAddress = utils.RandomHexAddress()
	}

	user := &models.User{
		Username:      req.Username,
		Email:         req.Email,
		Password:      hashed,
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		Avatar:        req.Avatar,
		MetalAddress:  metalAddress,
		HoldingIDs:    []string{},
		FriendIDs:     []string{},
		LikedCoinIDs:  []string{},
		LikedReplyIDs: []string{},
		CoinIDs:       []string{},
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !utils.ComparePassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByPhoneNumber only matches verified numbers.
func (s *userService) GetUserByPhoneNumber(phoneNumber string) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone_number = ? AND phone_verified = ?", phoneNumber, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) UpdateUser(id uint, updates UserUpdate) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if updates.DisplayName != nil {
		user.DisplayName = updates.DisplayName
	}
	if updates.Bio != nil {
		user.Bio = updates.Bio
	}
	if updates.Avatar != nil {
		user.Avatar = updates.Avatar
	}
	if updates.Password != nil {
		user.Password = *updates.Password
	}
	if updates.MetalAddress != nil {
		user.MetalAddress = *updates.MetalAddress
	}
	if updates.PhoneVerified != nil {
		user.PhoneVerified = *updates.PhoneVerified
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) AddFriend(userID, friendID uint) (*models.User, error) {
	return s.addToSet(userID, friendID, func(u *models.User) *[]string { return &u.FriendIDs })
}

func (s *userService) RemoveFriend(userID, friendID uint) (*models.User, error) {
	return s.removeFromSet(userID, friendID, func(u *models.User) *[]string { return &u.FriendIDs })
}

func (s *userService) AddLikedCoin(userID, coinID uint) (*models.User, error) {
	return s.addToSet(userID, coinID, func(u *models.User) *[]string { return &u.LikedCoinIDs })
}

func (s *userService) RemoveLikedCoin(userID, coinID uint) (*models.User, error) {
	return s.removeFromSet(userID, coinID, func(u *models.User) *[]string { return &u.LikedCoinIDs })
}

func (s *userService) AddLikedReply(userID, replyID uint) (*models.User, error) {
	return s.addToSet(userID, replyID, func(u *models.User) *[]string { return &u.LikedReplyIDs })
}

func (s *userService) RemoveLikedReply(userID, replyID uint) (*models.User, error) {
	return s.removeFromSet(userID, replyID, func(u *models.User) *[]string { return &u.LikedReplyIDs })
}

// addToSet appends the string-encoded id to the selected membership set,
// skipping duplicates.
func (s *userService) addToSet(userID, id uint, set func(*models.User) *[]string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	target := set(user)
	encoded := strconv.FormatUint(uint64(id), 10)
	for _, existing := range *target {
		if existing == encoded {
			return user, nil
		}
	}
	*target = append(*target, encoded)
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) removeFromSet(userID, id uint, set func(*models.User) *[]string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	target := set(user)
	encoded := strconv.FormatUint(uint64(id), 10)
	filtered := make([]string, 0, len(*target))
	for _, existing := range *target {
		if existing != encoded {
			filtered = append(filtered, existing)
		}
	}
	*target = filtered
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetPhoneNumber assigns an unverified phone number. If another user holds the
// number verified, their verification is revoked first.
func (s *userService) SetPhoneNumber(userID uint, phoneNumber string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.GetUserByPhoneNumber(phoneNumber); err == nil && existing.ID != userID {
		if err := s.RevokePhoneVerification(phoneNumber); err != nil {
			return nil, err
		}
	}

	user.PhoneNumber = &phoneNumber
	user.PhoneVerified = false
	user.PhoneVerificationCode = nil
	user.PhoneVerificationExpiry = nil
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GenerateVerificationCode creates a 6-digit code valid for 30 minutes.
func (s *userService) GenerateVerificationCode(userID uint) (string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}
	if user.PhoneNumber == nil {
		return "", fmt.Errorf("user %d has no phone number set", userID)
	}

	code := strconv.Itoa(100000 + rand.Intn(900000))
	expiry := time.Now().Add(phoneCodeTTL)
	user.PhoneVerificationCode = &code
	user.PhoneVerificationExpiry = &expiry
	if err := s.db.Save(user).Error; err != nil {
		return "", err
	}
	return code, nil
}

func (s *userService) VerifyPhoneNumber(userID uint, code string) (bool, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return false, err
	}
	if user.PhoneNumber == nil || user.PhoneVerificationCode == nil {
		return false, nil
	}
	if user.PhoneVerificationExpiry == nil || time.Now().After(*user.PhoneVerificationExpiry) {
		return false, nil
	}
	if *user.PhoneVerificationCode != code {
		return false, nil
	}

	user.PhoneVerified = true
	user.PhoneVerificationCode = nil
	user.PhoneVerificationExpiry = nil
	if err := s.db.Save(user).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) RevokePhoneVerification(phoneNumber string) error {
	return s.db.Model(&models.User{}).
		Where("phone_number = ? AND phone_verified = ?", phoneNumber, true).
		Update("phone_verified", false).Error
}
