package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// Subscription status values tracked per user. Mutated only by the
// subscription webhook processor (and manual support action).
const (
	SubscriptionStatusNone      = "none"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusPastDue   = "past_due"
)

type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email                string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password             string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role                 string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status               string         `gorm:"type:varchar(50);default:'inactive'" json:"status" validate:"oneof=active inactive disabled"`
	Locale               string         `gorm:"type:varchar(5);default:'en'" json:"locale"`
	IsPremium            bool           `gorm:"default:false;index" json:"is_premium"`
	SubscriptionStatus   string         `gorm:"type:varchar(32);not null;default:'none';index" json:"subscription_status"`
	SubscriptionID       *string        `gorm:"type:varchar(191);default:null;index" json:"subscription_id,omitempty"`
	SubscriptionVariant  *string        `gorm:"type:varchar(100);default:null" json:"subscription_variant,omitempty"`
	SubscriptionEndsAt   *time.Time     `gorm:"type:timestamp;default:null" json:"subscription_ends_at,omitempty"`
	ActivationToken      string         `gorm:"type:varchar(100);index" json:"-"`
	ActivationSentAt     *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	PasswordResetToken   string         `gorm:"type:varchar(100);default:null;index" json:"-"`
	PasswordResetSentAt  *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	APIKeyHash           string         `gorm:"type:char(64);default:'';index" json:"-"`
	APIKeyLastUsedAt     *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt          *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(username string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:               username,
		Email:              email,
		Password:           pw,
		Role:               ROLE_USER,
		Status:             STATUS_INACTIVE,
		Locale:             "en",
		SubscriptionStatus: SubscriptionStatusNone,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateActivationToken creates a random token and sets ActivationSentAt
func (u *User) GenerateActivationToken() error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	u.ActivationToken = token
	now := time.Now()
	u.ActivationSentAt = &now
	return nil
}

// IsActivationTokenValid checks token match and 24h expiry
func (u *User) IsActivationTokenValid(token string) bool {
	if u.ActivationToken == "" || u.ActivationSentAt == nil {
		return false
	}
	if u.ActivationToken != token {
		return false
	}
	return time.Since(*u.ActivationSentAt) < 24*time.Hour
}

// GeneratePasswordResetToken creates a random token and sets PasswordResetSentAt
func (u *User) GeneratePasswordResetToken() error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	u.PasswordResetToken = token
	now := time.Now()
	u.PasswordResetSentAt = &now
	return nil
}

// IsPasswordResetTokenValid checks token match and 2h expiry
func (u *User) IsPasswordResetTokenValid(token string) bool {
	if u.PasswordResetToken == "" || u.PasswordResetSentAt == nil {
		return false
	}
	if u.PasswordResetToken != token {
		return false
	}
	return time.Since(*u.PasswordResetSentAt) < 2*time.Hour
}

// ClearPasswordResetRequest clears the reset token fields
func (u *User) ClearPasswordResetRequest() {
	u.PasswordResetToken = ""
	u.PasswordResetSentAt = nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "tsc_"

// IssueAPIKey generates a new API key, stores its hash on the struct, and
// returns the raw secret. Callers must persist the struct afterwards.
func (u *User) IssueAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	rawKey := apiKeyPrefix + strings.ToLower(apiKeyEncoding.EncodeToString(b))
	u.APIKeyHash = HashAPIKey(rawKey)
	u.APIKeyLastUsedAt = nil
	return rawKey, nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
