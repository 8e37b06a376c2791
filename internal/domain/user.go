package domain

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MinPasswordLength = 7

type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Age       int            `json:"age" gorm:"default:0"`
	Avatar    []byte         `json:"-"`
	Tokens    datatypes.JSON `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Normalize trims user-supplied fields and lowercases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Password = strings.TrimSpace(u.Password)
}

// Validate checks field-level rules. Password rules only apply while the
// field still holds plaintext; once hashed the length checks are meaningless.
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if u.Age < 0 {
		return ErrNegativeAge
	}
	if !isBcryptHash(u.Password) {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if strings.Contains(strings.ToLower(u.Password), "password") {
			return ErrPasswordNotAllowed
		}
	}
	return nil
}

// BeforeSave normalizes, validates, and hashes a changed password before any
// insert or update goes to the database.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	if !isBcryptHash(u.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashed)
	}
	return nil
}

// BeforeDelete cascades: removing a user removes every task they own.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("owner_id = ?", u.ID).Delete(&Task{}).Error
}

// CheckPassword compares a plaintext candidate against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// TokenList decodes the stored session tokens.
func (u *User) TokenList() []string {
	var tokens []string
	if len(u.Tokens) > 0 {
		_ = json.Unmarshal(u.Tokens, &tokens)
	}
	return tokens
}

func (u *User) setTokens(tokens []string) {
	data, _ := json.Marshal(tokens)
	u.Tokens = datatypes.JSON(data)
}

// HasToken reports whether the exact token string is an active session.
func (u *User) HasToken(token string) bool {
	for _, t := range u.TokenList() {
		if t == token {
			return true
		}
	}
	return false
}

// AddToken appends a new session token.
func (u *User) AddToken(token string) {
	u.setTokens(append(u.TokenList(), token))
}

// RemoveToken drops exactly one session, leaving others logged in.
func (u *User) RemoveToken(token string) {
	tokens := u.TokenList()
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.setTokens(kept)
}

// ClearTokens logs the user out of every session.
func (u *User) ClearTokens() {
	u.setTokens([]string{})
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
