package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/config"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	// Check for a duplicate before hitting the unique index
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	user := &domain.User{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    email,
		Password: input.Password,
		Age:      input.Age,
	}
	user.ClearTokens()

	// BeforeSave validates the fields and hashes the password
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendAsync("welcome", func() error {
		return s.mailer.SendWelcome(user.Email, user.Name)
	})

	return s.issueToken(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(ctx, user)
}

// issueToken signs a new JWT, appends it to the user's active sessions, and
// persists the list so the middleware can honor later revocation.
func (s *AuthService) issueToken(ctx context.Context, user *domain.User) (*AuthResult, error) {
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	user.AddToken(token)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate verifies a bearer token's signature and expiry, then requires
// the exact token string to still be in the user's stored session list. A
// signed-but-revoked token does not authenticate.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.HasToken(tokenString) {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// Logout revokes exactly the presented session token.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, token string) error {
	user.RemoveToken(token)
	return s.userRepo.Update(ctx, user)
}

// LogoutAll revokes every session for the user.
func (s *AuthService) LogoutAll(ctx context.Context, user *domain.User) error {
	user.ClearTokens()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) sendAsync(kind string, send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Printf("ERROR [auth.sendAsync] failed to send %s email: %v", kind, err)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
