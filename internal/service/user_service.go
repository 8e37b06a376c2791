package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

// AvatarSize is the square dimension every stored avatar is normalized to.
const AvatarSize = 250

var ErrAvatarNotFound = errors.New("avatar not found")

type UserService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	images   ImageProcessor
}

func NewUserService(userRepo repository.UserRepository, mailer Mailer, images ImageProcessor) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		images:   images,
	}
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

func (s *UserService) Update(ctx context.Context, user *domain.User, input UpdateUserInput) error {
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err == nil && existing != nil {
				return ErrEmailTaken
			}
		}
		user.Email = email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		user.Password = *input.Password
	}
	if input.Age != nil {
		user.Age = *input.Age
	}

	// BeforeSave re-validates and re-hashes a changed password
	return s.userRepo.Update(ctx, user)
}

// Delete removes the account and, through the model's delete hook, every task
// the user owns. The goodbye email is not awaited.
func (s *UserService) Delete(ctx context.Context, user *domain.User) error {
	go func() {
		if err := s.mailer.SendGoodbye(user.Email, user.Name); err != nil {
			log.Printf("ERROR [user.Delete] failed to send goodbye email: %v", err)
		}
	}()

	return s.userRepo.Delete(ctx, user)
}

// SetAvatar normalizes the upload to a 250x250 PNG and stores the bytes on
// the user record.
func (s *UserService) SetAvatar(ctx context.Context, user *domain.User, data []byte) error {
	normalized, err := s.images.Normalize(data, AvatarSize, AvatarSize)
	if err != nil {
		return err
	}
	user.Avatar = normalized
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) DeleteAvatar(ctx context.Context, user *domain.User) error {
	user.Avatar = nil
	return s.userRepo.Update(ctx, user)
}

// GetAvatar is the one public, unauthenticated read: raw PNG bytes by user ID.
func (s *UserService) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return user.Avatar, nil
}
