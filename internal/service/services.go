package service

import (
	"github.com/sayantan/task-manager-api/internal/config"
	"github.com/sayantan/task-manager-api/internal/repository"
)

// Mailer sends transactional mail. Callers never wait on delivery; failures
// are logged and dropped.
type Mailer interface {
	SendWelcome(email, name string) error
	SendGoodbye(email, name string) error
}

// ImageProcessor re-encodes uploaded avatar bytes to a fixed square PNG.
type ImageProcessor interface {
	Normalize(data []byte, width, height int) ([]byte, error)
}

type Services struct {
	Auth *AuthService
	User *UserService
	Task *TaskService
}

func NewServices(repos *repository.Repositories, mailer Mailer, images ImageProcessor, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, mailer, cfg),
		User: NewUserService(repos.User, mailer, images),
		Task: NewTaskService(repos.Task),
	}
}
