package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Description string    `json:"description" gorm:"not null"`
	Completed   bool      `json:"completed" gorm:"default:false"`
	OwnerID     uuid.UUID `json:"owner" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Task) Validate() error {
	if t.Description == "" {
		return ErrDescriptionRequired
	}
	return nil
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)
	return t.Validate()
}
