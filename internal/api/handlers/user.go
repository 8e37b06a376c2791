package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/api/middleware"
	"github.com/sayantan/task-manager-api/internal/avatar"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/service"
)

// maxAvatarBytes caps avatar uploads at 1 MB.
const maxAvatarBytes = 1 << 20

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserResponse is the public projection of a user. Password, tokens, and
// avatar bytes never appear in any JSON body.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Reject the whole request before touching the record
	if err := checkAllowedFields(body, "name", "email", "password", "age"); err != nil {
		http.Error(w, "Invalid updates!", http.StatusBadRequest)
		return
	}

	var req UpdateUserRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err = h.userService.Update(r.Context(), user, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			http.Error(w, "Email already exists", http.StatusBadRequest)
		case errors.As(err, &vErr):
			http.Error(w, vErr.Msg, http.StatusBadRequest)
		default:
			log.Printf("ERROR [user.Update] failed to update user: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	if err := h.userService.Delete(r.Context(), user); err != nil {
		log.Printf("ERROR [user.Delete] failed to delete user: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "Please upload an image", http.StatusBadRequest)
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		http.Error(w, "Please upload an image", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Please upload an image", http.StatusBadRequest)
		return
	}

	if err := h.userService.SetAvatar(r.Context(), user, data); err != nil {
		if errors.Is(err, avatar.ErrInvalidImage) {
			http.Error(w, "Please upload an image", http.StatusBadRequest)
			return
		}
		log.Printf("ERROR [user.UploadAvatar] failed to store avatar: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	if err := h.userService.DeleteAvatar(r.Context(), user); err != nil {
		log.Printf("ERROR [user.DeleteAvatar] failed to clear avatar: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetAvatar is public: anyone holding a user ID can fetch the stored image.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := h.userService.GetAvatar(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAvatarNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [user.GetAvatar] failed to fetch avatar: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// checkAllowedFields rejects a JSON body containing any key outside the
// given whitelist.
func checkAllowedFields(body []byte, allowed ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}

	for key := range fields {
		found := false
		for _, name := range allowed {
			if key == name {
				found = true
				break
			}
		}
		if !found {
			return errors.New("field not allowed: " + key)
		}
	}
	return nil
}
