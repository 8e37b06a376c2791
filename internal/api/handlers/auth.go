package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sayantan/task-manager-api/internal/api/middleware"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Signup(r.Context(), service.SignupInput{
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
			log.Printf("ERROR [auth.Signup] failed to create user: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	resp := AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// Unknown email and wrong password look identical to clients
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "Unable to login", http.StatusBadRequest)
			return
		}
		log.Printf("ERROR [auth.Login] failed to login: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}
	token, ok := middleware.GetToken(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), user, token); err != nil {
		log.Printf("ERROR [auth.Logout] failed to logout: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	if err := h.authService.LogoutAll(r.Context(), user); err != nil {
		log.Printf("ERROR [auth.LogoutAll] failed to logout all sessions: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
