package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sayantan/task-manager-api/internal/api/handlers"
	"github.com/sayantan/task-manager-api/internal/api/middleware"
	"github.com/sayantan/task-manager-api/internal/service"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.AllowAll().Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)
	taskHandler := handlers.NewTaskHandler(services.Task)

	r.Route("/users", func(r chi.Router) {
		// Public routes
		r.Post("/", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/{id}/avatar", userHandler.GetAvatar)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Post("/logout", authHandler.Logout)
			r.Post("/logoutAll", authHandler.LogoutAll)
			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.Update)
			r.Delete("/me", userHandler.Delete)
			r.Post("/me/avatar", userHandler.UploadAvatar)
			r.Delete("/me/avatar", userHandler.DeleteAvatar)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))
		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Patch("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
