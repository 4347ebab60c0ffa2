package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/okotkov/chatrelay/internal/api/handlers"
	"github.com/okotkov/chatrelay/internal/service"
	"github.com/okotkov/chatrelay/internal/token"
	"github.com/okotkov/chatrelay/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, tokens *token.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	wsHandler := handlers.NewWebSocketHandler(hub, tokens)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/renew-tokens", authHandler.RenewTokens)
		r.Patch("/change-password", authHandler.ChangePassword)
		r.Delete("/logout", authHandler.LogOut)
		r.Delete("/logout-all", authHandler.LogOutAll)
		r.Delete("/delete-account", authHandler.DeleteAccount)
	})

	r.Get("/ws", wsHandler.Handle)

	return cors.AllowAll().Handler(r)
}
