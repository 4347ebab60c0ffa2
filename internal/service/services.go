package service

import (
	"github.com/okotkov/chatrelay/internal/repository"
	"github.com/okotkov/chatrelay/internal/token"
)

type Services struct {
	Auth *AuthService
	Chat *ChatService
}

func NewServices(repos *repository.Repositories, tokens *token.Service) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, tokens),
		Chat: NewChatService(repos.User, repos.Room, repos.Message),
	}
}
