package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/okotkov/chatrelay/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	// GetForUser returns every room the user participates in, most recently
	// updated first, with participants (and their users) and the full message
	// history newest-first (and message authors) loaded.
	GetForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Room, error)
	GetParticipants(ctx context.Context, roomID uuid.UUID) ([]*domain.Participant, error)
	AddParticipant(ctx context.Context, participant *domain.Participant) error
	TouchUpdatedAt(ctx context.Context, roomID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
}

type Repositories struct {
	User    UserRepository
	Room    RoomRepository
	Message MessageRepository
}
