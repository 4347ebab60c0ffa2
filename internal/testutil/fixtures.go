package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/okotkov/chatrelay/internal/domain"
)

// UserBuilder builds test users with sensible defaults
type UserBuilder struct {
	email     string
	password  string
	firstName string
	lastName  string
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:     fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		password:  "password123",
		firstName: "Test",
		lastName:  "User",
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithName(firstName, lastName string) *UserBuilder {
	b.firstName = firstName
	b.lastName = lastName
	return b
}

// Build inserts the user and returns it together with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Email:         b.email,
		PasswordHash:  string(hash),
		FirstName:     b.firstName,
		LastName:      b.lastName,
		RefreshTokens: datatypes.JSONSlice[string]{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user, b.password
}

// RoomBuilder builds test rooms with participants and seeded messages
type RoomBuilder struct {
	participants []*domain.User
	messages     []seedMessage
	updatedAt    time.Time
}

type seedMessage struct {
	author  *domain.User
	content string
}

func NewRoomBuilder() *RoomBuilder {
	return &RoomBuilder{updatedAt: time.Now()}
}

func (b *RoomBuilder) WithParticipants(users ...*domain.User) *RoomBuilder {
	b.participants = append(b.participants, users...)
	return b
}

func (b *RoomBuilder) WithMessage(author *domain.User, content string) *RoomBuilder {
	b.messages = append(b.messages, seedMessage{author: author, content: content})
	return b
}

func (b *RoomBuilder) WithUpdatedAt(updatedAt time.Time) *RoomBuilder {
	b.updatedAt = updatedAt
	return b
}

func (b *RoomBuilder) Build(t *testing.T, db *gorm.DB) *domain.Room {
	t.Helper()

	room := &domain.Room{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: b.updatedAt,
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("failed to create test room: %v", err)
	}

	for _, user := range b.participants {
		participant := &domain.Participant{
			ID:        uuid.New(),
			UserID:    user.ID,
			RoomID:    room.ID,
			CreatedAt: time.Now(),
		}
		if err := db.Create(participant).Error; err != nil {
			t.Fatalf("failed to create test participant: %v", err)
		}
	}

	for i, seed := range b.messages {
		message := &domain.Message{
			ID:        uuid.New(),
			UserID:    seed.author.ID,
			RoomID:    room.ID,
			Content:   seed.content,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}
		if err := db.Create(message).Error; err != nil {
			t.Fatalf("failed to create test message: %v", err)
		}
	}

	return room
}
