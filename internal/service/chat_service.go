package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/okotkov/chatrelay/internal/domain"
	"github.com/okotkov/chatrelay/internal/repository"
)

const touchTimeout = 5 * time.Second

type ChatService struct {
	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
}

func NewChatService(userRepo repository.UserRepository, roomRepo repository.RoomRepository, messageRepo repository.MessageRepository) *ChatService {
	return &ChatService{
		userRepo:    userRepo,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
	}
}

// MessageAuthor is the reduced author profile attached to messages.
type MessageAuthor struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
}

type MessageView struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	RoomID    uuid.UUID     `json:"roomId"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	User      MessageAuthor `json:"user"`
}

type RoomView struct {
	ID           uuid.UUID        `json:"id"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Participants []domain.Profile `json:"participants"`
	Messages     []MessageView    `json:"messages"`
}

// ListRooms returns the user's rooms, most recently updated first. Each room
// carries the other participants' public profiles and the full message
// history newest-first.
func (s *ChatService) ListRooms(ctx context.Context, userID uuid.UUID) ([]RoomView, error) {
	rooms, err := s.roomRepo.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		view := RoomView{
			ID:           room.ID,
			UpdatedAt:    room.UpdatedAt,
			Participants: make([]domain.Profile, 0, len(room.Participants)),
			Messages:     make([]MessageView, 0, len(room.Messages)),
		}

		for _, p := range room.Participants {
			if p.UserID == userID {
				continue
			}
			view.Participants = append(view.Participants, p.User.Profile())
		}

		for _, m := range room.Messages {
			view.Messages = append(view.Messages, MessageView{
				ID:        m.ID,
				UserID:    m.UserID,
				RoomID:    m.RoomID,
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
				User:      MessageAuthor{ID: m.User.ID, FirstName: m.User.FirstName},
			})
		}

		views = append(views, view)
	}

	return views, nil
}

// SendMessage persists a message and returns its annotated view together with
// the room's participant user ids for fan-out. The room-timestamp bump is a
// detached best-effort side effect; its failure never reaches the sender.
func (s *ChatService) SendMessage(ctx context.Context, authorID, roomID uuid.UUID, content string) (*MessageView, []uuid.UUID, error) {
	go func() {
		touchCtx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := s.roomRepo.TouchUpdatedAt(touchCtx, roomID); err != nil {
			log.Warn().Err(err).Str("roomId", roomID.String()).Msg("failed to bump room timestamp")
		}
	}()

	participants, err := s.roomRepo.GetParticipants(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading participants: %w", err)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading author: %w", err)
	}

	message := &domain.Message{
		ID:        uuid.New(),
		UserID:    authorID,
		RoomID:    roomID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, nil, fmt.Errorf("creating message: %w", err)
	}

	view := &MessageView{
		ID:        message.ID,
		UserID:    message.UserID,
		RoomID:    message.RoomID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
		User:      MessageAuthor{ID: author.ID, FirstName: author.FirstName},
	}

	participantIDs := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		participantIDs = append(participantIDs, p.UserID)
	}

	return view, participantIDs, nil
}
