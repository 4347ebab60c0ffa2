package domain

import (
	"time"

	"github.com/google/uuid"
)

// Room groups participants and their messages. UpdatedAt is bumped whenever a
// message is sent so rooms can be listed by recency.
type Room struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Participants []Participant `json:"participants,omitempty"`
	Messages     []Message     `json:"messages,omitempty"`
}

// Participant is the membership record linking a user to a room.
type Participant struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_participants_user_room"`
	RoomID uuid.UUID `json:"roomId" gorm:"type:uuid;not null;uniqueIndex:idx_participants_user_room;index"`

	User User `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	Room Room `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
}

// Message is immutable once created; nothing in this system updates or
// deletes one.
type Message struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID  uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RoomID  uuid.UUID `json:"roomId" gorm:"type:uuid;not null;index"`
	Content string    `json:"content" gorm:"not null"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Room Room `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
}
