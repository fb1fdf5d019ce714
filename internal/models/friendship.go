package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendRequest is pending until the receiver decides; deciding deletes it.
type FriendRequest struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SenderID   string    `json:"sender_id" gorm:"type:varchar(36);index"`
	ReceiverID string    `json:"receiver_id" gorm:"type:varchar(36);index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// CreateFriendRequest is the body of POST /friends/requests.
type CreateFriendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
}
