package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BanRequestStatus string

const (
	BanRequestPending  BanRequestStatus = "pending"
	BanRequestApproved BanRequestStatus = "approved"
	BanRequestRejected BanRequestStatus = "rejected"
)

// BanRequest is filed by faculty and resolved by an admin.
type BanRequest struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RequesterID string           `json:"requester_id" gorm:"type:varchar(36);index"`
	UserToBanID string           `json:"user_to_ban_id" gorm:"type:varchar(36);index"`
	PostID      string           `json:"post_id,omitempty"`
	Reason      string           `json:"reason"`
	Status      BanRequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ResolvedBy  string           `json:"resolved_by,omitempty" gorm:"type:varchar(36)"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (b *BanRequest) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type CreateBanRequest struct {
	UserToBanID string `json:"user_to_ban_id" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
	PostID      string `json:"post_id,omitempty"`
}
