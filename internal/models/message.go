package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message targets exactly one of ReceiverID or GroupID.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID   string             `json:"sender" bson:"sender"`
	ReceiverID string             `json:"receiver,omitempty" bson:"receiver,omitempty"`
	GroupID    string             `json:"group,omitempty" bson:"group,omitempty"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// IsGroup reports whether the message was sent to a group.
func (m *Message) IsGroup() bool { return m.GroupID != "" }

// MessageView is a message with its references populated for one viewer.
type MessageView struct {
	ID         string        `json:"id"`
	Sender     UserSummary   `json:"sender"`
	Receiver   *UserSummary  `json:"receiver,omitempty"`
	Group      *GroupSummary `json:"group,omitempty"`
	GroupID    string        `json:"groupId,omitempty"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
	IsSentByMe bool          `json:"isSentByMe"`
}

// MaxMessageLength bounds message content in characters.
const MaxMessageLength = 5000

// SendMessageRequest is shared by the HTTP and websocket entry points.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	Content    string `json:"content" validate:"required,max=5000"`
}
