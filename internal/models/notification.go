package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind enumerates what caused a notification.
type NotificationKind string

const (
	KindNewMessage            NotificationKind = "new_message"
	KindNewGroupMessage       NotificationKind = "new_group_message"
	KindFriendRequest         NotificationKind = "friend_request"
	KindFriendRequestAccepted NotificationKind = "friend_request_accepted"
	KindFriendRequestDeclined NotificationKind = "friend_request_declined"
	KindLike                  NotificationKind = "like"
	KindComment               NotificationKind = "comment"
	KindDislike               NotificationKind = "dislike"
	KindBanRequest            NotificationKind = "ban_request"
	KindBanRequestApproved    NotificationKind = "ban_request_approved"
	KindBanRequestRejected    NotificationKind = "ban_request_rejected"
)

// Time a notification survives after its last aggregation update.
const (
	ViewedTTL   = 3 * 24 * time.Hour
	UnviewedTTL = 7 * 24 * time.Hour
)

// Refs are the typed references a notification may carry.
// Which ones are set depends on the notification kind; see Subject.
type Refs struct {
	RequestID    string `json:"requestId,omitempty" bson:"requestId,omitempty"`
	MessageID    string `json:"messageId,omitempty" bson:"messageId,omitempty"`
	PostID       string `json:"postId,omitempty" bson:"postId,omitempty"`
	CommentID    string `json:"commentId,omitempty" bson:"commentId,omitempty"`
	BanRequestID string `json:"banRequestId,omitempty" bson:"banRequestId,omitempty"`
	SenderID     string `json:"senderId,omitempty" bson:"senderId,omitempty"`
}

// Notification is stored in MongoDB, one document per (user, type, relatedId).
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user" bson:"user"`
	Type      NotificationKind   `json:"type" bson:"type"`
	Message   string             `json:"message" bson:"message"`
	RelatedID string             `json:"relatedId,omitempty" bson:"relatedId,omitempty"`
	Refs      `bson:",inline"`
	Count     int       `json:"count" bson:"count"`
	Read      bool      `json:"read" bson:"read"`
	Viewed    bool      `json:"viewed" bson:"viewed"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Deadline is the instant after which the notification is expired.
func (n *Notification) Deadline() time.Time {
	if n.Viewed {
		return n.CreatedAt.Add(ViewedTTL)
	}
	return n.CreatedAt.Add(UnviewedTTL)
}

// Expired reports whether now is strictly past the deadline.
func (n *Notification) Expired(now time.Time) bool {
	return now.After(n.Deadline())
}

// NotificationKey identifies the aggregation slot of a notification.
type NotificationKey struct {
	UserID    string
	Type      NotificationKind
	RelatedID string
}

// KeyFor builds the aggregation key of subject for recipient.
func KeyFor(recipient string, subject Subject) NotificationKey {
	return NotificationKey{UserID: recipient, Type: subject.Kind(), RelatedID: subject.RelatedID()}
}

// NotificationIDPayload is the body of notificationDeleted, notificationRead
// and notificationViewed events.
type NotificationIDPayload struct {
	NotificationID string `json:"notificationId"`
}
