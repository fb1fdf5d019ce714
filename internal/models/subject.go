package models

// Subject is the cause of a notification. Each implementation covers one
// kind and carries only the references that kind uses.
type Subject interface {
	Kind() NotificationKind
	// RelatedID is the entity repeated events aggregate on.
	RelatedID() string
	Refs() Refs
}

// DirectMessage aggregates per sender.
type DirectMessage struct {
	SenderID  string
	MessageID string
}

func (s DirectMessage) Kind() NotificationKind { return KindNewMessage }
func (s DirectMessage) RelatedID() string      { return s.SenderID }
func (s DirectMessage) Refs() Refs {
	return Refs{MessageID: s.MessageID, SenderID: s.SenderID}
}

// GroupMessage aggregates per group.
type GroupMessage struct {
	GroupID   string
	MessageID string
	SenderID  string
}

func (s GroupMessage) Kind() NotificationKind { return KindNewGroupMessage }
func (s GroupMessage) RelatedID() string      { return s.GroupID }
func (s GroupMessage) Refs() Refs {
	return Refs{MessageID: s.MessageID, SenderID: s.SenderID}
}

type FriendRequestSent struct {
	SenderID  string
	RequestID string
}

func (s FriendRequestSent) Kind() NotificationKind { return KindFriendRequest }
func (s FriendRequestSent) RelatedID() string      { return s.SenderID }
func (s FriendRequestSent) Refs() Refs {
	return Refs{RequestID: s.RequestID, SenderID: s.SenderID}
}

type FriendRequestAccepted struct {
	AccepterID string
}

func (s FriendRequestAccepted) Kind() NotificationKind { return KindFriendRequestAccepted }
func (s FriendRequestAccepted) RelatedID() string      { return s.AccepterID }
func (s FriendRequestAccepted) Refs() Refs             { return Refs{SenderID: s.AccepterID} }

type FriendRequestDeclined struct {
	DeclinerID string
}

func (s FriendRequestDeclined) Kind() NotificationKind { return KindFriendRequestDeclined }
func (s FriendRequestDeclined) RelatedID() string      { return s.DeclinerID }
func (s FriendRequestDeclined) Refs() Refs             { return Refs{SenderID: s.DeclinerID} }

// PostLiked aggregates per post, across likers.
type PostLiked struct {
	PostID  string
	LikerID string
}

func (s PostLiked) Kind() NotificationKind { return KindLike }
func (s PostLiked) RelatedID() string      { return s.PostID }
func (s PostLiked) Refs() Refs             { return Refs{PostID: s.PostID, SenderID: s.LikerID} }

type PostDisliked struct {
	PostID     string
	DislikerID string
}

func (s PostDisliked) Kind() NotificationKind { return KindDislike }
func (s PostDisliked) RelatedID() string      { return s.PostID }
func (s PostDisliked) Refs() Refs             { return Refs{PostID: s.PostID, SenderID: s.DislikerID} }

type PostCommented struct {
	PostID      string
	CommentID   string
	CommenterID string
}

func (s PostCommented) Kind() NotificationKind { return KindComment }
func (s PostCommented) RelatedID() string      { return s.PostID }
func (s PostCommented) Refs() Refs {
	return Refs{PostID: s.PostID, CommentID: s.CommentID, SenderID: s.CommenterID}
}

// BanRequested aggregates per user to ban.
type BanRequested struct {
	BanRequestID string
	UserToBanID  string
	RequesterID  string
	PostID       string
}

func (s BanRequested) Kind() NotificationKind { return KindBanRequest }
func (s BanRequested) RelatedID() string      { return s.UserToBanID }
func (s BanRequested) Refs() Refs {
	return Refs{BanRequestID: s.BanRequestID, SenderID: s.RequesterID, PostID: s.PostID}
}

type BanRequestApproved struct {
	BanRequestID string
	UserToBanID  string
}

func (s BanRequestApproved) Kind() NotificationKind { return KindBanRequestApproved }
func (s BanRequestApproved) RelatedID() string      { return s.UserToBanID }
func (s BanRequestApproved) Refs() Refs             { return Refs{BanRequestID: s.BanRequestID} }

type BanRequestRejected struct {
	BanRequestID string
	UserToBanID  string
}

func (s BanRequestRejected) Kind() NotificationKind { return KindBanRequestRejected }
func (s BanRequestRejected) RelatedID() string      { return s.UserToBanID }
func (s BanRequestRejected) Refs() Refs             { return Refs{BanRequestID: s.BanRequestID} }
