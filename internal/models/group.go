package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a faculty-created chat room.
type Group struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	CreatorID    string             `json:"creator" bson:"creator"`
	Members      []string           `json:"members" bson:"members"`
	UnreadCounts map[string]int     `json:"unreadCounts" bson:"unreadCounts"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (g *Group) Summary() GroupSummary {
	return GroupSummary{ID: g.ID.Hex(), Name: g.Name}
}

func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// UnreadAfterSend rebuilds the unread map for a message from sender:
// sender resets to zero, every other member gains one.
// Entries for former members are dropped.
func (g *Group) UnreadAfterSend(sender string) map[string]int {
	counts := make(map[string]int, len(g.Members))
	for _, m := range g.Members {
		if m == sender {
			counts[m] = 0
			continue
		}
		counts[m] = g.UnreadCounts[m] + 1
	}
	return counts
}

// SyncUnread keeps one unread entry per member, preserving existing values.
func (g *Group) SyncUnread() {
	counts := make(map[string]int, len(g.Members))
	for _, m := range g.Members {
		counts[m] = g.UnreadCounts[m]
	}
	g.UnreadCounts = counts
}

type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	MemberIDs []string `json:"members"`
}

type GroupMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}
