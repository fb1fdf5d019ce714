package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

type GroupService struct {
	groups repositories.GroupRepository
	users  repositories.UserRepository
	now    func() time.Time
}

func NewGroupService(groups repositories.GroupRepository, users repositories.UserRepository) *GroupService {
	return &GroupService{groups: groups, users: users, now: time.Now}
}

// Create makes a group owned by a faculty member. The creator is always a
// member and every member starts with zero unread messages.
func (s *GroupService) Create(ctx context.Context, creatorID string, in models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("Group name is required")
	}
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	if !creator.IsFaculty() {
		return nil, apperrors.Forbidden("Only faculty can create groups")
	}

	members := []string{creator.ID}
	seen := map[string]bool{creator.ID: true}
	for _, id := range in.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	found, err := s.users.GetByIDs(ctx, members)
	if err != nil {
		return nil, apperrors.Storage(err, "get members")
	}
	if len(found) != len(members) {
		return nil, apperrors.InvalidInput("Some members do not exist")
	}

	group := &models.Group{
		Name:      name,
		CreatorID: creator.ID,
		Members:   members,
		CreatedAt: s.now(),
	}
	group.SyncUnread()
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperrors.Storage(err, "create group")
	}
	return group, nil
}

// Get returns the group if userID is a member.
func (s *GroupService) Get(ctx context.Context, userID, groupID string) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, lookupErr(err, "Group not found", "get group")
	}
	if !group.IsMember(userID) {
		return nil, apperrors.Forbidden("You are not a member of this group")
	}
	return group, nil
}

func (s *GroupService) ListMine(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err, "list groups")
	}
	return groups, nil
}

func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	group, err := s.owned(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsMember(userID) {
		return nil, apperrors.Conflict("User is already a member of this group")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}

	group.Members = append(group.Members, userID)
	group.SyncUnread()
	if err := s.groups.SetMembers(ctx, group.ID, group.Members, group.UnreadCounts); err != nil {
		return nil, lookupErr(err, "Group not found", "update group members")
	}
	return group, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	group, err := s.owned(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if userID == group.CreatorID {
		return nil, apperrors.InvalidInput("Cannot remove the group creator")
	}
	if !group.IsMember(userID) {
		return nil, apperrors.InvalidInput("User is not a member of this group")
	}

	group.Members = withoutID(group.Members, userID)
	group.SyncUnread()
	if err := s.groups.SetMembers(ctx, group.ID, group.Members, group.UnreadCounts); err != nil {
		return nil, lookupErr(err, "Group not found", "update group members")
	}
	return group, nil
}

func (s *GroupService) owned(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, lookupErr(err, "Group not found", "get group")
	}
	if group.CreatorID != actorID {
		return nil, apperrors.Forbidden("Only the group creator can manage members")
	}
	return group, nil
}
