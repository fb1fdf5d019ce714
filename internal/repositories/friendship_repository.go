package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// FriendshipRepository covers friend requests and acquaintances.
type FriendshipRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	// FindRequestBetween finds a pending request in either direction.
	FindRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	DeleteRequest(ctx context.Context, id string) error

	AreAcquainted(ctx context.Context, a, b string) (bool, error)
	AddAcquaintance(ctx context.Context, a, b string) error
	RemoveAcquaintance(ctx context.Context, a, b string) error
	ListAcquaintances(ctx context.Context, userID string) ([]models.User, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

func (r *PostgresFriendshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *PostgresFriendshipRepository) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) FindRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	if err := r.db.WithContext(ctx).Where("receiver_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresFriendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	if err := r.db.WithContext(ctx).Where("sender_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresFriendshipRepository) DeleteRequest(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FriendRequest{}).Error
}

func (r *PostgresFriendshipRepository) AreAcquainted(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Acquaintance{}).
		Where("user_id = ? AND acquaintance_id = ?", a, b).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddAcquaintance stores both directions in one transaction.
func (r *PostgresFriendshipRepository) AddAcquaintance(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := []models.Acquaintance{
			{UserID: a, AcquaintanceID: b},
			{UserID: b, AcquaintanceID: a},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *PostgresFriendshipRepository) RemoveAcquaintance(ctx context.Context, a, b string) error {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND acquaintance_id = ?) OR (user_id = ? AND acquaintance_id = ?)", a, b, b, a).
		Delete(&models.Acquaintance{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFriendshipRepository) ListAcquaintances(ctx context.Context, userID string) ([]models.User, error) {
	users := []models.User{}
	sub := r.db.Model(&models.Acquaintance{}).Select("acquaintance_id").Where("user_id = ?", userID)
	if err := r.db.WithContext(ctx).Where("id IN (?)", sub).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
