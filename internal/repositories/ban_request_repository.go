package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// BanRequestRepository defines the ban request store operations.
type BanRequestRepository interface {
	Create(ctx context.Context, req *models.BanRequest) error
	GetByID(ctx context.Context, id string) (*models.BanRequest, error)
	List(ctx context.Context, status models.BanRequestStatus) ([]models.BanRequest, error)
	// Resolve moves a pending request to status. It returns ErrNotFound if
	// the request is no longer pending.
	Resolve(ctx context.Context, id string, status models.BanRequestStatus, adminID string) error
}

// PostgresBanRequestRepository implements BanRequestRepository for PostgreSQL
type PostgresBanRequestRepository struct {
	db *gorm.DB
}

func NewPostgresBanRequestRepository(db *gorm.DB) *PostgresBanRequestRepository {
	return &PostgresBanRequestRepository{db: db}
}

func (r *PostgresBanRequestRepository) Create(ctx context.Context, req *models.BanRequest) error {
	if req.Status == "" {
		req.Status = models.BanRequestPending
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *PostgresBanRequestRepository) GetByID(ctx context.Context, id string) (*models.BanRequest, error) {
	var req models.BanRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// List returns requests with the given status, or all of them when status is empty.
func (r *PostgresBanRequestRepository) List(ctx context.Context, status models.BanRequestStatus) ([]models.BanRequest, error) {
	requests := []models.BanRequest{}
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresBanRequestRepository) Resolve(ctx context.Context, id string, status models.BanRequestStatus, adminID string) error {
	res := r.db.WithContext(ctx).Model(&models.BanRequest{}).
		Where("id = ? AND status = ?", id, models.BanRequestPending).
		Updates(map[string]interface{}{"status": status, "resolved_by": adminID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
