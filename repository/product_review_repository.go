package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductReviewRepositoryImpl implements ProductReviewRepository
type ProductReviewRepositoryImpl struct {
	*BaseRepository[models.ProductReview, models.ProductReviewFilter]
}

func NewProductReviewRepository(db *gorm.DB) ProductReviewRepository {
	return &ProductReviewRepositoryImpl{BaseRepository: NewBaseRepository[models.ProductReview, models.ProductReviewFilter](db)}
}

func (r *ProductReviewRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.ProductReview, error) {
	db := r.getDB(ctx)
	var row models.ProductReview
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ProductReviewRepositoryImpl) ByAssignmentID(ctx context.Context, assignmentID uint) (*models.ProductReview, error) {
	filter := models.ProductReviewFilter{AssignmentID: &assignmentID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ProductReviewRepositoryImpl) applyFilter(db *gorm.DB, f models.ProductReviewFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.AssignmentID != nil {
		db = db.Where("assignment_id = ?", *f.AssignmentID)
	}
	if f.InfluencerID != nil {
		db = db.Where("influencer_id = ?", *f.InfluencerID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	return db
}

func (r *ProductReviewRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductReviewFilter, orderBy string, limit, offset int) ([]*models.ProductReview, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ProductReview{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ProductReview
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProductReviewRepositoryImpl) Count(ctx context.Context, filter models.ProductReviewFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ProductReview{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductReviewRepositoryImpl) Exists(ctx context.Context, filter models.ProductReviewFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
