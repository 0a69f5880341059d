package repository

import (
	"context"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// InfluencerRepositoryImpl implements InfluencerRepository
type InfluencerRepositoryImpl struct {
	*BaseRepository[models.Influencer, models.InfluencerFilter]
}

func NewInfluencerRepository(db *gorm.DB) InfluencerRepository {
	return &InfluencerRepositoryImpl{BaseRepository: NewBaseRepository[models.Influencer, models.InfluencerFilter](db)}
}

func (r *InfluencerRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Influencer, error) {
	filter := models.InfluencerFilter{UserID: &userID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *InfluencerRepositoryImpl) applyFilter(db *gorm.DB, f models.InfluencerFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	return db
}

func (r *InfluencerRepositoryImpl) ByFilter(ctx context.Context, filter models.InfluencerFilter, orderBy string, limit, offset int) ([]*models.Influencer, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Influencer{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Influencer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InfluencerRepositoryImpl) Count(ctx context.Context, filter models.InfluencerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Influencer{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *InfluencerRepositoryImpl) Exists(ctx context.Context, filter models.InfluencerFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
