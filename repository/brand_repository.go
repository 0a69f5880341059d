package repository

import (
	"context"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// BrandRepositoryImpl implements BrandRepository
type BrandRepositoryImpl struct {
	*BaseRepository[models.Brand, models.BrandFilter]
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &BrandRepositoryImpl{BaseRepository: NewBaseRepository[models.Brand, models.BrandFilter](db)}
}

func (r *BrandRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Brand, error) {
	filter := models.BrandFilter{UserID: &userID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *BrandRepositoryImpl) applyFilter(db *gorm.DB, f models.BrandFilter) *gorm.DB {
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

func (r *BrandRepositoryImpl) ByFilter(ctx context.Context, filter models.BrandFilter, orderBy string, limit, offset int) ([]*models.Brand, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Brand{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Brand
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BrandRepositoryImpl) Count(ctx context.Context, filter models.BrandFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Brand{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BrandRepositoryImpl) Exists(ctx context.Context, filter models.BrandFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
