package repository

import (
	"context"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// ClickLogRepositoryImpl implements ClickLogRepository.
// The click log is append-only; there is no update path.
type ClickLogRepositoryImpl struct {
	*BaseRepository[models.ClickLog, models.ClickLogFilter]
}

func NewClickLogRepository(db *gorm.DB) ClickLogRepository {
	return &ClickLogRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickLog, models.ClickLogFilter](db)}
}

func (r *ClickLogRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickLogFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.AssignmentID != nil {
		db = db.Where("assignment_id = ?", *f.AssignmentID)
	}
	if f.IPHash != nil {
		db = db.Where("ip_hash = ?", *f.IPHash)
	}
	if f.ClickedAfter != nil {
		db = db.Where("clicked_at >= ?", *f.ClickedAfter)
	}
	if f.ClickedBefore != nil {
		db = db.Where("clicked_at < ?", *f.ClickedBefore)
	}
	return db
}

func (r *ClickLogRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickLogFilter, orderBy string, limit, offset int) ([]*models.ClickLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickLog{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickLogRepositoryImpl) Count(ctx context.Context, filter models.ClickLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickLog{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
