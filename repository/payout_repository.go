package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepositoryImpl implements PayoutRepository
type PayoutRepositoryImpl struct {
	*BaseRepository[models.Payout, models.PayoutFilter]
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &PayoutRepositoryImpl{BaseRepository: NewBaseRepository[models.Payout, models.PayoutFilter](db)}
}

func (r *PayoutRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	db := r.getDB(ctx)
	var row models.Payout
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PayoutRepositoryImpl) ByAssignmentAndType(ctx context.Context, assignmentID uint, payoutType models.PayoutType) (*models.Payout, error) {
	filter := models.PayoutFilter{AssignmentID: &assignmentID, Type: &payoutType}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SaveIfAbsent inserts the payout with ON CONFLICT DO NOTHING over the
// (assignment_id, type) unique index. Concurrent callers race on the index
// rather than on an application-level check, so exactly one insert wins and
// the rest observe RowsAffected == 0.
func (r *PayoutRepositoryImpl) SaveIfAbsent(ctx context.Context, payout *models.Payout) (bool, error) {
	db := r.getDB(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(payout)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SumAmount totals payout amounts matching the filter
func (r *PayoutRepositoryImpl) SumAmount(ctx context.Context, filter models.PayoutFilter) (float64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payout{}), filter)
	var sum sql.NullFloat64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Float64, nil
}

func (r *PayoutRepositoryImpl) applyFilter(db *gorm.DB, f models.PayoutFilter) *gorm.DB {
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
	if f.BrandID != nil {
		db = db.Where("brand_id = ?", *f.BrandID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *PayoutRepositoryImpl) ByFilter(ctx context.Context, filter models.PayoutFilter, orderBy string, limit, offset int) ([]*models.Payout, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payout{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Payout
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PayoutRepositoryImpl) Count(ctx context.Context, filter models.PayoutFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payout{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PayoutRepositoryImpl) Exists(ctx context.Context, filter models.PayoutFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
