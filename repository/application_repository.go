package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationRepositoryImpl implements ApplicationRepository
type ApplicationRepositoryImpl struct {
	*BaseRepository[models.Application, models.ApplicationFilter]
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{BaseRepository: NewBaseRepository[models.Application, models.ApplicationFilter](db)}
}

func (r *ApplicationRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	db := r.getDB(ctx)
	var row models.Application
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// SaveIfAbsent inserts the application, relying on the unique index over
// (campaign_id, influencer_id) to reject duplicates without racing.
func (r *ApplicationRepositoryImpl) SaveIfAbsent(ctx context.Context, application *models.Application) (bool, error) {
	db := r.getDB(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "influencer_id"}},
		DoNothing: true,
	}).Create(application)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionStatus moves the application only while it is still in one of
// the expected states, so two racing decisions cannot both take effect.
func (r *ApplicationRepositoryImpl) TransitionStatus(ctx context.Context, id uint, expected []models.ApplicationStatus, newStatus models.ApplicationStatus) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(map[string]any{
			"status":     newStatus,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ApplicationRepositoryImpl) applyFilter(db *gorm.DB, f models.ApplicationFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.InfluencerID != nil {
		db = db.Where("influencer_id = ?", *f.InfluencerID)
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

func (r *ApplicationRepositoryImpl) ByFilter(ctx context.Context, filter models.ApplicationFilter, orderBy string, limit, offset int) ([]*models.Application, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Application{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Application
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ApplicationRepositoryImpl) Count(ctx context.Context, filter models.ApplicationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Application{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ApplicationRepositoryImpl) Exists(ctx context.Context, filter models.ApplicationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
