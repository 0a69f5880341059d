package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements CampaignRepository
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db)}
}

func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	db := r.getDB(ctx)
	var row models.Campaign
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// TransitionStatus is the conditional update behind campaign lifecycle
// moves: the row only changes while it is still in one of the expected
// states, so the window sweep and a concurrent manual move can never
// overwrite each other's committed transition.
func (r *CampaignRepositoryImpl) TransitionStatus(ctx context.Context, id uint, expected []models.CampaignStatus, newStatus models.CampaignStatus) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Campaign{}).
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

// DeleteCascade hard-deletes a campaign together with its applications,
// assignments, verification artifacts, payouts and click logs. Callers run it
// inside WithTransaction; rows are removed child-first so foreign keys hold
// at every step.
func (r *CampaignRepositoryImpl) DeleteCascade(ctx context.Context, campaignID uint) error {
	db := r.getDB(ctx)

	assignmentIDs := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Assignment{}).
		Select("id").
		Where("campaign_id = ?", campaignID)

	for _, step := range []struct {
		model  any
		clause string
		arg    any
	}{
		{&models.ClickLog{}, "assignment_id IN (?)", assignmentIDs},
		{&models.PurchaseProof{}, "assignment_id IN (?)", assignmentIDs},
		{&models.PostSubmission{}, "assignment_id IN (?)", assignmentIDs},
		{&models.ProductReview{}, "assignment_id IN (?)", assignmentIDs},
		{&models.Payout{}, "campaign_id = ?", campaignID},
		{&models.Assignment{}, "campaign_id = ?", campaignID},
		{&models.Application{}, "campaign_id = ?", campaignID},
		{&models.Campaign{}, "id = ?", campaignID},
	} {
		if err := db.Where(step.clause, step.arg).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, f models.CampaignFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.BrandID != nil {
		db = db.Where("brand_id = ?", *f.BrandID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Title != nil {
		db = db.Where("title ILIKE ?", "%"+*f.Title+"%")
	}
	if f.PurchaseWindowStarted != nil {
		db = db.Where("purchase_window_start <= ?", *f.PurchaseWindowStarted)
	}
	if f.PostWindowEnded != nil {
		db = db.Where("post_window_end < ?", *f.PostWindowEnded)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Campaign
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
