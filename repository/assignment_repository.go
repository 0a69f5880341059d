package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentRepositoryImpl implements AssignmentRepository
type AssignmentRepositoryImpl struct {
	*BaseRepository[models.Assignment, models.AssignmentFilter]
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &AssignmentRepositoryImpl{BaseRepository: NewBaseRepository[models.Assignment, models.AssignmentFilter](db)}
}

func (r *AssignmentRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	db := r.getDB(ctx)
	var row models.Assignment
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AssignmentRepositoryImpl) ByRedirectToken(ctx context.Context, token string) (*models.Assignment, error) {
	filter := models.AssignmentFilter{RedirectToken: &token}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// TransitionStatus performs the conditional update that makes lifecycle
// transitions race-free: the row only moves when it is still in one of the
// expected states, so a concurrent writer that got there first causes this
// call to report false instead of clobbering its work.
func (r *AssignmentRepositoryImpl) TransitionStatus(ctx context.Context, id uint, expected []models.AssignmentStatus, newStatus models.AssignmentStatus) (bool, error) {
	db := r.getDB(ctx)
	updates := map[string]any{
		"status":     newStatus,
		"updated_at": utils.UTCNow(),
	}
	if newStatus == models.AssignmentStatusCompleted {
		updates["completed_at"] = utils.UTCNow()
	}
	res := db.Model(&models.Assignment{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionReviewStatus is the conditional update for the secondary
// product review machine.
func (r *AssignmentRepositoryImpl) TransitionReviewStatus(ctx context.Context, id uint, expected []models.ReviewStatus, newStatus models.ReviewStatus) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Assignment{}).
		Where("id = ? AND review_status IN ?", id, expected).
		Updates(map[string]any{
			"review_status": newStatus,
			"updated_at":    utils.UTCNow(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AssignmentRepositoryImpl) applyFilter(db *gorm.DB, f models.AssignmentFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if len(f.CampaignIDs) > 0 {
		db = db.Where("campaign_id IN ?", f.CampaignIDs)
	}
	if f.InfluencerID != nil {
		db = db.Where("influencer_id = ?", *f.InfluencerID)
	}
	if f.ApplicationID != nil {
		db = db.Where("application_id = ?", *f.ApplicationID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.ReviewStatus != nil {
		db = db.Where("review_status = ?", *f.ReviewStatus)
	}
	if f.RedirectToken != nil {
		db = db.Where("redirect_token = ?", *f.RedirectToken)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *AssignmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AssignmentFilter, orderBy string, limit, offset int) ([]*models.Assignment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Assignment{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Assignment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AssignmentRepositoryImpl) Count(ctx context.Context, filter models.AssignmentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Assignment{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssignmentRepositoryImpl) Exists(ctx context.Context, filter models.AssignmentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
