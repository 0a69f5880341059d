package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostSubmissionRepositoryImpl implements PostSubmissionRepository
type PostSubmissionRepositoryImpl struct {
	*BaseRepository[models.PostSubmission, models.PostSubmissionFilter]
}

func NewPostSubmissionRepository(db *gorm.DB) PostSubmissionRepository {
	return &PostSubmissionRepositoryImpl{BaseRepository: NewBaseRepository[models.PostSubmission, models.PostSubmissionFilter](db)}
}

func (r *PostSubmissionRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.PostSubmission, error) {
	db := r.getDB(ctx)
	var row models.PostSubmission
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostSubmissionRepositoryImpl) ByAssignmentID(ctx context.Context, assignmentID uint) (*models.PostSubmission, error) {
	filter := models.PostSubmissionFilter{AssignmentID: &assignmentID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *PostSubmissionRepositoryImpl) applyFilter(db *gorm.DB, f models.PostSubmissionFilter) *gorm.DB {
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
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	return db
}

func (r *PostSubmissionRepositoryImpl) ByFilter(ctx context.Context, filter models.PostSubmissionFilter, orderBy string, limit, offset int) ([]*models.PostSubmission, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PostSubmission{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.PostSubmission
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostSubmissionRepositoryImpl) Count(ctx context.Context, filter models.PostSubmissionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PostSubmission{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostSubmissionRepositoryImpl) Exists(ctx context.Context, filter models.PostSubmissionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
