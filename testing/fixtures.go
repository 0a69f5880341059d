// Package testing provides test utilities and database setup for testing the marketplace
package testing

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// randomSuffix returns a short random string for unique emails and names
func randomSuffix() string {
	b := make([]byte, 6)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// CreateTestUser creates an active user with the given role
func (tf *TestFixtures) CreateTestUser(role models.UserRole) (*models.User, error) {
	return tf.CreateTestUserWithStatus(role, models.UserStatusActive)
}

// CreateTestUserWithStatus creates a user with an explicit account status
func (tf *TestFixtures) CreateTestUserWithStatus(role models.UserRole, status models.UserStatus) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(fmt.Sprintf("test-%s@example.com", randomSuffix())),
		PasswordHash: string(hashedPassword),
		Role:         role,
		Status:       status,
		CreatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestBrand creates an active brand user together with an approved profile
func (tf *TestFixtures) CreateTestBrand() (*models.User, *models.Brand, error) {
	user, err := tf.CreateTestUser(models.UserRoleBrand)
	if err != nil {
		return nil, nil, err
	}

	brand := &models.Brand{
		UserID:      user.ID,
		CompanyName: fmt.Sprintf("Brand %s", randomSuffix()),
		Status:      models.ProfileStatusApproved,
		CreatedAt:   utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(brand).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test brand: %w", err)
	}
	return user, brand, nil
}

// CreateTestInfluencer creates an active influencer user together with an approved profile
func (tf *TestFixtures) CreateTestInfluencer() (*models.User, *models.Influencer, error) {
	user, err := tf.CreateTestUser(models.UserRoleInfluencer)
	if err != nil {
		return nil, nil, err
	}

	followers := int64(10000)
	influencer := &models.Influencer{
		UserID:         user.ID,
		Name:           fmt.Sprintf("Influencer %s", randomSuffix()),
		FollowersCount: &followers,
		Status:         models.ProfileStatusApproved,
		CreatedAt:      utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(influencer).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test influencer: %w", err)
	}
	return user, influencer, nil
}

// CreateTestAdmin creates an active admin user
func (tf *TestFixtures) CreateTestAdmin() (*models.User, error) {
	return tf.CreateTestUser(models.UserRoleAdmin)
}

// CreateTestCampaign creates a campaign for the brand with open windows
// spanning now-1h to now+30d
func (tf *TestFixtures) CreateTestCampaign(brand *models.Brand, status models.CampaignStatus) (*models.Campaign, error) {
	now := utils.UTCNow()
	productName := "Test Product"

	campaign := &models.Campaign{
		BrandID:             brand.ID,
		Title:               fmt.Sprintf("Campaign %s", randomSuffix()),
		ProductName:         &productName,
		AffiliateURL:        "https://www.amazon.com/dp/B000TEST00",
		PurchaseWindowStart: now.Add(-1 * time.Hour),
		PurchaseWindowEnd:   now.Add(14 * 24 * time.Hour),
		PostWindowStart:     now.Add(-1 * time.Hour),
		PostWindowEnd:       now.Add(30 * 24 * time.Hour),
		CommissionAmount:    15.00,
		ReviewBonus:         5.00,
		Status:              status,
		CreatedAt:           now,
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestApplication creates an application from the influencer to the campaign
func (tf *TestFixtures) CreateTestApplication(campaign *models.Campaign, influencer *models.Influencer, status models.ApplicationStatus) (*models.Application, error) {
	application := &models.Application{
		CampaignID:   campaign.ID,
		InfluencerID: influencer.ID,
		Status:       status,
		CreatedAt:    utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create test application: %w", err)
	}
	return application, nil
}

// CreateTestAssignment creates an accepted application plus an assignment in the given state
func (tf *TestFixtures) CreateTestAssignment(campaign *models.Campaign, influencer *models.Influencer, status models.AssignmentStatus) (*models.Assignment, error) {
	application, err := tf.CreateTestApplication(campaign, influencer, models.ApplicationStatusAccepted)
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CampaignID:    campaign.ID,
		InfluencerID:  influencer.ID,
		ApplicationID: application.ID,
		Status:        status,
		ReviewStatus:  models.ReviewStatusNone,
		CreatedAt:     utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assignment: %w", err)
	}
	return assignment, nil
}

// CreateTestPurchaseProof creates a submitted purchase proof for the assignment
func (tf *TestFixtures) CreateTestPurchaseProof(assignment *models.Assignment, status models.ProofStatus) (*models.PurchaseProof, error) {
	proof := &models.PurchaseProof{
		AssignmentID:   assignment.ID,
		InfluencerID:   assignment.InfluencerID,
		OrderID:        fmt.Sprintf("112-%07d-%07d", rand.Intn(10000000), rand.Intn(10000000)),
		Price:          29.99,
		ScreenshotURLs: models.StringList{"https://cdn.example.com/screens/proof.png"},
		Status:         status,
		CreatedAt:      utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(proof).Error; err != nil {
		return nil, fmt.Errorf("failed to create test purchase proof: %w", err)
	}
	return proof, nil
}
