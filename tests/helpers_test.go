package tests

import (
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/services"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL    = "https://test.kusanagi.io"
	testIPHashSalt = "test-salt"
)

// flowSet wires every business flow against the test database the same way
// main.go wires them against the production one.
type flowSet struct {
	userRepo        repository.UserRepository
	brandRepo       repository.BrandRepository
	influencerRepo  repository.InfluencerRepository
	auditRepo       repository.AuditLogRepository
	campaignRepo    repository.CampaignRepository
	applicationRepo repository.ApplicationRepository
	assignmentRepo  repository.AssignmentRepository
	proofRepo       repository.PurchaseProofRepository
	submissionRepo  repository.PostSubmissionRepository
	reviewRepo      repository.ProductReviewRepository
	payoutRepo      repository.PayoutRepository
	clickRepo       repository.ClickLogRepository

	auth         businessflow.AuthFlow
	campaigns    businessflow.CampaignFlow
	applications businessflow.ApplicationFlow
	assignments  businessflow.AssignmentFlow
	proofs       businessflow.PurchaseProofFlow
	posts        businessflow.PostSubmissionFlow
	reviews      businessflow.ProductReviewFlow
	payouts      businessflow.PayoutFlow
	redirects    businessflow.RedirectFlow
	admin        businessflow.AdminFlow
}

func newFlowSet(t *testing.T, testDB *testingutil.TestDB) *flowSet {
	t.Helper()

	fs := &flowSet{
		userRepo:        repository.NewUserRepository(testDB.DB),
		brandRepo:       repository.NewBrandRepository(testDB.DB),
		influencerRepo:  repository.NewInfluencerRepository(testDB.DB),
		auditRepo:       repository.NewAuditLogRepository(testDB.DB),
		campaignRepo:    repository.NewCampaignRepository(testDB.DB),
		applicationRepo: repository.NewApplicationRepository(testDB.DB),
		assignmentRepo:  repository.NewAssignmentRepository(testDB.DB),
		proofRepo:       repository.NewPurchaseProofRepository(testDB.DB),
		submissionRepo:  repository.NewPostSubmissionRepository(testDB.DB),
		reviewRepo:      repository.NewProductReviewRepository(testDB.DB),
		payoutRepo:      repository.NewPayoutRepository(testDB.DB),
		clickRepo:       repository.NewClickLogRepository(testDB.DB),
	}

	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour,
		"test-issuer", "test-audience",
		false, "", "",
		"test-secret-key-0123456789abcdef0123456789abcdef",
	)
	require.NoError(t, err)

	notifier := services.NewNotificationService(services.NewMockEmailProvider())
	guard := businessflow.NewAccessControl(fs.userRepo, fs.brandRepo, fs.influencerRepo)

	fs.auth = businessflow.NewAuthFlow(fs.userRepo, fs.brandRepo, fs.influencerRepo, fs.auditRepo, tokenService, testDB.DB)
	fs.campaigns = businessflow.NewCampaignFlow(guard, fs.campaignRepo, fs.assignmentRepo, fs.auditRepo, testDB.DB)
	fs.applications = businessflow.NewApplicationFlow(guard, fs.campaignRepo, fs.applicationRepo, fs.assignmentRepo, fs.userRepo, fs.auditRepo, notifier, testDB.DB)
	fs.assignments = businessflow.NewAssignmentFlow(guard, fs.assignmentRepo, fs.campaignRepo, fs.clickRepo, fs.auditRepo, nil, testBaseURL)
	fs.proofs = businessflow.NewPurchaseProofFlow(guard, fs.assignmentRepo, fs.campaignRepo, fs.proofRepo, fs.payoutRepo, fs.userRepo, fs.auditRepo, notifier, testDB.DB)
	fs.posts = businessflow.NewPostSubmissionFlow(guard, fs.assignmentRepo, fs.campaignRepo, fs.submissionRepo, fs.payoutRepo, fs.userRepo, fs.auditRepo, notifier, testDB.DB)
	fs.reviews = businessflow.NewProductReviewFlow(guard, fs.assignmentRepo, fs.campaignRepo, fs.reviewRepo, fs.payoutRepo, fs.userRepo, fs.auditRepo, notifier, testDB.DB)
	fs.payouts = businessflow.NewPayoutFlow(guard, fs.payoutRepo, fs.assignmentRepo, fs.campaignRepo, fs.userRepo, fs.auditRepo, notifier, testDB.DB)
	fs.redirects = businessflow.NewRedirectFlow(fs.assignmentRepo, fs.campaignRepo, fs.clickRepo, fs.auditRepo, nil, testIPHashSalt)
	fs.admin = businessflow.NewAdminFlow(guard, fs.userRepo, fs.brandRepo, fs.influencerRepo, fs.campaignRepo, fs.assignmentRepo, fs.proofRepo, fs.payoutRepo, fs.clickRepo, fs.auditRepo, notifier, testDB.DB)

	return fs
}

func testMeta() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "go-test")
}

// newAssignment creates a fresh live campaign for the brand plus an
// assignment for the influencer. Applications are unique per campaign and
// influencer, so every assignment needs its own campaign.
func newAssignment(t *testing.T, fixtures *testingutil.TestFixtures, brand *models.Brand, influencer *models.Influencer, status models.AssignmentStatus) (*models.Campaign, *models.Assignment) {
	t.Helper()

	campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
	require.NoError(t, err)
	assignment, err := fixtures.CreateTestAssignment(campaign, influencer, status)
	require.NoError(t, err)
	return campaign, assignment
}
