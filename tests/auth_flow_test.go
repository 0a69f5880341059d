package tests

import (
	"context"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		ctx := context.Background()

		t.Run("SuccessfulBrandRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:           "Acme@Example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "brand",
				CompanyName:     utils.ToPtr("Acme Widgets"),
				Website:         utils.ToPtr("https://acme.example.com"),
			}

			result, err := fs.auth.Register(ctx, req, testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "brand", result.User.Role)
			assert.Equal(t, "pending", result.User.Status)
			require.NotNil(t, result.User.Brand)
			assert.Equal(t, "Acme Widgets", result.User.Brand.CompanyName)

			// Email is normalized to lower case
			user, err := fs.userRepo.ByEmail(ctx, "acme@example.com")
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, models.UserStatusPending, user.Status)

			brand, err := fs.brandRepo.ByUserID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, brand)
			assert.Equal(t, models.ProfileStatusPending, brand.Status)
		})

		t.Run("SuccessfulInfluencerRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:           "creator@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "influencer",
				Name:            utils.ToPtr("Jamie Creator"),
				Bio:             utils.ToPtr("Lifestyle and tech reviews"),
			}

			result, err := fs.auth.Register(ctx, req, testMeta())
			require.NoError(t, err)
			require.NotNil(t, result.User.Influencer)
			assert.Equal(t, "Jamie Creator", result.User.Influencer.Name)

			user, err := fs.userRepo.ByEmail(ctx, "creator@example.com")
			require.NoError(t, err)
			require.NotNil(t, user)

			influencer, err := fs.influencerRepo.ByUserID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, influencer)
			assert.Equal(t, models.ProfileStatusPending, influencer.Status)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:           "acme@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "brand",
				CompanyName:     utils.ToPtr("Copycat Corp"),
			}

			result, err := fs.auth.Register(ctx, req, testMeta())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("BrandWithoutCompanyNameRejected", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:           "nameless@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "brand",
			}

			_, err := fs.auth.Register(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProfileRequired(err))
		})

		t.Run("InfluencerWithoutNameRejected", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:           "anon@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "influencer",
			}

			_, err := fs.auth.Register(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProfileRequired(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		user, _, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			result, err := fs.auth.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, user.Email, result.User.Email)
			assert.NotNil(t, result.User.Brand)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			_, err := fs.auth.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			_, err := fs.auth.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: "TestPass123!",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("SuspendedAccountRejected", func(t *testing.T) {
			suspended, err := fixtures.CreateTestUserWithStatus(models.UserRoleInfluencer, models.UserStatusSuspended)
			require.NoError(t, err)

			_, err = fs.auth.Login(ctx, &dto.LoginRequest{
				Email:    suspended.Email,
				Password: "TestPass123!",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountSuspended(err))
		})

		t.Run("PendingAccountCanStillLogIn", func(t *testing.T) {
			pending, err := fixtures.CreateTestUserWithStatus(models.UserRoleInfluencer, models.UserStatusPending)
			require.NoError(t, err)

			result, err := fs.auth.Login(ctx, &dto.LoginRequest{
				Email:    pending.Email,
				Password: "TestPass123!",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "pending", result.User.Status)
		})

		t.Run("Me", func(t *testing.T) {
			me, err := fs.auth.Me(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, me)
			assert.Equal(t, user.Email, me.Email)
			require.NotNil(t, me.Brand)
		})

		return nil
	})
	require.NoError(t, err)
}
