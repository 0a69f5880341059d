package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow defines registration and authentication operations
type AuthFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (*dto.UserDTO, error)
}

// AuthFlowImpl implements AuthFlow
type AuthFlowImpl struct {
	userRepo       repository.UserRepository
	brandRepo      repository.BrandRepository
	influencerRepo repository.InfluencerRepository
	auditRepo      repository.AuditLogRepository
	tokenService   services.TokenService
	db             *gorm.DB
}

// NewAuthFlow constructs an AuthFlow
func NewAuthFlow(
	userRepo repository.UserRepository,
	brandRepo repository.BrandRepository,
	influencerRepo repository.InfluencerRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:       userRepo,
		brandRepo:      brandRepo,
		influencerRepo: influencerRepo,
		auditRepo:      auditRepo,
		tokenService:   tokenService,
		db:             db,
	}
}

// Register creates a new account together with its role profile.
// New accounts start pending and cannot authenticate flows that require an
// active account until an admin approves them.
func (f *AuthFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("REGISTRATION_FAILED", "Failed to check existing accounts", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	role := models.UserRole(req.Role)
	switch role {
	case models.UserRoleBrand:
		if req.CompanyName == nil || strings.TrimSpace(*req.CompanyName) == "" {
			return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Company name is required for brands", ErrProfileRequired)
		}
	case models.UserRoleInfluencer:
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Name is required for influencers", ErrProfileRequired)
		}
	default:
		return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Role must be brand or influencer", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("REGISTRATION_FAILED", "Failed to hash password", err)
	}

	var user *models.User
	var brand *models.Brand
	var influencer *models.Influencer
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		user = &models.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			Status:       models.UserStatusPending,
		}
		if err := f.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		switch role {
		case models.UserRoleBrand:
			brand = &models.Brand{
				UserID:      user.ID,
				CompanyName: strings.TrimSpace(*req.CompanyName),
				Website:     req.Website,
			}
			return f.brandRepo.Save(txCtx, brand)
		case models.UserRoleInfluencer:
			influencer = &models.Influencer{
				UserID: user.ID,
				Name:   strings.TrimSpace(*req.Name),
				Bio:    req.Bio,
			}
			return f.influencerRepo.Save(txCtx, influencer)
		}
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Registration failed for %s: %s", email, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, nil, models.AuditActionSignupCompleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REGISTRATION_FAILED", "Failed to create account", err)
	}

	accessToken, _, err := f.tokenService.GenerateTokens(user.ID, user.Role.String())
	if err != nil {
		return nil, NewBusinessError("REGISTRATION_FAILED", "Failed to issue token", err)
	}

	msg := fmt.Sprintf("Account %d registered as %s", user.ID, role)
	_ = createAuditLog(ctx, f.auditRepo, user, models.AuditActionSignupCompleted, msg, true, nil, metadata)

	return &dto.RegisterResponse{
		Message: "Registration successful, your account is pending approval",
		User:    ToUserDTO(*user, brand, influencer),
		Token:   accessToken,
	}, nil
}

// Login authenticates an account and issues a fresh access token
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to lookup account", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errMsg := fmt.Sprintf("Failed login attempt for %s", email)
		_ = createAuditLog(ctx, f.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, ErrIncorrectPassword
	}

	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}
	if user.DeletedAt != nil || user.Status == models.UserStatusDeleted {
		return nil, ErrUserNotFound
	}

	accessToken, _, err := f.tokenService.GenerateTokens(user.ID, user.Role.String())
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to issue token", err)
	}

	brand, influencer, err := f.loadProfiles(ctx, user)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Account %d logged in", user.ID)
	_ = createAuditLog(ctx, f.auditRepo, user, models.AuditActionLoginSuccessful, msg, true, nil, metadata)

	return &dto.LoginResponse{
		Message: "Login successful",
		User:    ToUserDTO(*user, brand, influencer),
		Token:   accessToken,
	}, nil
}

// Me returns the caller's account and profile
func (f *AuthFlowImpl) Me(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	brand, influencer, err := f.loadProfiles(ctx, user)
	if err != nil {
		return nil, err
	}

	out := ToUserDTO(*user, brand, influencer)
	return &out, nil
}

func (f *AuthFlowImpl) loadProfiles(ctx context.Context, user *models.User) (*models.Brand, *models.Influencer, error) {
	switch user.Role {
	case models.UserRoleBrand:
		brand, err := f.brandRepo.ByUserID(ctx, user.ID)
		if err != nil {
			return nil, nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup brand profile", err)
		}
		return brand, nil, nil
	case models.UserRoleInfluencer:
		influencer, err := f.influencerRepo.ByUserID(ctx, user.ID)
		if err != nil {
			return nil, nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup influencer profile", err)
		}
		return nil, influencer, nil
	}
	return nil, nil, nil
}
