package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
)

// Actor is the resolved caller of a flow operation. Exactly one of Brand or
// Influencer is set for non-admin callers, matching the account role.
type Actor struct {
	User       *models.User
	Brand      *models.Brand
	Influencer *models.Influencer
}

// IsAdmin reports whether the actor holds the admin role
func (a *Actor) IsAdmin() bool {
	return a.User != nil && a.User.Role == models.UserRoleAdmin
}

// IsBrand reports whether the actor holds the brand role
func (a *Actor) IsBrand() bool {
	return a.User != nil && a.User.Role == models.UserRoleBrand
}

// IsInfluencer reports whether the actor holds the influencer role
func (a *Actor) IsInfluencer() bool {
	return a.User != nil && a.User.Role == models.UserRoleInfluencer
}

// AccessControl resolves callers and answers ownership questions.
// Every flow operation runs its inputs through this guard before touching
// domain state, so handlers never re-implement ownership checks.
type AccessControl struct {
	userRepo       repository.UserRepository
	brandRepo      repository.BrandRepository
	influencerRepo repository.InfluencerRepository
}

// NewAccessControl constructs an AccessControl guard
func NewAccessControl(
	userRepo repository.UserRepository,
	brandRepo repository.BrandRepository,
	influencerRepo repository.InfluencerRepository,
) *AccessControl {
	return &AccessControl{
		userRepo:       userRepo,
		brandRepo:      brandRepo,
		influencerRepo: influencerRepo,
	}
}

// ResolveActor loads the caller's account and role profile.
// Inactive and suspended accounts are refused here so no flow has to
// re-check account status.
func (g *AccessControl) ResolveActor(ctx context.Context, userID uint) (*Actor, error) {
	user, err := g.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ACTOR_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	actor := &Actor{User: user}
	switch user.Role {
	case models.UserRoleBrand:
		brand, err := g.brandRepo.ByUserID(ctx, user.ID)
		if err != nil {
			return nil, NewBusinessError("ACTOR_LOOKUP_FAILED", "Failed to lookup brand profile", err)
		}
		if brand == nil {
			return nil, ErrProfileNotFound
		}
		actor.Brand = brand
	case models.UserRoleInfluencer:
		influencer, err := g.influencerRepo.ByUserID(ctx, user.ID)
		if err != nil {
			return nil, NewBusinessError("ACTOR_LOOKUP_FAILED", "Failed to lookup influencer profile", err)
		}
		if influencer == nil {
			return nil, ErrProfileNotFound
		}
		actor.Influencer = influencer
	case models.UserRoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role: %s", user.Role)
	}

	return actor, nil
}

// CanManageCampaign reports whether the actor may mutate the campaign.
// Admins may manage any campaign, brands only their own.
func (g *AccessControl) CanManageCampaign(actor *Actor, campaign *models.Campaign) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsBrand() && actor.Brand.ID == campaign.BrandID
}

// CanViewCampaign reports whether the actor may read the campaign.
// Influencers may read any published or live campaign.
func (g *AccessControl) CanViewCampaign(actor *Actor, campaign *models.Campaign) bool {
	if g.CanManageCampaign(actor, campaign) {
		return true
	}
	return actor.IsInfluencer() && campaign.IsOpenForApplications()
}

// CanActOnAssignment reports whether the actor may submit artifacts for the
// assignment. Only the owning influencer may.
func (g *AccessControl) CanActOnAssignment(actor *Actor, assignment *models.Assignment) bool {
	return actor.IsInfluencer() && actor.Influencer.ID == assignment.InfluencerID
}

// CanReviewAssignment reports whether the actor may pass verdicts on the
// assignment's submissions. Admins always may, brands only for assignments
// under their own campaigns.
func (g *AccessControl) CanReviewAssignment(actor *Actor, assignment *models.Assignment, campaign *models.Campaign) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsBrand() && campaign != nil && actor.Brand.ID == campaign.BrandID
}

// CanViewAssignment reports whether the actor may read the assignment
func (g *AccessControl) CanViewAssignment(actor *Actor, assignment *models.Assignment, campaign *models.Campaign) bool {
	if g.CanActOnAssignment(actor, assignment) {
		return true
	}
	return g.CanReviewAssignment(actor, assignment, campaign)
}

// CanViewPayout reports whether the actor may read the payout.
// The receiving influencer, the paying brand and admins may.
func (g *AccessControl) CanViewPayout(actor *Actor, payout *models.Payout) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsInfluencer() && actor.Influencer.ID == payout.InfluencerID {
		return true
	}
	return actor.IsBrand() && actor.Brand.ID == payout.BrandID
}

// CanManagePayout reports whether the actor may create or settle payouts
// for the assignment's campaign. Admins and the owning brand may.
func (g *AccessControl) CanManagePayout(actor *Actor, payout *models.Payout) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsBrand() && actor.Brand.ID == payout.BrandID
}
