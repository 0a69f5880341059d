package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/redis/go-redis/v9"
)

const redirectCacheTTL = 10 * time.Minute

// redirectCacheKey is the redis key a token's resolved destination lives under.
// Anything that changes the destination must drop this key.
func redirectCacheKey(token string) string {
	return "redirect:" + token
}

// cachedRedirect is the redis-cached resolution of a redirect token.
// Caching the assignment id and destination keeps the hot redirect path off
// the database; click rows are still appended on every visit.
type cachedRedirect struct {
	AssignmentID uint   `json:"assignment_id"`
	Destination  string `json:"destination"`
}

// RedirectFlow resolves a redirect token and tracks the click.
// Public flow, no authentication required.
type RedirectFlow interface {
	Visit(ctx context.Context, token string, userAgent, ip, referrer *string) (string, error)
}

// RedirectFlowImpl implements RedirectFlow
type RedirectFlowImpl struct {
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	clickRepo      repository.ClickLogRepository
	auditRepo      repository.AuditLogRepository
	rc             *redis.Client
	ipHashSalt     string
}

// NewRedirectFlow constructs a RedirectFlow
func NewRedirectFlow(
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	clickRepo repository.ClickLogRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	ipHashSalt string,
) RedirectFlow {
	return &RedirectFlowImpl{
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		clickRepo:      clickRepo,
		auditRepo:      auditRepo,
		rc:             rc,
		ipHashSalt:     ipHashSalt,
	}
}

// Visit resolves the token to its destination and appends one click record.
// Every visit appends a row; clicks are deliberately never deduplicated.
// Only a salted hash of the visitor IP is stored.
func (f *RedirectFlowImpl) Visit(ctx context.Context, token string, userAgent, ip, referrer *string) (string, error) {
	resolved, err := f.resolve(ctx, token)
	if err != nil {
		return "", err
	}
	if resolved == nil {
		msg := fmt.Sprintf("Unknown redirect token %q", token)
		_ = createAuditLog(ctx, f.auditRepo, nil, models.AuditActionRedirectTokenNotFound, msg, false, &msg, nil)

		return "", ErrRedirectTokenNotFound
	}

	click := &models.ClickLog{
		AssignmentID: resolved.AssignmentID,
		UserAgent:    userAgent,
		Referrer:     referrer,
	}
	if ip != nil && *ip != "" {
		click.IPHash = utils.ToPtr(utils.HashIP(*ip, f.ipHashSalt))
	}
	if err := f.clickRepo.Save(ctx, click); err != nil {
		return "", NewBusinessError("CLICK_TRACK_FAILED", "Failed to track click", err)
	}

	return resolved.Destination, nil
}

// resolve looks the token up in redis first and falls back to the database.
// A nil result with nil error means the token does not exist.
func (f *RedirectFlowImpl) resolve(ctx context.Context, token string) (*cachedRedirect, error) {
	cacheKey := redirectCacheKey(token)

	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out cachedRedirect
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	assignment, err := f.assignmentRepo.ByRedirectToken(ctx, token)
	if err != nil {
		return nil, NewBusinessError("REDIRECT_LOOKUP_FAILED", "Failed to lookup redirect token", err)
	}
	if assignment == nil {
		return nil, nil
	}

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("REDIRECT_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	out := &cachedRedirect{
		AssignmentID: assignment.ID,
		Destination:  assignment.DestinationURL(campaign),
	}

	if f.rc != nil {
		if bs, err := json.Marshal(out); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, redirectCacheTTL).Err()
		}
	}

	return out, nil
}
