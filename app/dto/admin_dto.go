package dto

// ApproveUserRequest represents the admin request to activate an account
type ApproveUserRequest struct {
	UUID    string `json:"-"`
	AdminID uint   `json:"-"`
}

// ApproveUserResponse represents the response after approving an account
type ApproveUserResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

// DashboardResponse carries platform-wide counters for the admin dashboard
type DashboardResponse struct {
	TotalUsers           int64 `json:"total_users"`
	PendingUsers         int64 `json:"pending_users"`
	TotalCampaigns       int64 `json:"total_campaigns"`
	LiveCampaigns        int64 `json:"live_campaigns"`
	TotalAssignments     int64 `json:"total_assignments"`
	CompletedAssignments int64 `json:"completed_assignments"`
	TotalClicks          int64 `json:"total_clicks"`
	PendingProofs        int64 `json:"pending_proofs"`
	PendingPayouts       int64 `json:"pending_payouts"`
}
