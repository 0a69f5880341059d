package dto

// RegisterRequest represents the registration form data
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=brand influencer"`

	// Brand fields (required when role is brand)
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url,max=512"`

	// Influencer fields (required when role is influencer)
	Name *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// RegisterResponse represents the response after successful registration
type RegisterResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
	Token   string  `json:"token"`
}

// LoginRequest represents the login form data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
	Token   string  `json:"token"`
}

// UserDTO represents an account in API responses
type UserDTO struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`

	Brand      *BrandDTO      `json:"brand,omitempty"`
	Influencer *InfluencerDTO `json:"influencer,omitempty"`
}

// BrandDTO represents a brand profile in API responses
type BrandDTO struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	CompanyName string  `json:"company_name"`
	Website     *string `json:"website,omitempty"`
	Status      string  `json:"status"`
}

// InfluencerDTO represents an influencer profile in API responses
type InfluencerDTO struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	Bio            *string `json:"bio,omitempty"`
	FollowersCount *int64  `json:"followers_count,omitempty"`
	Status         string  `json:"status"`
}
