package authapi

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	NIN         string `json:"nin"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login, register and refresh. RefreshToken may
// be empty on refresh when the server keeps the existing one.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Profile is the server's view of the signed-in user. Balances are decimal
// strings as sent by the backend.
type Profile struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	FullName            string `json:"full_name"`
	PhoneNumber         string `json:"phone_number"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
	WalletBalance       string `json:"wallet_balance"`
	EscrowBalance       string `json:"escrow_balance"`
	PendingTransactions int    `json:"pending_transactions"`
}

// UpdateProfileRequest is the body of PUT /user/profile.
type UpdateProfileRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// ChangePasswordRequest is the body of PUT /user/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ErrorResponse is the error body written by the backend.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
