package auth

// RegisterRequest is the body of POST /users/.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150" example:"newuser"`
	Password string `json:"password" validate:"required,max=72" example:"strongpassword123"`
	Email    string `json:"email,omitempty" validate:"omitempty,email" example:"user@example.com"`
}

// LoginRequest carries the form fields of POST /token.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"` // Lifetime of the access token in seconds.
}
