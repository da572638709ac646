package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/user/cinelens-go/apperror"
	"github.com/user/cinelens-go/metrics"
	"github.com/user/cinelens-go/users"
)

const (
	// TokenTypeBearer is the token_type reported to clients.
	TokenTypeBearer = "bearer"

	msgBadCredentials     = "Incorrect username or password"
	msgInvalidCredentials = "Could not validate credentials"
)

// AuthService implements registration, login and token-to-user resolution.
type AuthService struct {
	store    users.Store
	tokens   *TokenManager
	validate *validator.Validate
}

// NewAuthService wires the service to a credential store and token manager.
func NewAuthService(store users.Store, tokens *TokenManager) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register validates the request, hashes the password and stores the user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validationMessage(err), err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, apperror.NewValidationError("password is required", nil)
	}
	// validator counts runes; bcrypt's limit is in bytes.
	if len(req.Password) > MaxPasswordBytes {
		return nil, apperror.NewValidationError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes), nil)
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, users.NewUser{
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Email:          req.Email,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUser) {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login checks the credentials and issues an access token.
// Unknown usernames and wrong passwords produce the same AuthError.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewBadRequestError("username and password are required", err)
	}

	user, err := s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			burnPasswordCheck(req.Password)
			metrics.RecordLogin(metrics.OutcomeFailure)
			return nil, apperror.NewAuthError(msgBadCredentials, nil)
		}
		metrics.RecordLogin(metrics.OutcomeError)
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if !VerifyPassword(req.Password, user.HashedPassword) {
		metrics.RecordLogin(metrics.OutcomeFailure)
		return nil, apperror.NewAuthError(msgBadCredentials, nil)
	}

	accessToken, _, err := s.tokens.Issue(user.Username)
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	metrics.RecordLogin(metrics.OutcomeSuccess)
	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to its user. Every rejection reason
// yields the same AuthError so responses do not reveal which check failed
// or whether the account exists. Store failures are reported as such.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*users.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}
	return user, nil
}

// validationMessage turns validator errors into a short client-facing sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", field))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}
