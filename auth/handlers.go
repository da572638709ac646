package auth

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/user/cinelens-go/apperror"
)

// maxBodyBytes bounds request bodies for the auth endpoints.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers for the authentication endpoints.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleLogin godoc
// @Summary Obtain an access token
// @Description Exchanges form-encoded credentials for a bearer token.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /token [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			apperror.WriteError(w, r, apperror.NewBadRequestError("invalid form body", err))
			return
		}

		resp, err := h.service.Login(r.Context(), LoginRequest{
			Username: r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
		})
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		// Token responses must not be cached (RFC 6749 §5.1).
		w.Header().Set("Cache-Control", "no-store")
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleRegister godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New user"
// @Success 201 {object} users.User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/ [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		apperror.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleMe godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.User
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, r, apperror.NewInternalError("user missing from request context", nil))
			return
		}
		apperror.WriteJSON(w, http.StatusOK, user)
	}
}
