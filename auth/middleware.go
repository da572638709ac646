package auth

import (
	"net/http"
	"strings"

	"github.com/user/cinelens-go/apperror"
	"github.com/user/cinelens-go/metrics"
)

// JWTMiddleware returns middleware that requires `Authorization: Bearer <token>`
// and resolves the token to a user before calling next. The user is available
// to handlers through UserFromContext.
//
// A missing header, a malformed header, an invalid or expired token and an
// unknown subject all get the same 401 response.
func JWTMiddleware(service *AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.RecordGateRejection()
				apperror.WriteError(w, r, apperror.NewAuthError(msgInvalidCredentials, nil))
				return
			}

			user, err := service.Authenticate(r.Context(), token)
			if err != nil {
				if apperror.IsAuthError(err) {
					metrics.RecordGateRejection()
				}
				apperror.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
		})
	}
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
