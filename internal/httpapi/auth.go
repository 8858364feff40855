package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const RoleAdmin = "admin"

type contextKey string

const adminSubjectKey contextKey = "admin_subject"

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrNotAdmin      = errors.New("token does not carry the admin role")
	ErrNoSecret      = errors.New("admin jwt secret is not configured")
)

type AdminClaims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// verifyAdminToken checks an HS256 token with an expiry and the admin role.
func verifyAdminToken(tokenString string, secret []byte, issuer string) (*AdminClaims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var claims AdminClaims

	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}

	return &claims, nil
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", ErrMissingBearer
	}

	return token, nil
}

// AdminOnly rejects requests without a valid admin bearer token.
func AdminOnly(secret []byte, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil {
				var claims *AdminClaims

				claims, err = verifyAdminToken(token, secret, issuer)
				if err == nil {
					ctx := context.WithValue(r.Context(), adminSubjectKey, claims.Subject)
					next.ServeHTTP(w, r.WithContext(ctx))

					return
				}
			}

			logging.Logger.Warn("[AdminOnly] Rejected request",
				zap.String("path", r.URL.Path),
				zap.String("error", err.Error()),
			)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		})
	}
}

func adminSubject(ctx context.Context) string {
	subject, _ := ctx.Value(adminSubjectKey).(string)
	return subject
}
