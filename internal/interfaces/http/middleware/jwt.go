package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JIGLE/proman-sub000/internal/infrastructure/auth"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/logger"
	"github.com/JIGLE/proman-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth context keys
const (
	JWTClaimsKey  = "jwt_claims"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	UserHeaderKey = "X-User-ID"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	Validator TokenValidator
	// AllowUserHeader accepts a bare X-User-ID header when no token is sent.
	// Only meant for local development and trusted internal callers.
	AllowUserHeader bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// Auth resolves the owning user of the request from a bearer token, or from
// X-User-ID when AllowUserHeader is set, and rejects the request otherwise
func Auth(cfg AuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		userID, claims, err := resolveUser(c, cfg)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		if claims != nil {
			c.Set(JWTClaimsKey, claims)
		}
		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID.String()))
		c.Next()
	}
}

func resolveUser(c *gin.Context, cfg AuthConfig) (uuid.UUID, *auth.Claims, error) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		if cfg.AllowUserHeader {
			if raw := c.GetHeader(UserHeaderKey); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					return uuid.Nil, nil, auth.ErrMissingUserID
				}
				return id, nil, nil
			}
		}
		return uuid.Nil, nil, errMissingCredentials
	}

	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return uuid.Nil, nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	if token == "" || cfg.Validator == nil {
		return uuid.Nil, nil, auth.ErrInvalidToken
	}

	claims, err := cfg.Validator.ValidateAccessToken(token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, nil, auth.ErrMissingUserID
	}
	return id, claims, nil
}

var errMissingCredentials = errors.New("missing credentials")

func handleAuthError(c *gin.Context, cfg AuthConfig, err error) {
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	case errors.Is(err, auth.ErrMissingUserID):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid user identity"
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
		)
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetUserID returns the user id resolved by Auth
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetClaims returns the token claims, if the request carried a token
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
