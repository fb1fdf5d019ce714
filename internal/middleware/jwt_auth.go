package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "userID"
	ContextClaims = "user"
)

var errInvalidToken = errors.New("invalid token")

// TokenAuth resolves bearer tokens to user ids. Local JWTs are tried first;
// Firebase ID tokens are accepted when a verifier is configured.
type TokenAuth struct {
	secret   []byte
	firebase TokenVerifier
	users    FirebaseUserLookup
}

func NewTokenAuth(secret string) *TokenAuth {
	return &TokenAuth{secret: []byte(secret)}
}

// IssueToken signs an access token for user.
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (a *TokenAuth) parseJWT(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Resolve returns the user id a token belongs to.
func (a *TokenAuth) Resolve(ctx context.Context, tokenString string) (string, *models.JwtCustomClaims, error) {
	claims, err := a.parseJWT(tokenString)
	if err == nil {
		return claims.UserID, claims, nil
	}
	if a.firebase == nil {
		return "", nil, err
	}
	userID, ferr := a.resolveFirebase(ctx, tokenString)
	if ferr != nil {
		return "", nil, ferr
	}
	return userID, nil, nil
}

// Middleware authenticates the request from the Authorization header, or
// from the token query parameter for websocket upgrades.
func (a *TokenAuth) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			userID, claims, err := a.Resolve(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextUserID, userID)
			if claims != nil {
				c.Set(ContextClaims, claims)
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// UserID returns the authenticated user id, or "" outside the middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
