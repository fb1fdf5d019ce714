package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/middleware"
	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

const tokenTTL = 72 * time.Hour

// AuthHandler exchanges Firebase ID tokens for local access tokens
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.TokenVerifier
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth middleware.TokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/firebase-login", h.FirebaseLogin)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT. Unknown
// Firebase accounts are registered as students.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.userRepository.GetByFirebaseUID(ctx, token.UID)
	if errors.Is(err, repositories.ErrNotFound) {
		email, _ := token.Claims["email"].(string)
		name, _ := token.Claims["name"].(string)
		uid := token.UID
		user = &models.User{
			Name:        name,
			Email:       email,
			Role:        models.RoleStudent,
			FirebaseUID: &uid,
		}
		if err := h.userRepository.Create(ctx, user); err != nil {
			return apperrors.Storage(err, "create user")
		}
		logger.Info("user registered from firebase", zap.String("user_id", user.ID))
	} else if err != nil {
		return apperrors.Storage(err, "get user")
	}

	if user.Banned {
		return apperrors.Forbidden("Your account has been banned")
	}

	localJWT, err := middleware.IssueToken(h.jwtSecret, user, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": localJWT, "user": user.Summary()})
}
