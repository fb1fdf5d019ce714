package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/middleware"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

func getUserIDFromContext(c echo.Context) string {
	return middleware.UserID(c)
}

// currentUser returns the authenticated user id or a 401.
func currentUser(c echo.Context) (string, error) {
	id := getUserIDFromContext(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.InvalidInput("Invalid request payload")
	}
	return c.Validate(req)
}

// HTTPErrorHandler renders every error as {"message": ...}. Infrastructure
// failures are logged and reported with a generic message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := apperrors.GenericMessage

	var he *echo.HTTPError
	if appErr, ok := apperrors.As(err); ok {
		status = appErr.HTTPStatus()
		message = appErr.PublicMessage()
		if appErr.Infrastructure() {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
	} else if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(he.Code)
		}
	} else {
		logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"message": message})
	}
	if err != nil {
		logger.Warn("write error response", zap.Error(err))
	}
}
