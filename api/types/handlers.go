package types

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/logger"
	"go.uber.org/zap"
)

// Handler utility functions to reduce duplication across handlers

// BindJSONOrError attempts to bind JSON request body to target struct
// Returns false and sends error response if binding fails
func BindJSONOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Status:  StatusError,
				Message: "Request body too large",
				Error:   string(apperrors.ErrCodeInvalidInput),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Invalid request body",
			Error:   string(apperrors.ErrCodeInvalidInput),
			Details: err.Error(),
		})
		return false
	}
	return true
}

// SendError maps an error to its HTTP status and writes an ErrorResponse.
// Errors that are not AppErrors become a generic 500.
func SendError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		SendInternalError(c, "Internal server error")
		return
	}

	status := appErr.GetHTTPCode()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		// storage details stay in the logs
		message = "Internal server error"
	}

	resp := ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(appErr.Code),
	}
	if status < http.StatusInternalServerError && len(appErr.Details) > 0 {
		resp.Details = appErr.Details
	}
	c.JSON(status, resp)
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(apperrors.ErrCodeInternal),
	})
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Logger returns the request-scoped logger, falling back to the one in deps
func Logger(c *gin.Context, deps *Dependencies) *zap.SugaredLogger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}
	if deps != nil {
		return logger.OrNop(deps.Logger)
	}
	return logger.Nop()
}

// LoggerKey is the gin context key of the request-scoped logger
const LoggerKey = "logger"
