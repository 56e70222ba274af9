package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketman0418/astra-chats/internal/infrastructure/logger"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// HandleError writes err as an HTTP error response. Platform errors map to
// their status code and are logged with their UUID; anything else is a 500.
func HandleError(c *gin.Context, err error, message string) {
	log := logger.GetLogger()

	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		platformerrors.LogError(log, platformErr)
		c.JSON(platformerrors.ErrorTypeToHTTPStatus(platformErr.Type), ErrorResponse{
			Error: &ErrorDetail{
				Message: message,
				Type:    errorTypeToString(platformErr.Type),
				Code:    platformErr.UUID,
			},
		})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    errorTypeToString(platformerrors.ErrorTypeInternal),
		},
	})
}

// HandleNewError creates and writes a new typed error response. Use this for
// route-level errors like validation or authorization failures.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string, code string) {
	c.JSON(platformerrors.ErrorTypeToHTTPStatus(errorType), ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    errorTypeToString(errorType),
			Code:    code,
		},
	})
}

// errorTypeToString converts an ErrorType to a snake_case string for API responses.
func errorTypeToString(t platformerrors.ErrorType) string {
	switch t {
	case platformerrors.ErrorTypeNotFound:
		return "not_found_error"
	case platformerrors.ErrorTypeValidation, platformerrors.ErrorTypeMalformedTurn:
		return "validation_error"
	case platformerrors.ErrorTypeConflict:
		return "conflict_error"
	case platformerrors.ErrorTypeUnauthorized:
		return "unauthorized_error"
	case platformerrors.ErrorTypeForbidden:
		return "forbidden_error"
	case platformerrors.ErrorTypeRemoteRead, platformerrors.ErrorTypeRemoteWrite, platformerrors.ErrorTypeExternal:
		return "remote_log_error"
	case platformerrors.ErrorTypeInternal:
		fallthrough
	default:
		return "internal_error"
	}
}
