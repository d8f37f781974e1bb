package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"waves-server/internal/domain/search"
	"waves-server/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string `json:"code"` // UUID from PlatformError
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	Detail        string `json:"detail,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses.
// Search transport failures become 502 with the failure text as detail.
func HandleError(reqCtx *gin.Context, err error, message string) {
	ctx := reqCtx.Request.Context()

	// Only the scrubbed transport detail is logged; the response keeps it verbatim.
	var transportErr *search.TransportError
	if errors.As(err, &transportErr) {
		code := ""
		var existing *platformerrors.PlatformError
		if errors.As(err, &existing) {
			code = existing.UUID
		}
		err = platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeExternal, message, search.LogSafe(transportErr), code)
	}
	_ = reqCtx.Error(err)

	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		platformerrors.LogError(log.Logger, domainErr)
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}
		detail := errorMessage
		if transportErr != nil {
			detail = transportErr.Error()
		}

		requestID := domainErr.GetRequestID()
		if requestID == "" {
			requestID = platformerrors.RequestIDFromContext(ctx)
		}

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:          domainErr.GetUUID(),
			Error:         errorMessage,
			Message:       errorMessage,
			Detail:        detail,
			ErrorInstance: domainErr,
			RequestID:     requestID,
		})
		return
	}

	// Non-platform errors
	log.Error().Err(err).Str("request_id", platformerrors.RequestIDFromContext(ctx)).Msg(message)
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:         message,
		Message:       message,
		Detail:        message,
		ErrorInstance: err,
		RequestID:     platformerrors.RequestIDFromContext(ctx),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)
	_ = reqCtx.Error(err)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:          err.GetUUID(),
		Error:         message,
		Message:       message,
		Detail:        message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	})
}
