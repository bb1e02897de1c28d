package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalease/internal/middleware"
	"legalease/internal/service"
)

type errorResponse struct {
	Status  bool   `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h HandlerSet) fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: message})
}

// respondError maps a service error onto the wire taxonomy. Unknown errors
// are logged and hidden behind internal_error.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Field:   verr.Field,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.fail(c, http.StatusUnauthorized, "invalid_credentials", service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		h.fail(c, http.StatusUnauthorized, "unauthenticated", "not authenticated")
	case errors.Is(err, service.ErrForbidden):
		h.fail(c, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, service.ErrLawyerNotFound):
		h.fail(c, http.StatusNotFound, "lawyer_not_found", service.ErrLawyerNotFound.Error())
	case errors.Is(err, service.ErrNotFound):
		h.fail(c, http.StatusNotFound, "not_found", service.ErrNotFound.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		h.fail(c, http.StatusConflict, "duplicate_email", service.ErrDuplicateEmail.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		h.fail(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, service.ErrProfileExists):
		h.fail(c, http.StatusConflict, "profile_exists", service.ErrProfileExists.Error())
	case errors.Is(err, service.ErrUpstreamUnavailable):
		h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("upstream unavailable")
		h.fail(c, http.StatusServiceUnavailable, "upstream_unavailable", "service temporarily unavailable")
	default:
		h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("unhandled error")
		h.fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// bindJSON decodes the body, answering 413 for bodies cut off by a
// MaxBytesReader and 400 for anything else unreadable.
func (h HandlerSet) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return false
		}
		h.fail(c, http.StatusBadRequest, "validation_error", "malformed request body")
		return false
	}
	return true
}

// limitBody caps the request body for a payload carrying up to maxRaw bytes
// of base64-encoded binary.
func limitBody(c *gin.Context, maxRaw int64) {
	if maxRaw <= 0 {
		return
	}
	encoded := maxRaw/3*4 + 4
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, encoded+64<<10)
}
