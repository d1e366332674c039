// Package response is the HTTP facade's single envelope writer, grounded
// on the teacher's pkg/response: every handler replies through Success or
// Error rather than calling c.JSON directly, so the envelope shape and
// request-ID echo stay consistent across endpoints.
package response

import (
	"net/http"
	"time"

	"performa/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON response shape every endpoint returns.
type Envelope struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success writes a 200 envelope carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Code:      "ok",
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().Unix(),
		RequestID: requestID(c),
	})
}

// Error writes an envelope whose HTTP status and code are derived from
// err's apperrors.Kind when present, falling back to 500/"internal".
func Error(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, Envelope{
		Code:      code,
		Message:   err.Error(),
		Timestamp: time.Now().Unix(),
		RequestID: requestID(c),
	})
}

// BadRequest writes a 400 envelope with a plain message (request-shape
// errors caught before they ever reach an apperrors.Error, e.g. bad JSON).
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Code:      "bad_request",
		Message:   message,
		Timestamp: time.Now().Unix(),
		RequestID: requestID(c),
	})
}

// TooManyRequests writes a 429 envelope for rate-limited callers.
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Envelope{
		Code:      "rate_limited",
		Message:   "query rate limit exceeded",
		Timestamp: time.Now().Unix(),
		RequestID: requestID(c),
	})
}

func statusFor(err error) (int, string) {
	appErr, ok := err.(*apperrors.Error)
	if !ok {
		return http.StatusInternalServerError, "internal"
	}
	switch appErr.Kind {
	case apperrors.KindConfiguration:
		return http.StatusBadRequest, "configuration_error"
	case apperrors.KindOutOfTimeline:
		return http.StatusBadRequest, "out_of_timeline"
	case apperrors.KindDependencyCycle:
		return http.StatusUnprocessableEntity, "dependency_cycle"
	case apperrors.KindConvergence:
		return http.StatusUnprocessableEntity, "convergence_error"
	case apperrors.KindLedgerSealed:
		return http.StatusConflict, "ledger_sealed"
	case apperrors.KindQuery:
		return http.StatusNotFound, "query_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func requestID(c *gin.Context) string {
	if id, exists := c.Get("RequestID"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
