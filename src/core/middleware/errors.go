package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"birdfinder-server-go/src/core/apperr"
	"birdfinder-server-go/src/core/utils"

	"github.com/gin-gonic/gin"
)

// InternalErrorMessage fallback body for errors without a message
const InternalErrorMessage = "Internal server error"

// ErrorResponse JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorResponder formats the last error recorded with c.Error once the rest of
// the chain has returned. It must wrap every stage whose errors it should answer.
func ErrorResponder(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		err := last.Err
		kind := apperr.KindOf(err)
		fields := map[string]interface{}{
			"request_id": RequestIDFrom(c),
			"kind":       kind.String(),
			"error":      err.Error(),
		}

		if c.Writer.Written() {
			logger.Warn("error after response was written", fields)
			return
		}

		message := err.Error()
		if kind == apperr.KindInternal {
			logger.Error("request failed", fields)
			if message == "" {
				message = InternalErrorMessage
			}
		} else {
			logger.Debug("request rejected", fields)
		}

		c.JSON(kind.Status(), ErrorResponse{Error: message})
	}
}

// Recovery turns a panic into an internal error for ErrorResponder.
func Recovery(logger *utils.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(fmt.Sprintf("panic recovered: %v", recovered), map[string]interface{}{
			"request_id": RequestIDFrom(c),
			"stack":      string(debug.Stack()),
		})
		_ = c.Error(&apperr.Error{
			Kind:    apperr.KindInternal,
			Message: InternalErrorMessage,
			Err:     fmt.Errorf("panic: %v", recovered),
		})
		c.Abort()
	})
}
