package gin

import (
	"log/slog"
	"net/http"

	"github.com/fwojciec/stackdoc"
	"github.com/gin-gonic/gin"
)

var codes = map[string]int{
	stackdoc.EINVALID:     http.StatusBadRequest,
	stackdoc.ENOTFOUND:    http.StatusNotFound,
	stackdoc.ECONFLICT:    http.StatusConflict,
	stackdoc.ETIMEOUT:     http.StatusGatewayTimeout,
	stackdoc.EUPSTREAM:    http.StatusBadGateway,
	stackdoc.EPERSIST:     http.StatusServiceUnavailable,
	stackdoc.EUNAVAILABLE: http.StatusInternalServerError,
	stackdoc.ESTRUCTURE:   http.StatusInternalServerError,
	stackdoc.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode maps an application error code to an HTTP status.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error body with the status for its code.
// Internal errors are logged and reported without detail.
func (a *API) Error(c *gin.Context, err error) {
	code, message := stackdoc.ErrorCode(err), stackdoc.ErrorMessage(err)
	if code == stackdoc.EINTERNAL {
		a.logger().Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}
	respondMessage(c, ErrorStatusCode(code), message)
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
