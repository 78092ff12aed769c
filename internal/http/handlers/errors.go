package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

// statusByKind is the only place error kinds become HTTP statuses.
var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:          http.StatusBadRequest,
	apperr.KindDecode:              http.StatusBadRequest,
	apperr.KindUnintelligibleAudio: http.StatusBadRequest,
	apperr.KindServiceUnavailable:  http.StatusBadGateway,
	apperr.KindModelLoad:           http.StatusServiceUnavailable,
	apperr.KindInternal:            http.StatusInternalServerError,
}

func StatusFor(err error) int {
	if s, ok := statusByKind[apperr.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// renderError writes {"error": msg} with the mapped status. Internal errors
// are logged with the request's logger.
func renderError(c *gin.Context, err error) {
	status := StatusFor(err)
	log := RequestLogger(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	} else {
		log.Info("request rejected", "status", status, "kind", apperr.KindOf(err), "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, types.ErrorResp{Error: publicMessage(err, status)})
}

// publicMessage keeps upstream detail out of 5xx bodies. Client errors echo
// the full chain so callers can fix their input.
func publicMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.KindInternal && e.Msg != "" {
		return e.Msg
	}
	return "internal server error"
}

const loggerKey = "logger"

// RequestLogger returns the per-request logger set by the router middleware.
func RequestLogger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

func SetRequestLogger(c *gin.Context, l *slog.Logger) {
	c.Set(loggerKey, l)
}
