package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"

	apperrors "paper-agent/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// upstreamStatus maps a classified upstream error to the HTTP status the
// chat route reports: 429 rate limited, 400 content filtered, 408
// timeout, 502 upstream failure, 503 network trouble.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrContentFiltered):
		return http.StatusBadRequest
	case isTimeoutError(err):
		return http.StatusRequestTimeout
	case errors.Is(err, apperrors.ErrUpstreamUnavailable),
		errors.Is(err, apperrors.ErrAuthFailed),
		errors.Is(err, apperrors.ErrInvalidGenerationOutput):
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
