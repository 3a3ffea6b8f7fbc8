package middleware

import (
	"net/http"
	"strconv"
	"time"

	apperrors "roombook/pkg/errors"
)

const CodeRateLimited = "RATE_LIMITED"

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	_ = apperrors.WriteError(w, err)
}

func formatSeconds(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
