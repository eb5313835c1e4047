// Package contexthelpers stores request-scoped identity in a [context.Context].
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")
	RequestIDContextKey           = contextKey("requestID")
)

// AuthenticatedUserID returns the user id set by [AuthenticateContext] or 0 when the request is anonymous.
func AuthenticatedUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

func IsAuthenticated(ctx context.Context) bool {
	return AuthenticatedUserID(ctx) != 0
}

func RequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDContextKey).(string)
	if !ok {
		return ""
	}
	return requestID
}

func AuthenticateContext(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), AuthenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}

func SetRequestID(r *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
	return r.WithContext(ctx)
}
