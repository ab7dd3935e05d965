package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	sessionContextKey  contextKey = "wizard_session"
	recorderContextKey contextKey = "session_recorder"
)

// NewContextWithSession stores the authenticated session id. When the
// request logger is in the chain it also learns the id.
func NewContextWithSession(ctx context.Context, id uuid.UUID) context.Context {
	if rec, ok := ctx.Value(recorderContextKey).(*string); ok {
		*rec = id.String()
	}
	return context.WithValue(ctx, sessionContextKey, id)
}

func SessionFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionContextKey).(uuid.UUID)
	return id, ok
}

func withSessionRecorder(ctx context.Context, rec *string) context.Context {
	return context.WithValue(ctx, recorderContextKey, rec)
}
