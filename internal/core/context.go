package core

import "context"

type contextKey string

const ctxKeyActor contextKey = "actor_id"

// ContextWithActor records who is performing an administrative action.
// The id is supplied by the surrounding application's session layer.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actorID)
}

// ActorFromContext returns the actor id, or "" when none was set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActor).(string); ok {
		return v
	}
	return ""
}
