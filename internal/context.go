package internal

import "context"

type ctxKey string

const actorKey ctxKey = "actor"

// Actor identifies the authenticated caller for the duration of one
// request, without pulling domain packages into the context plumbing.
type Actor struct {
	UserID   int64
	RoleID   int64
	Username string
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}
