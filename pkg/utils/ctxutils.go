// pkg/utils/ctxutils.go

package utils

import (
	"context"

	"optilab/pkg/contextkeys"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

func WithActor(ctx context.Context, actor types.Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

func GetActorFromCtx(ctx context.Context) (types.Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(types.Actor)
	if !ok || actor.ID == "" {
		return types.Actor{}, apperrors.ErrActorNotFoundInContext
	}
	return actor, nil
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
