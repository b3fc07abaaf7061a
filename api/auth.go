package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// ActorHeader carries the authenticated user id. It is set by the auth
// proxy in front of this service; the service itself does not verify it.
const ActorHeader = "X-Actor-ID"

type actorKey struct{}

// WithActor returns a copy of ctx bound to actor.
func WithActor(ctx context.Context, actor ledger.ActorID) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorMiddleware copies ActorHeader into the request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(ActorHeader)); id != "" {
			r = r.WithContext(WithActor(r.Context(), ledger.ActorID(id)))
		}
		next.ServeHTTP(w, r)
	})
}

// ContextActors is the ledger.ActorProvider backed by ActorMiddleware.
type ContextActors struct{}

func (ContextActors) CurrentActor(ctx context.Context) (ledger.ActorID, bool) {
	id, ok := ctx.Value(actorKey{}).(ledger.ActorID)
	return id, ok && id != ""
}
