package handler

import (
	"context"
	"net/http"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/common"
)

type callerKey struct{}

// caller is the authenticated session behind a request
type caller struct {
	token string
	actor auth.Actor
}

func withCaller(ctx context.Context, c caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c
}

func actorFrom(r *http.Request) auth.Actor {
	return callerFrom(r.Context()).actor
}

// requireSession resolves the bearer token to an actor or answers 401.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := common.BearerToken(r.Header.Get("Authorization"))

		actor, err := a.commands.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller{token: token, actor: actor})))
	})
}
