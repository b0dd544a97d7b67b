package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/google/uuid"
)

// ErrUnauthenticated means the session token is missing, unknown or expired
var ErrUnauthenticated = errors.New("unauthenticated")

// Login opens a session for username acting with the requested role.
// The role is a trusted client label; unknown labels become VIEWER.
func (s *Service) Login(ctx context.Context, username, role string) (sess *auth.Session, err error) {
	scope := s.begin(ctx, "login")
	defer func() { s.end(scope, "login", err) }()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", service.ErrInvalidInput)
	}

	sess = &auth.Session{
		Token:     uuid.NewString(),
		Username:  username,
		Role:      auth.ParseRole(role),
		CreatedAt: s.store.Now(),
	}
	if err := s.clientState.SaveSession(scope.Ctx, sess); err != nil {
		return nil, err
	}

	scope.Log.Infof("session opened for %s as %s", sess.Username, sess.Role)
	return sess, nil
}

// Logout forgets a session.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.clientState.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to the acting user.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Actor, error) {
	if token == "" {
		return auth.Actor{}, ErrUnauthenticated
	}

	sess, err := s.clientState.GetSession(ctx, token)
	if errors.Is(err, service.ErrNotFound) {
		return auth.Actor{}, ErrUnauthenticated
	}
	if err != nil {
		return auth.Actor{}, err
	}

	return auth.ActorFromSession(sess), nil
}
