package service_simple_auth

// Token-per-session identity. Credential verification proper lives with the
// external identity provider; this service only maps issued tokens back to
// an authenticated player.

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/playwrist/core/internal/model"
)

type Token = string

var (
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type SessionCache interface {
	SaveSession(token string, user model.User, ttl time.Duration) error
	SessionByToken(token string) (model.User, bool, error)
}

type Service struct {
	sessionCache SessionCache
	ttl          time.Duration
}

func New(
	sessionCache SessionCache,
	ttl *time.Duration,
) *Service {
	if ttl == nil {
		ttl = func() *time.Duration {
			defaultSessionTTL := time.Hour * 12
			return &defaultSessionTTL
		}()
	}

	return &Service{
		sessionCache: sessionCache,
		ttl:          *ttl,
	}
}

// Issue registers a fresh session for a display name and returns the token
// the client must present on every operation.
func (s *Service) Issue(name string) (model.User, Token, error) {
	user := model.User{
		ID:   uuid.New(),
		Name: name,
	}

	t := s.genToken()
	if err := s.sessionCache.SaveSession(t, user, s.ttl); err != nil {
		return model.User{}, "", errors.Join(ErrInternal, err)
	}

	return user, t, nil
}

func (s *Service) Resolve(t Token) (model.User, error) {
	if t == "" {
		return model.User{}, ErrUnauthenticated
	}

	user, ok, err := s.sessionCache.SessionByToken(t)
	if err != nil {
		return model.User{}, errors.Join(ErrInternal, err)
	}
	if !ok {
		return model.User{}, ErrUnauthenticated
	}

	return user, nil
}

func (s *Service) genToken() Token {
	return uuid.New().String()
}
