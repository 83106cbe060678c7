package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
)

// AuthState is the auth slice rendered by the presentation layer.
//
// INVARIANT: IsAuthenticated implies User != nil.
type AuthState struct {
	User                *model.User `json:"user"`
	IsAuthenticated     bool        `json:"isAuthenticated"`
	Loading             bool        `json:"loading"`
	Error               string      `json:"error,omitempty"`
	RememberCredentials bool        `json:"rememberCredentials"`
}

func (s AuthState) clone() AuthState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// RegisterInput is the submitted registration form. It is normalized by
// Register, not by the caller.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the submitted login form. Email is compared as given.
type LoginInput struct {
	Email               string
	Password            string
	RememberCredentials bool
}

// Auth owns the current user and the session keys in the persisted store.
type Auth struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	events   *Events
	logger   *slog.Logger

	mu    sync.Mutex
	state AuthState
}

// NewAuth creates a logged-out Auth. Call CheckAuthStatus once at startup to
// pick up a persisted session.
func NewAuth(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	events *Events,
	logger *slog.Logger,
) *Auth {
	return &Auth{
		users:    users,
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

func (a *Auth) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// CurrentUser returns the authenticated user, if any.
func (a *Auth) CurrentUser() (model.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.IsAuthenticated || a.state.User == nil {
		return model.User{}, false
	}
	return *a.state.User, true
}

func (a *Auth) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Error = ""
}

// =========================================================================
// OPERATIONS
// =========================================================================

// Register creates a user from in and logs them in. The name is trimmed and
// the email trimmed and lower-cased. Email uniqueness is not checked.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	a.begin(OpRegister, true)

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
	}

	if err := a.users.Create(ctx, user); err != nil {
		return nil, a.reject(OpRegister, failure(err, MsgRegisterFailed))
	}
	if err := a.sessions.Save(ctx, *user); err != nil {
		return nil, a.reject(OpRegister, failure(err, MsgRegisterFailed))
	}

	a.fulfill(OpRegister, func(s *AuthState) {
		u := *user
		s.User = &u
		s.IsAuthenticated = true
	})

	a.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login finds the first user whose email and password equal in exactly and
// starts a session for them. With RememberCredentials the submitted pair is
// stored for the next login form; without it any stored pair is removed.
func (a *Auth) Login(ctx context.Context, in LoginInput) (*model.User, error) {
	a.begin(OpLogin, true)

	user, err := a.users.FindByCredentials(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, a.reject(OpLogin, apperror.InvalidCredentials())
		}
		return nil, a.reject(OpLogin, failure(err, MsgLoginFailed))
	}

	// session keys go last so a failed login never leaves a restorable session
	if in.RememberCredentials {
		err = a.sessions.SaveRemembered(ctx, model.RememberedCredentials{
			Email:    in.Email,
			Password: in.Password,
			Remember: true,
		})
	} else {
		err = a.sessions.ClearRemembered(ctx)
	}
	if err != nil {
		return nil, a.reject(OpLogin, failure(err, MsgLoginFailed))
	}
	if err := a.sessions.Save(ctx, *user); err != nil {
		return nil, a.reject(OpLogin, failure(err, MsgLoginFailed))
	}

	a.fulfill(OpLogin, func(s *AuthState) {
		u := *user
		s.User = &u
		s.IsAuthenticated = true
		s.RememberCredentials = in.RememberCredentials
	})

	a.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, nil
}

// Logout removes the session keys. Remembered credentials are kept.
// Prefer ConfirmLogout, which asks first and also resets the contacts slice.
func (a *Auth) Logout(ctx context.Context) error {
	a.begin(OpLogout, true)

	if err := a.sessions.Clear(ctx); err != nil {
		return a.reject(OpLogout, failure(err, MsgLogoutFailed))
	}

	a.fulfill(OpLogout, func(s *AuthState) {
		s.User = nil
		s.IsAuthenticated = false
	})

	a.logger.Info("user logged out")
	return nil
}

// CheckAuthStatus restores the persisted session. A stored flag without a
// stored user, or any read failure, leaves the container logged out. A read
// failure is returned but not shown in Error.
func (a *Auth) CheckAuthStatus(ctx context.Context) (model.Session, error) {
	a.begin(OpCheckAuthStatus, false)

	session, err := a.sessions.Load(ctx)
	if err != nil {
		a.mu.Lock()
		a.state.Loading = false
		a.state.User = nil
		a.state.IsAuthenticated = false
		a.state.RememberCredentials = false
		a.mu.Unlock()

		a.events.publish(Event{Op: OpCheckAuthStatus, Phase: PhaseRejected, Err: err.Error()})
		a.logger.Warn("session restore failed", slog.String("error", err.Error()))
		return model.Session{}, fmt.Errorf("state: restoring session: %w", err)
	}

	a.fulfill(OpCheckAuthStatus, func(s *AuthState) {
		if !session.Valid() {
			s.User = nil
			s.IsAuthenticated = false
			s.RememberCredentials = false
			return
		}
		u := *session.CurrentUser
		s.User = &u
		s.IsAuthenticated = true
		s.RememberCredentials = session.RememberCredentials
	})

	if session.Valid() {
		a.logger.Info("session restored", slog.String("userID", session.CurrentUser.ID))
		return session, nil
	}
	return model.Session{}, nil
}

// RememberedCredentials returns the login stored by the last opted-in Login.
// It does not change state.
func (a *Auth) RememberedCredentials(ctx context.Context) (model.RememberedCredentials, bool, error) {
	creds, ok, err := a.sessions.LoadRemembered(ctx)
	if err != nil {
		return model.RememberedCredentials{}, false, fmt.Errorf("state: loading remembered credentials: %w", err)
	}
	return creds, ok, nil
}

// =========================================================================
// PHASES
// =========================================================================

// begin enters the pending phase. Session restore leaves Error alone.
func (a *Auth) begin(op Op, clearError bool) {
	a.mu.Lock()
	a.state.Loading = true
	if clearError {
		a.state.Error = ""
	}
	a.mu.Unlock()

	a.events.publish(Event{Op: op, Phase: PhasePending})
}

func (a *Auth) fulfill(op Op, apply func(*AuthState)) {
	a.mu.Lock()
	a.state.Loading = false
	a.state.Error = ""
	apply(&a.state)
	a.mu.Unlock()

	a.events.publish(Event{Op: op, Phase: PhaseFulfilled})
}

// reject records err's message and returns err for the caller.
func (a *Auth) reject(op Op, err *apperror.AppError) error {
	a.mu.Lock()
	a.state.Loading = false
	a.state.Error = err.Message
	a.mu.Unlock()

	a.events.publish(Event{Op: op, Phase: PhaseRejected, Err: err.Message})
	a.logger.Warn("auth operation failed",
		slog.String("op", string(op)),
		slog.String("error", err.Error()),
	)
	return err
}
