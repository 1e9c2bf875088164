package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/example/easyride/internal/persistence"
)

// SessionStorageKey is the local storage key holding the serialized session.
const SessionStorageKey = "t-glide-user"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// MinRenterAge is the minimum age to register or rent.
const MinRenterAge = 16

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Banner messages shown by the authentication screen.
const (
	MsgFillAllFields      = "Veuillez remplir tous les champs"
	MsgPasswordMismatch   = "Les mots de passe ne correspondent pas"
	MsgTooYoung           = "Vous devez avoir au moins 16 ans"
	MsgInvalidEmail       = "L'email est invalide"
	MsgPasswordTooShort   = "Le mot de passe doit contenir au moins 6 caractères"
	MsgInvalidCredentials = "Email ou mot de passe invalide"
	MsgRegistrationFailed = "Échec de la création du compte"
)

// SessionConfig carries the dependencies shared by every session store.
type SessionConfig struct {
	Demo          DemoAccount
	IDGenerator   func() string
	LoginDelay    Delay
	RegisterDelay Delay
}

// SessionStore holds the signed-in user of one client and mirrors it into
// that client's local storage. The logged-in flag is true iff a user is held.
type SessionStore struct {
	mu      sync.RWMutex
	storage persistence.LocalStorage
	cfg     SessionConfig
	user    *User
	logger  *slog.Logger
}

// OpenSessionStore binds a store to storage and rehydrates any persisted
// session. A record that cannot be decoded is discarded.
func OpenSessionStore(ctx context.Context, storage persistence.LocalStorage, cfg SessionConfig, logger *slog.Logger) *SessionStore {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "user-" + uuid.NewString() }
	}
	s := &SessionStore{storage: storage, cfg: cfg, logger: defaultLogger(logger)}
	s.rehydrate(ctx)
	return s
}

func (s *SessionStore) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionStore", operation, attrs...)
}

func (s *SessionStore) rehydrate(ctx context.Context) {
	if s.storage == nil {
		return
	}
	logger := s.loggerWith(ctx, "Rehydrate")

	raw, err := s.storage.GetItem(ctx, SessionStorageKey)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to read persisted session", "error", err)
		}
		return
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		logger.WarnContext(ctx, "discarding malformed persisted session", "error", err)
		if rmErr := s.storage.RemoveItem(ctx, SessionStorageKey); rmErr != nil {
			logger.ErrorContext(ctx, "failed to remove malformed session", "error", rmErr)
		}
		return
	}

	s.user = &user
	logger.DebugContext(ctx, "session rehydrated", "user_id", user.ID)
}

// User returns a copy of the signed-in user.
func (s *SessionStore) User() (User, bool) {
	if s == nil {
		return User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsLoggedIn reports whether a session is held.
func (s *SessionStore) IsLoggedIn() bool {
	_, ok := s.User()
	return ok
}

// Login signs in the demo account. Any other pair, a cancelled context or a
// storage failure yields false and leaves the current session untouched.
func (s *SessionStore) Login(ctx context.Context, email, password string) bool {
	if s == nil {
		return false
	}
	logger := s.loggerWith(ctx, "Login", "email", normalizeEmail(email))

	if err := s.cfg.LoginDelay.Wait(ctx); err != nil {
		logger.WarnContext(ctx, "login abandoned", "error", err)
		return false
	}

	if !s.cfg.Demo.Matches(email, password) {
		logger.InfoContext(ctx, "login rejected", "error_kind", ErrorKind(ErrInvalidCredentials))
		return false
	}

	if err := s.store(ctx, s.cfg.Demo.User); err != nil {
		logger.ErrorContext(ctx, "failed to persist session", "error", err)
		return false
	}
	logger.InfoContext(ctx, "login succeeded", "user_id", s.cfg.Demo.User.ID)
	return true
}

// Register signs in a freshly fabricated user built from params. No account
// is created anywhere; the profile only lives in the session record.
func (s *SessionStore) Register(ctx context.Context, params RegisterParams) bool {
	if s == nil {
		return false
	}
	logger := s.loggerWith(ctx, "Register", "email", normalizeEmail(params.Email))

	if problem := params.Problem(); problem != "" {
		logger.InfoContext(ctx, "registration rejected", "reason", problem)
		return false
	}

	if err := s.cfg.RegisterDelay.Wait(ctx); err != nil {
		logger.WarnContext(ctx, "registration abandoned", "error", err)
		return false
	}

	n, _ := parseAge(params.Age)
	age := int(n)
	user := User{
		ID:    s.cfg.IDGenerator(),
		Name:  strings.TrimSpace(params.Name),
		Email: normalizeEmail(params.Email),
		Age:   age,
		Phone: strings.TrimSpace(params.Phone),
	}
	if user.ID == "" {
		logger.ErrorContext(ctx, "id generator returned an empty id")
		return false
	}

	if err := s.store(ctx, user); err != nil {
		logger.ErrorContext(ctx, "failed to persist session", "error", err)
		return false
	}
	logger.InfoContext(ctx, "registration succeeded", "user_id", user.ID)
	return true
}

// Logout clears the session from memory and storage. It is idempotent and
// clears memory even when storage fails. The lock is held across the removal
// so a concurrent Login cannot land between the two.
func (s *SessionStore) Logout(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil

	if s.storage == nil {
		return
	}
	if err := s.storage.RemoveItem(ctx, SessionStorageKey); err != nil {
		s.loggerWith(ctx, "Logout").ErrorContext(ctx, "failed to remove persisted session", "error", err)
		return
	}
	s.loggerWith(ctx, "Logout").InfoContext(ctx, "logged out")
}

// store persists user first so memory never claims a session storage lacks.
func (s *SessionStore) store(ctx context.Context, user User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.SetItem(ctx, SessionStorageKey, string(payload)); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	s.user = &user
	return nil
}

// Problem returns the banner message describing the first problem with the
// sign-up form, or "" when the form is well formed.
func (p RegisterParams) Problem() string {
	name := strings.TrimSpace(p.Name)
	email := strings.TrimSpace(p.Email)
	phone := strings.TrimSpace(p.Phone)
	age := strings.TrimSpace(p.Age)
	if name == "" || email == "" || phone == "" || age == "" || p.Password == "" || p.ConfirmPassword == "" {
		return MsgFillAllFields
	}
	if !emailPattern.MatchString(email) {
		return MsgInvalidEmail
	}
	if p.Password != p.ConfirmPassword {
		return MsgPasswordMismatch
	}
	if len([]rune(p.Password)) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	if n, ok := parseAge(age); !ok || n < MinRenterAge {
		return MsgTooYoung
	}
	return ""
}

// LoginProblem returns the banner message for an incomplete sign-in form.
func LoginProblem(email, password string) string {
	if strings.TrimSpace(email) == "" || password == "" {
		return MsgFillAllFields
	}
	return ""
}
