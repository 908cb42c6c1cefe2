package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"recipebook/internal/feature/auth/domain/entity"
)

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// DefaultSessionTTL is used when no positive TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// dummyHash is compared against when the user does not exist, so a login
// costs one bcrypt comparison either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. Name uniqueness is checked by the caller.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindAll returns every user in stored order.
	FindAll(ctx context.Context) ([]entity.User, error)

	// FindByName retrieves a user by user name. Returns ErrUserNotFound if absent.
	FindByName(ctx context.Context, name string) (*entity.User, error)

	// IsNameUnique reports whether no user has the given name.
	IsNameUnique(ctx context.Context, name string) (bool, error)

	// SetAdministrator updates the administrator flag. Unknown IDs are a no-op.
	SetAdministrator(ctx context.Context, id uint, value bool) error

	// Clear deletes every user.
	Clear(ctx context.Context) error
}

// authUsecase implements registration, login and session resolution.
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	cost     int
}

// NewAuthUsecase creates a new authUsecase.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, ttl time.Duration) *authUsecase {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authUsecase{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates a non-administrator user with a bcrypt-hashed password.
// Returns ErrPasswordTooLong for passwords over MaxPasswordBytes and
// ErrUserNameTaken if the name is already in use.
func (u *authUsecase) Register(ctx context.Context, name, password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	unique, err := u.users.IsNameUnique(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check user name: %w", err)
	}
	if !unique {
		return ErrUserNameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{UserName: name, PasswordHash: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByCredentials verifies a name/password pair and returns the principal.
// found is false for an unknown user and for a wrong password alike.
func (u *authUsecase) FindByCredentials(ctx context.Context, name, password string) (entity.SessionState, bool, error) {
	user, err := u.users.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return entity.Anonymous(), false, err
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if user == nil || compareErr != nil {
		return entity.Anonymous(), false, nil
	}

	return entity.SessionState{
		Authenticated: true,
		UserID:        user.ID,
		UserName:      user.UserName,
		Administrator: user.Administrator,
	}, true, nil
}

// Login verifies credentials and opens a new server-side session.
func (u *authUsecase) Login(ctx context.Context, name, password string) (*entity.Session, error) {
	state, found, err := u.FindByCredentials(ctx, name, password)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	session := &entity.Session{
		ID:            u.newID(),
		UserID:        state.UserID,
		UserName:      state.UserName,
		Administrator: state.Administrator,
		CreatedAt:     now,
		ExpiresAt:     now.Add(u.ttl),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Logout discards the session. A missing session is not an error.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// Resolve maps a session ID to the request principal.
// Unknown and expired sessions resolve to an anonymous state without error.
func (u *authUsecase) Resolve(ctx context.Context, sessionID string) (entity.SessionState, error) {
	if sessionID == "" {
		return entity.Anonymous(), nil
	}
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return entity.Anonymous(), nil
		}
		return entity.Anonymous(), err
	}
	if u.now().After(session.ExpiresAt) {
		if err := u.sessions.Delete(ctx, sessionID); err != nil {
			slog.Warn("failed to delete expired session", "error", err)
		}
		return entity.Anonymous(), nil
	}
	return session.State(), nil
}

// TTL returns the configured session lifetime.
func (u *authUsecase) TTL() time.Duration {
	return u.ttl
}

// ListUsers returns every registered user.
func (u *authUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.users.FindAll(ctx)
}

// GetUser returns a single user by ID.
func (u *authUsecase) GetUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// SetAdministrator grants or revokes the administrator role.
// Existing sessions keep the role they were opened with.
func (u *authUsecase) SetAdministrator(ctx context.Context, id uint, value bool) error {
	return u.users.SetAdministrator(ctx, id, value)
}

// ClearUsers deletes every user and every session. Used to reset fixtures.
// Sessions go first so no cookie outlives its user.
func (u *authUsecase) ClearUsers(ctx context.Context) error {
	if err := u.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return u.users.Clear(ctx)
}

// PurgeExpiredSessions removes expired sessions from the store.
func (u *authUsecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}
