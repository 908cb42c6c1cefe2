package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipebook/internal/feature/auth/domain/entity"
)

// mockUserRepository is an in-memory implementation of UserRepository.
// It simulates database operations during testing.
type mockUserRepository struct {
	users []entity.User

	// FindByNameErr, when set, is returned by FindByName.
	FindByNameErr error
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id uint) (*entity.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindAll(_ context.Context) ([]entity.User, error) {
	return append([]entity.User(nil), m.users...), nil
}

func (m *mockUserRepository) FindByName(_ context.Context, name string) (*entity.User, error) {
	if m.FindByNameErr != nil {
		return nil, m.FindByNameErr
	}
	for i := range m.users {
		if m.users[i].UserName == name {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByName(ctx, name)
	if errors.Is(err, ErrUserNotFound) {
		return true, nil
	}
	return false, err
}

func (m *mockUserRepository) SetAdministrator(_ context.Context, id uint, value bool) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Administrator = value
		}
	}
	return nil
}

func (m *mockUserRepository) Clear(_ context.Context) error {
	m.users = nil
	return nil
}

// mockSessionRepository is an in-memory implementation of SessionRepository.
type mockSessionRepository struct {
	sessions  map[string]entity.Session
	CreateErr error
	ClearErr  error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: map[string]entity.Session{}}
}

func (m *mockSessionRepository) Create(_ context.Context, s *entity.Session) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *mockSessionRepository) FindByID(_ context.Context, id string) (*entity.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *mockSessionRepository) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepository) Clear(_ context.Context) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	clear(m.sessions)
	return nil
}

// newTestUsecase builds an authUsecase with a fixed clock and cheap bcrypt cost.
func newTestUsecase(users *mockUserRepository, sessions *mockSessionRepository, now time.Time) *authUsecase {
	uc := NewAuthUsecase(users, sessions, time.Hour)
	uc.cost = bcrypt.MinCost
	uc.now = func() time.Time { return now }
	n := 0
	uc.newID = func() string {
		n++
		return "sid-" + string(rune('0'+n))
	}
	return uc
}

func TestNewAuthUsecase_DefaultTTL(t *testing.T) {
	uc := NewAuthUsecase(&mockUserRepository{}, newMockSessionRepository(), 0)
	assert.Equal(t, DefaultSessionTTL, uc.TTL())
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepository{}
	uc := newTestUsecase(users, newMockSessionRepository(), time.Now())

	require.NoError(t, uc.Register(ctx, "ann", "secret"))

	require.Len(t, users.users, 1)
	stored := users.users[0]
	assert.Equal(t, "ann", stored.UserName)
	assert.False(t, stored.Administrator, "new users are never administrators")
	assert.NotEqual(t, "secret", stored.PasswordHash, "password must not be stored in plain text")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))

	err := uc.Register(ctx, "ann", "other")
	assert.ErrorIs(t, err, ErrUserNameTaken)
	assert.Len(t, users.users, 1, "duplicate registration must not insert a row")
}

func TestAuthUsecase_Register_PasswordBytes(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepository{}
	uc := newTestUsecase(users, newMockSessionRepository(), time.Now())

	// 40 Cyrillic letters are 80 bytes: short in characters, too long for bcrypt.
	long := strings.Repeat("я", 40)
	require.Equal(t, 80, len(long))
	assert.ErrorIs(t, uc.Register(ctx, "ann", long), ErrPasswordTooLong)
	assert.Empty(t, users.users)

	fits := strings.Repeat("я", 36)
	require.NoError(t, uc.Register(ctx, "ann", fits))
	_, found, err := uc.FindByCredentials(ctx, "ann", fits)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAuthUsecase_FindByCredentials(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepository{}
	uc := newTestUsecase(users, newMockSessionRepository(), time.Now())
	require.NoError(t, uc.Register(ctx, "ann", "secret"))
	require.NoError(t, users.SetAdministrator(ctx, 1, true))

	state, found, err := uc.FindByCredentials(ctx, "ann", "secret")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entity.SessionState{Authenticated: true, UserID: 1, UserName: "ann", Administrator: true}, state)

	tests := []struct {
		name     string
		user     string
		password string
	}{
		{"wrong password", "ann", "nope"},
		{"unknown user", "bob", "secret"},
		{"empty password", "ann", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, found, err := uc.FindByCredentials(ctx, tt.user, tt.password)
			require.NoError(t, err)
			assert.False(t, found)
			assert.False(t, state.Authenticated)
		})
	}

	t.Run("repository failure", func(t *testing.T) {
		failing := &mockUserRepository{FindByNameErr: errors.New("db down")}
		uc := newTestUsecase(failing, newMockSessionRepository(), time.Now())

		_, found, err := uc.FindByCredentials(ctx, "ann", "secret")
		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestAuthUsecase_LoginResolveLogout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	users := &mockUserRepository{}
	sessions := newMockSessionRepository()
	uc := newTestUsecase(users, sessions, now)
	require.NoError(t, uc.Register(ctx, "ann", "secret"))

	session, err := uc.Login(ctx, "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(1), session.UserID, "session user id matches the registered user")
	assert.Equal(t, "ann", session.UserName)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)
	assert.Contains(t, sessions.sessions, session.ID)

	state, err := uc.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, state.Authenticated)
	assert.Equal(t, uint(1), state.UserID)

	require.NoError(t, uc.Logout(ctx, session.ID))
	assert.NotContains(t, sessions.sessions, session.ID)

	state, err = uc.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, state.Authenticated, "logged out session resolves to anonymous")

	assert.NoError(t, uc.Logout(ctx, session.ID), "second logout is a no-op")
	assert.NoError(t, uc.Logout(ctx, ""))
}

func TestAuthUsecase_Login_Failures(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepository{}
	sessions := newMockSessionRepository()
	uc := newTestUsecase(users, sessions, time.Now())
	require.NoError(t, uc.Register(ctx, "ann", "secret"))

	_, errWrong := uc.Login(ctx, "ann", "nope")
	_, errUnknown := uc.Login(ctx, "bob", "secret")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error(), "unknown user and wrong password look the same")
	assert.Empty(t, sessions.sessions)

	sessions.CreateErr = errors.New("store down")
	_, err := uc.Login(ctx, "ann", "secret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUsecase_Resolve_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := newMockSessionRepository()
	sessions.sessions["old"] = entity.Session{ID: "old", UserID: 1, ExpiresAt: now.Add(-time.Minute)}
	uc := newTestUsecase(&mockUserRepository{}, sessions, now)

	state, err := uc.Resolve(ctx, "old")
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
	assert.NotContains(t, sessions.sessions, "old", "expired session is deleted on access")

	state, err = uc.Resolve(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	state, err = uc.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
}

func TestAuthUsecase_AdminOperations(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepository{}
	uc := newTestUsecase(users, newMockSessionRepository(), time.Now())
	require.NoError(t, uc.Register(ctx, "ann", "a"))
	require.NoError(t, uc.Register(ctx, "bob", "b"))

	all, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ann", all[0].UserName)

	require.NoError(t, uc.SetAdministrator(ctx, 2, true))
	bob, err := uc.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.True(t, bob.Administrator)

	assert.NoError(t, uc.SetAdministrator(ctx, 99, true), "unknown id is a silent no-op")

	require.NoError(t, uc.ClearUsers(ctx))
	all, err = uc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAuthUsecase_ClearUsers_DropsSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	users := &mockUserRepository{}
	sessions := newMockSessionRepository()
	uc := newTestUsecase(users, sessions, now)
	require.NoError(t, uc.Register(ctx, "ann", "a"))

	session, err := uc.Login(ctx, "ann", "a")
	require.NoError(t, err)

	require.NoError(t, uc.ClearUsers(ctx))

	assert.Empty(t, sessions.sessions)
	state, err := uc.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, state.Authenticated, "a cookie must not outlive its user")

	t.Run("session store failure keeps users", func(t *testing.T) {
		users := &mockUserRepository{}
		sessions := newMockSessionRepository()
		sessions.ClearErr = errors.New("redis down")
		uc := newTestUsecase(users, sessions, now)
		require.NoError(t, uc.Register(ctx, "bob", "b"))

		assert.Error(t, uc.ClearUsers(ctx))
		assert.Len(t, users.users, 1)
	})
}

func TestAuthUsecase_PurgeExpiredSessions(t *testing.T) {
	sessions := newMockSessionRepository()
	sessions.sessions["old"] = entity.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	sessions.sessions["live"] = entity.Session{ID: "live", ExpiresAt: time.Now().Add(time.Hour)}
	uc := newTestUsecase(&mockUserRepository{}, sessions, time.Now())

	n, err := uc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, sessions.sessions, "live")
}
