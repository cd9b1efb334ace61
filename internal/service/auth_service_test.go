package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type mockAuthRepo struct {
	admins  map[int64]*models.Admin
	findErr error
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, admin := range m.admins {
		if admin.Username == username {
			copy := *admin
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if admin, ok := m.admins[id]; ok {
		copy := *admin
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockRevocationStore struct {
	keys      map[string]time.Duration
	existsErr error
}

func (m *mockRevocationStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.keys == nil {
		m.keys = map[string]time.Duration{}
	}
	m.keys[key] = ttl
	return nil
}

func (m *mockRevocationStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.keys[key]
	return ok, nil
}

type mockAuditRecorder struct {
	entries []*models.AuditLog
}

func (m *mockAuditRecorder) Record(ctx context.Context, entry *models.AuditLog) {
	m.entries = append(m.entries, entry)
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthRepo, *mockRevocationStore, *mockAuditRecorder) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{admins: map[int64]*models.Admin{
		1: {ID: 1, Username: "nexus", PasswordHash: string(hash), DisplayName: "Nexus Admin", Role: models.AdminRoleSuperAdmin},
	}}
	revoked := &mockRevocationStore{}
	audit := &mockAuditRecorder{}
	svc := NewAuthService(repo, revoked, audit, nil, zap.NewNop(), AuthConfig{Secret: "test-secret", TTL: time.Hour})
	return svc, repo, revoked, audit
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, _, _, audit := newAuthFixture(t)

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, int64(1), session.Admin.AdminID)
	assert.Equal(t, models.AdminRoleSuperAdmin, session.Admin.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
	assert.Equal(t, "10.0.0.1", audit.entries[0].IPAddress)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, audit := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Equal(t, "invalid username or password", appErrors.FromError(err).Message)
	assert.Empty(t, audit.entries)
}

func TestAuthServiceLoginRequiresFields(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceLoginStoreFailure(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)
	repo.findErr = errors.New("connection reset")
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestAuthServiceAuthenticate(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.NoError(t, err)

	repo.admins[1].DisplayName = "Renamed"
	claims, err := svc.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AdminID)
	assert.Equal(t, "Renamed", claims.DisplayName)
}

func TestAuthServiceAuthenticateRejectsTampering(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.NoError(t, err)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, nil, zap.NewNop(), AuthConfig{Secret: "other-secret", TTL: time.Hour})
	foreign, err := other.issue(&models.Admin{ID: 1, Role: models.AdminRoleSuperAdmin})
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"truncated":      session.Token[:len(session.Token)-6],
		"foreign-secret": foreign.Token,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), token)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}

func TestAuthServiceAuthenticateRejectsUnknownAdmin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	// correctly signed, but the admin id does not exist
	claims := &models.SessionClaims{
		AdminID: 99,
		Role:    models.AdminRoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			Issuer:    "nexus-admin-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceAuthenticateRejectsExpired(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(context.Background(), session.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogoutRevokesSession(t *testing.T) {
	svc, _, revoked, audit := newAuthFixture(t)
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))
	require.Len(t, revoked.keys, 1)
	for _, ttl := range revoked.keys {
		assert.True(t, ttl > 0 && ttl <= time.Hour)
	}
	assert.Equal(t, models.AuditActionLogout, audit.entries[len(audit.entries)-1].Action)

	_, err = svc.Authenticate(context.Background(), session.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
}

func TestAuthServiceRevocationLookupFailsOpen(t *testing.T) {
	svc, _, revoked, _ := newAuthFixture(t)
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "nexus", Password: "s3cret-pass"})
	require.NoError(t, err)

	revoked.existsErr = errors.New("redis down")
	_, err = svc.Authenticate(context.Background(), session.Token)
	assert.NoError(t, err)
}
