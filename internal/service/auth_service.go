package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type authAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
}

type sessionRevocationStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// AuthConfig defines configuration for the session cookie.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthService logs admins in and verifies their session cookies.
type AuthService struct {
	repo      authAdminRepository
	revoked   sessionRevocationStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService instance. revoked and audit may be nil.
func NewAuthService(repo authAdminRepository, revoked sessionRevocationStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config.TTL = 4 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "nexus-admin-api"
	}
	return &AuthService{
		repo:      repo,
		revoked:   revoked,
		audit:     audit,
		validator: ensureValidator(validate),
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// TTL is the lifetime of a session cookie.
func (s *AuthService) TTL() time.Duration {
	return s.config.TTL
}

// Login checks credentials and mints a signed session. Unknown usernames and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "login payload")
	}

	admin, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.burnCompare(req.Password)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	session, err := s.issue(admin)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}

	if s.audit != nil {
		id := admin.ID
		s.audit.Record(ctx, &models.AuditLog{
			AdminID:   &id,
			Action:    models.AuditActionLogin,
			Resource:  "session",
			Payload:   []byte(`{"status":"success"}`),
			IPAddress: req.IP,
			UserAgent: req.UserAgent,
		})
	}

	return session, nil
}

// Authenticate verifies a cookie value. Bad signatures, expired or revoked
// sessions and sessions of deleted admins are all rejected with 401.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.SessionClaims, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.Exists(ctx, revokedSessionKey(claims.ID))
		if err != nil {
			s.logger.Warn("session revocation lookup failed", zap.Error(err))
		} else if revoked {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session revoked")
		}
	}

	admin, err := s.repo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session admin no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to verify session")
	}
	claims.DisplayName = admin.DisplayName
	claims.Role = admin.Role
	return claims, nil
}

// Logout revokes the session id until the cookie would have expired anyway.
// Invalid tokens are ignored: logging out always succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.revoked == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedSessionKey(claims.ID), true, ttl); err != nil {
		s.logger.Warn("failed to revoke session", zap.Int64("admin_id", claims.AdminID), zap.Error(err))
	}
	if s.audit != nil {
		id := claims.AdminID
		s.audit.Record(ctx, &models.AuditLog{AdminID: &id, Action: models.AuditActionLogout, Resource: "session"})
	}
	return nil
}

func (s *AuthService) issue(admin *models.Admin) (*models.Session, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.TTL)
	claims := &models.SessionClaims{
		AdminID:     admin.ID,
		DisplayName: admin.DisplayName,
		Role:        admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", admin.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, err
	}
	return &models.Session{Admin: claims.Identity(), Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) parse(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.AdminID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

// burnCompare spends a bcrypt comparison so unknown usernames take as long
// as wrong passwords.
func (s *AuthService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func revokedSessionKey(id string) string {
	return "session:revoked:" + id
}
