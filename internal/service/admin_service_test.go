package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type mockAdminRepo struct {
	admins []models.Admin
	nextID int64
}

func (m *mockAdminRepo) List(ctx context.Context) ([]models.Admin, error) {
	return m.admins, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	for _, existing := range m.admins {
		if existing.Username == admin.Username {
			return &pq.Error{Code: "23505", Constraint: "admins_username_key"}
		}
	}
	m.nextID++
	admin.ID = m.nextID
	m.admins = append(m.admins, *admin)
	return nil
}

func TestAdminServiceCreate(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := NewAdminService(repo, nil, zap.NewNop())

	admin, err := svc.Create(context.Background(), CreateAdminRequest{Username: " board ", Password: "long-enough", DisplayName: "Board"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, "board", admin.Username)
	assert.Equal(t, models.AdminRoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("long-enough")))

	cost, err := bcrypt.Cost([]byte(admin.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestAdminServiceCreateDuplicate(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := NewAdminService(repo, nil, zap.NewNop())
	req := CreateAdminRequest{Username: "board", Password: "long-enough", DisplayName: "Board"}

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Len(t, repo.admins, 1)
}

func TestAdminServiceCreateValidation(t *testing.T) {
	svc := NewAdminService(&mockAdminRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAdminRequest{Username: "board", Password: "short", DisplayName: "Board"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")

	_, err = svc.Create(context.Background(), CreateAdminRequest{Username: "board", Password: "long-enough", DisplayName: "Board", Role: "root"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAdminServiceList(t *testing.T) {
	repo := &mockAdminRepo{admins: []models.Admin{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}}
	svc := NewAdminService(repo, nil, zap.NewNop())
	admins, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, admins, 2)
}
