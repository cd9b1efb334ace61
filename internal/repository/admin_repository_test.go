package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-club/admin-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var adminRowColumns = []string{"id", "username", "password_hash", "display_name", "role", "created_at", "updated_at"}

func TestFindByUsernameIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(adminRowColumns).
		AddRow(1, "Yacine", "hash", "Yacine B.", string(models.AdminRoleSuperAdmin), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE LOWER(username) = LOWER($1) LIMIT 1")).
		WithArgs("YACINE").
		WillReturnRows(rows)

	admin, err := repo.FindByUsername(context.Background(), "YACINE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, models.AdminRoleSuperAdmin, admin.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAdminByIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(adminRowColumns))

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdminReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("INSERT INTO admins").
		WithArgs("nadia", "hash", "Nadia", models.AdminRoleAdmin, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	admin := &models.Admin{Username: "nadia", PasswordHash: "hash", DisplayName: "Nadia", Role: models.AdminRoleAdmin}
	require.NoError(t, repo.Create(context.Background(), admin))
	assert.Equal(t, int64(7), admin.ID)
	assert.False(t, admin.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
