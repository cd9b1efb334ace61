package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-club/admin-api/internal/models"
)

func TestNewbieListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewbieRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "nom", "prenom", "classe", "hobbies", "motivation", "additional_notes", "email", "status", "created_at", "updated_at"}).
		AddRow(7, "Benali", "Amel", "L2", nil, nil, nil, "amel@example.com", "pending", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM newbie_applications WHERE status = $1")).
		WithArgs(models.NewbieStatusPending).
		WillReturnRows(rows)

	status := models.NewbieStatusPending
	items, err := repo.List(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Amel", items[0].Prenom)
	assert.Nil(t, items[0].Hobbies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSeeRegistrationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE see_registrations SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.SeeStatusConfirmed, sqlmock.AnyArg(), int64(3), models.SeeStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.UpdateStatus(context.Background(), 3, models.SeeStatusPending, models.SeeStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewbieUpdateStatusGuardsPreviousStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewbieRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE newbie_applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.NewbieStatusAccepted, sqlmock.AnyArg(), int64(7), models.NewbieStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.UpdateStatus(context.Background(), 7, models.NewbieStatusPending, models.NewbieStatusAccepted)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementListVisibleOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE visible = TRUE ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "visible", "created_at", "updated_at"}))

	items, err := repo.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	adminID := int64(1)
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(adminID, models.AuditActionCreate, "members", nil, `{"status":201}`, "10.0.0.1", "curl", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	entry := &models.AuditLog{AdminID: &adminID, Action: models.AuditActionCreate, Resource: "members", Payload: []byte(`{"status":201}`), IPAddress: "10.0.0.1", UserAgent: "curl"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, int64(11), entry.ID)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs WHERE resource = $1 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 0")).
		WithArgs("members").
		WillReturnRows(sqlmock.NewRows([]string{"id", "admin_id", "action", "resource", "resource_id", "payload", "ip_address", "user_agent", "created_at"}).
			AddRow(11, 1, "CREATE", "members", nil, []byte(`{"status":201}`), "10.0.0.1", "curl", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE resource = $1")).
		WithArgs("members").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	logs, total, err := repo.List(context.Background(), models.AuditLogFilter{Resource: "members"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"status":201}`, string(logs[0].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}
