package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-club/admin-api/internal/models"
)

func TestMemberCreateComputesDisplayOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE($6::int, COALESCE(MAX(display_order), 0) + 1)")).
		WithArgs("Amel", "a@b.com", models.MemberRoleAlumni, "0555", nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}).AddRow(4, 4))

	member := &models.Member{Name: "Amel", Email: "a@b.com", Role: models.MemberRoleAlumni, Phone: "0555"}
	require.NoError(t, repo.Create(context.Background(), member, nil))
	assert.Equal(t, int64(4), member.ID)
	assert.Equal(t, 4, member.DisplayOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberListOrdersByDisplayOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "phone", "profile_picture_url", "display_order", "created_at", "updated_at"}).
		AddRow(2, "Sami", "s@b.com", "president", "0666", nil, 1, now, now).
		AddRow(1, "Amel", "a@b.com", "alumni", "0555", "/uploads/a.png", 3, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM members ORDER BY display_order ASC, id ASC")).WillReturnRows(rows)

	members, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, int64(2), members[0].ID)
	assert.Nil(t, members[0].ProfilePictureURL)
	require.NotNil(t, members[1].ProfilePictureURL)
	assert.Equal(t, "/uploads/a.png", *members[1].ProfilePictureURL)
}

func TestMemberReorderCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE members SET display_order").
		WithArgs(3, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE members SET display_order").
		WithArgs(1, sqlmock.AnyArg(), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Reorder(context.Background(), []models.MemberOrder{{ID: 1, DisplayOrder: 3}, {ID: 2, DisplayOrder: 1}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberReorderRollsBackOnMissingID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE members SET display_order").
		WithArgs(3, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE members SET display_order").
		WithArgs(1, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), []models.MemberOrder{{ID: 1, DisplayOrder: 3}, {ID: 99, DisplayOrder: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	var missing *MissingRowError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, int64(99), missing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberContacts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectQuery("SELECT DISTINCT phone FROM members").
		WillReturnRows(sqlmock.NewRows([]string{"phone"}).AddRow("0555").AddRow("0666"))
	mock.ExpectQuery("SELECT DISTINCT email FROM members").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@b.com"))

	phones, emails, err := repo.Contacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0555", "0666"}, phones)
	assert.Equal(t, []string{"a@b.com"}, emails)
}
