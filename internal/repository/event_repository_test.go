package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-club/admin-api/internal/models"
)

func TestEventCreateStoresImageArray(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	date := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Hackathon", date, "Amphi A", nil, `{"/uploads/1.png","/uploads/2.png"}`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	event := &models.Event{
		Title:     "Hackathon",
		Date:      date,
		Location:  "Amphi A",
		ImageURLs: pq.StringArray{"/uploads/1.png", "/uploads/2.png"},
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, int64(12), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventFindByIDScansImageArray(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "date", "location", "description", "image_urls", "created_at", "updated_at"}).
		AddRow(3, "Workshop", now, "Lab 2", "Go basics", []byte(`{/uploads/a.png}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).WithArgs(int64(3)).WillReturnRows(rows)

	event, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"/uploads/a.png"}, event.ImageURLs)
	require.NotNil(t, event.Description)
	assert.Equal(t, "Go basics", *event.Description)
}

func TestProjectDeleteByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
