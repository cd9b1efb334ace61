package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type mockNewbieRepo struct {
	items        map[int64]*models.NewbieApplication
	nextID       int64
	statusWrites int
	deleteCalls  int
	listFilter   *models.NewbieStatus
	// interleaved is written just before the guarded update, as a competing
	// request would.
	interleaved models.NewbieStatus
}

func (m *mockNewbieRepo) List(ctx context.Context, status *models.NewbieStatus) ([]models.NewbieApplication, error) {
	m.listFilter = status
	var out []models.NewbieApplication
	for _, item := range m.items {
		if status == nil || item.Status == *status {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockNewbieRepo) FindByID(ctx context.Context, id int64) (*models.NewbieApplication, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (m *mockNewbieRepo) Create(ctx context.Context, item *models.NewbieApplication) error {
	if m.items == nil {
		m.items = map[int64]*models.NewbieApplication{}
	}
	m.nextID++
	item.ID = m.nextID
	copy := *item
	m.items[item.ID] = &copy
	return nil
}

func (m *mockNewbieRepo) UpdateStatus(ctx context.Context, id int64, from, to models.NewbieStatus) (bool, error) {
	if m.interleaved != "" {
		m.items[id].Status = m.interleaved
	}
	if m.items[id].Status != from {
		return false, nil
	}
	m.statusWrites++
	m.items[id].Status = to
	return true, nil
}

func (m *mockNewbieRepo) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	delete(m.items, id)
	return nil
}

func newNewbieFixture(status models.NewbieStatus) (*NewbieService, *mockNewbieRepo) {
	repo := &mockNewbieRepo{items: map[int64]*models.NewbieApplication{
		1: {ID: 1, Nom: "Benali", Prenom: "Amel", Status: status},
	}, nextID: 1}
	return NewNewbieService(repo, NewExportService(zap.NewNop(), nil, nil), nil, zap.NewNop()), repo
}

func TestNewbieApplyStartsPending(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusPending)

	item, err := svc.Apply(context.Background(), NewbieApplyRequest{Nom: " Haddad ", Prenom: "Sami", Email: "Sami@Mail.com", Motivation: "robots"})
	require.NoError(t, err)
	assert.Equal(t, models.NewbieStatusPending, item.Status)
	assert.Equal(t, "Haddad", item.Nom)
	require.NotNil(t, item.Email)
	assert.Equal(t, "sami@mail.com", *item.Email)
	assert.Nil(t, item.Classe)
	assert.Len(t, repo.items, 2)

	_, err = svc.Apply(context.Background(), NewbieApplyRequest{Nom: "X"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestNewbieUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusPending)

	_, err := svc.UpdateStatus(context.Background(), NewbieStatusRequest{ID: 1, Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.statusWrites)
	assert.Equal(t, models.NewbieStatusPending, repo.items[1].Status)
}

func TestNewbieUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		name   string
		from   models.NewbieStatus
		to     models.NewbieStatus
		err    *appErrors.Error
		writes int
	}{
		{"accept", models.NewbieStatusPending, models.NewbieStatusAccepted, nil, 1},
		{"decline", models.NewbieStatusPending, models.NewbieStatusDeclined, nil, 1},
		{"same status", models.NewbieStatusAccepted, models.NewbieStatusAccepted, nil, 0},
		{"reopen", models.NewbieStatusAccepted, models.NewbieStatusPending, appErrors.ErrInvalidTransition, 0},
		{"flip", models.NewbieStatusDeclined, models.NewbieStatusAccepted, appErrors.ErrInvalidTransition, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newNewbieFixture(tc.from)
			item, err := svc.UpdateStatus(context.Background(), NewbieStatusRequest{ID: 1, Status: tc.to})
			if tc.err != nil {
				require.Error(t, err)
				assert.True(t, appErrors.Is(err, tc.err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.to, item.Status)
			}
			assert.Equal(t, tc.writes, repo.statusWrites)
		})
	}
}

func TestNewbieUpdateStatusLosesToConcurrentDecision(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusPending)
	repo.interleaved = models.NewbieStatusDeclined

	_, err := svc.UpdateStatus(context.Background(), NewbieStatusRequest{ID: 1, Status: models.NewbieStatusAccepted})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	assert.Zero(t, repo.statusWrites)
	assert.Equal(t, models.NewbieStatusDeclined, repo.items[1].Status)
}

func TestNewbieUpdateStatusMissing(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusPending)
	_, err := svc.UpdateStatus(context.Background(), NewbieStatusRequest{ID: 9, Status: models.NewbieStatusAccepted})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, repo.statusWrites)
}

func TestNewbieDelete(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusPending)

	err := svc.Delete(context.Background(), 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, repo.deleteCalls)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 1, repo.deleteCalls)
}

func TestNewbieListAndExport(t *testing.T) {
	svc, repo := newNewbieFixture(models.NewbieStatusAccepted)

	items, err := svc.List(context.Background(), "ACCEPTED")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	require.NotNil(t, repo.listFilter)
	assert.Equal(t, models.NewbieStatusAccepted, *repo.listFilter)

	_, err = svc.List(context.Background(), "approved")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	file, err := svc.Export(context.Background(), "csv", "")
	require.NoError(t, err)
	assert.Contains(t, string(file.Body), "Benali")
}

type mockSeeRepo struct {
	items        map[int64]*models.SeeRegistration
	statusWrites int
}

func (m *mockSeeRepo) List(ctx context.Context, status *models.SeeStatus) ([]models.SeeRegistration, error) {
	var out []models.SeeRegistration
	for _, item := range m.items {
		if status == nil || item.Status == *status {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockSeeRepo) FindByID(ctx context.Context, id int64) (*models.SeeRegistration, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (m *mockSeeRepo) Create(ctx context.Context, item *models.SeeRegistration) error {
	item.ID = int64(len(m.items) + 1)
	copy := *item
	m.items[item.ID] = &copy
	return nil
}

func (m *mockSeeRepo) UpdateStatus(ctx context.Context, id int64, from, to models.SeeStatus) (bool, error) {
	if m.items[id].Status != from {
		return false, nil
	}
	m.statusWrites++
	m.items[id].Status = to
	return true, nil
}

func TestSeeRegistrationRegister(t *testing.T) {
	repo := &mockSeeRepo{items: map[int64]*models.SeeRegistration{}}
	svc := NewSeeRegistrationService(repo, NewExportService(zap.NewNop(), nil, nil), nil, zap.NewNop())

	item, err := svc.Register(context.Background(), SeeRegisterRequest{
		FullName: "Sami K.", Email: "SAMI@esi.dz", Phone: "0555 12 34 56",
		StudyPlace: "ESI", Classe: "2CS", Motivation: "Visiter l'usine",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SeeStatusPending, item.Status)
	assert.Equal(t, "sami@esi.dz", item.Email)

	_, err = svc.Register(context.Background(), SeeRegisterRequest{FullName: "Sami"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSeeRegistrationTransitions(t *testing.T) {
	repo := &mockSeeRepo{items: map[int64]*models.SeeRegistration{1: {ID: 1, Status: models.SeeStatusPending}}}
	svc := NewSeeRegistrationService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	item, err := svc.UpdateStatus(ctx, SeeStatusRequest{ID: 1, Status: models.SeeStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, models.SeeStatusConfirmed, item.Status)

	item, err = svc.UpdateStatus(ctx, SeeStatusRequest{ID: 1, Status: models.SeeStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.SeeStatusCancelled, item.Status)

	_, err = svc.UpdateStatus(ctx, SeeStatusRequest{ID: 1, Status: models.SeeStatusConfirmed})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.UpdateStatus(ctx, SeeStatusRequest{ID: 1, Status: "done"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 2, repo.statusWrites)
}
