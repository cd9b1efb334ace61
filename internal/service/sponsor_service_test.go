package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type mockSponsorRepo struct {
	items      map[int64]*models.Sponsor
	patches    []map[string]interface{}
	deleteHits int
}

func (m *mockSponsorRepo) List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error) {
	var out []models.Sponsor
	for _, item := range m.items {
		if filter.Called != nil && item.Called != *filter.Called {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (m *mockSponsorRepo) FindByID(ctx context.Context, id int64) (*models.Sponsor, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (m *mockSponsorRepo) Create(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.ID = int64(len(m.items) + 1)
	copy := *sponsor
	m.items[sponsor.ID] = &copy
	return nil
}

func (m *mockSponsorRepo) Update(ctx context.Context, sponsor *models.Sponsor) error {
	copy := *sponsor
	m.items[sponsor.ID] = &copy
	return nil
}

func (m *mockSponsorRepo) Patch(ctx context.Context, id int64, fields map[string]interface{}) error {
	m.patches = append(m.patches, fields)
	item := m.items[id]
	for name, value := range fields {
		switch name {
		case "called":
			item.Called = value.(bool)
		case "emailSent":
			item.EmailSent = value.(bool)
		case "comments":
			if value == nil {
				item.Comments = nil
			} else {
				v := value.(string)
				item.Comments = &v
			}
		}
	}
	return nil
}

func (m *mockSponsorRepo) Delete(ctx context.Context, id int64) error {
	m.deleteHits++
	delete(m.items, id)
	return nil
}

func rawPatch(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func newSponsorFixture() (*SponsorService, *mockSponsorRepo) {
	comment := "call back in May"
	repo := &mockSponsorRepo{items: map[int64]*models.Sponsor{
		1: {ID: 1, Name: "Condor", Comments: &comment},
	}}
	return NewSponsorService(repo, nil, zap.NewNop()), repo
}

func TestSponsorPatchAllowListedFields(t *testing.T) {
	svc, repo := newSponsorFixture()

	sponsor, err := svc.Patch(context.Background(), 1, rawPatch(t, `{"called": true, "comments": null}`))
	require.NoError(t, err)
	assert.True(t, sponsor.Called)
	assert.False(t, sponsor.EmailSent)
	assert.Nil(t, sponsor.Comments)
	assert.Equal(t, "Condor", sponsor.Name)
	require.Len(t, repo.patches, 1)
	assert.Len(t, repo.patches[0], 2)
}

func TestSponsorPatchRejections(t *testing.T) {
	cases := map[string]string{
		"empty":         `{}`,
		"unknown field": `{"id": 5}`,
		"bad bool":      `{"called": "yes"}`,
		"blank name":    `{"name": "  "}`,
		"bad email":     `{"email": "nope"}`,
		"bad type":      `{"sector": 12}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc, repo := newSponsorFixture()
			_, err := svc.Patch(context.Background(), 1, rawPatch(t, body))
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
			assert.Empty(t, repo.patches)
		})
	}
}

func TestSponsorPatchMissing(t *testing.T) {
	svc, repo := newSponsorFixture()
	_, err := svc.Patch(context.Background(), 2, rawPatch(t, `{"called": true}`))
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.patches)
}

func TestSponsorCreateAndUpdateRoundTrip(t *testing.T) {
	svc, _ := newSponsorFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, SponsorRequest{Name: "Djezzy", Email: "Partners@Djezzy.dz", Sector: "telecom"})
	require.NoError(t, err)
	require.NotNil(t, created.Email)
	assert.Equal(t, "partners@djezzy.dz", *created.Email)

	req := SponsorRequest{Name: "Djezzy", Sector: "telecom", ContactPerson: "Lina", Called: true, EmailSent: true}
	_, err = svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Name, got.Name)
	assert.Nil(t, got.Email)
	require.NotNil(t, got.ContactPerson)
	assert.Equal(t, "Lina", *got.ContactPerson)
	assert.True(t, got.Called)
	assert.True(t, got.EmailSent)
}

func TestSponsorDeleteMissing(t *testing.T) {
	svc, repo := newSponsorFixture()
	err := svc.Delete(context.Background(), 99)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, repo.deleteHits)
}
