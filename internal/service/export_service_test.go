package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

func newExportServiceForTest() *ExportService {
	svc := NewExportService(zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportNewbiesCSV(t *testing.T) {
	svc := newExportServiceForTest()
	classe := "L1 Info"
	items := []models.NewbieApplication{{ID: 7, Nom: "Benali", Prenom: "Amel", Classe: &classe, Status: models.NewbieStatusPending, CreatedAt: time.Now()}}

	file, err := svc.NewbieApplications("csv", items)
	require.NoError(t, err)
	assert.Equal(t, "newbies-20240502-093000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	content := strings.TrimPrefix(string(file.Body), "\ufeff")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Nom,Prenom,Classe"))
	assert.True(t, strings.HasPrefix(lines[1], "7,Benali,Amel,L1 Info,"))
}

func TestExportSeeRegistrationsPDF(t *testing.T) {
	svc := newExportServiceForTest()
	items := []models.SeeRegistration{{ID: 1, FullName: "Sami K.", Email: "sami@example.com", Phone: "0555", StudyPlace: "ESI", Classe: "2CS", Motivation: "visit", Status: models.SeeStatusConfirmed}}

	file, err := svc.SeeRegistrations("PDF", items)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest()
	_, err := svc.SeeRegistrations("xlsx", nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
