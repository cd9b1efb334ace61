package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/export"
)

// Export formats accepted by the export endpoints.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders application lists as CSV or PDF.
type ExportService struct {
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults of pkg/export.
func NewExportService(logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		renderers: map[string]renderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:    logger,
		now:       time.Now,
	}
}

// NewbieApplications renders the given applications.
func (s *ExportService) NewbieApplications(format string, items []models.NewbieApplication) (*ExportFile, error) {
	data := export.Dataset{
		Title:   "Newbie applications",
		Headers: []string{"ID", "Nom", "Prenom", "Classe", "Email", "Hobbies", "Motivation", "Notes", "Status", "Submitted"},
	}
	for _, item := range items {
		data.Rows = append(data.Rows, map[string]string{
			"ID":         fmt.Sprintf("%d", item.ID),
			"Nom":        item.Nom,
			"Prenom":     item.Prenom,
			"Classe":     deref(item.Classe),
			"Email":      deref(item.Email),
			"Hobbies":    deref(item.Hobbies),
			"Motivation": deref(item.Motivation),
			"Notes":      deref(item.AdditionalNotes),
			"Status":     string(item.Status),
			"Submitted":  item.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return s.render(format, "newbies", data)
}

// SeeRegistrations renders the given company-visit registrations.
func (s *ExportService) SeeRegistrations(format string, items []models.SeeRegistration) (*ExportFile, error) {
	data := export.Dataset{
		Title:   "SEE registrations",
		Headers: []string{"ID", "Full name", "Email", "Phone", "Study place", "Classe", "Motivation", "Extra", "Status", "Registered"},
	}
	for _, item := range items {
		data.Rows = append(data.Rows, map[string]string{
			"ID":          fmt.Sprintf("%d", item.ID),
			"Full name":   item.FullName,
			"Email":       item.Email,
			"Phone":       item.Phone,
			"Study place": item.StudyPlace,
			"Classe":      item.Classe,
			"Motivation":  item.Motivation,
			"Extra":       deref(item.Extra),
			"Status":      string(item.Status),
			"Registered":  item.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return s.render(format, "see-registrations", data)
}

func (s *ExportService) render(format, stem string, data export.Dataset) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	body, err := r.Render(data)
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", format), zap.String("dataset", stem), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", stem, s.now().UTC().Format("20060102-150405"), r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
