package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "SEE registrations",
		Headers: []string{"Full name", "Email", "Status"},
		Rows: []map[string]string{
			{"Full name": "Amel Benali", "Email": "amel@example.com", "Status": "confirmed"},
			{"Full name": "Yacine, \"Yaz\"", "Email": "yaz@example.com", "Status": "pending"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\ufeffFull name,Email,Status\n")))
	assert.Contains(t, string(out), `"Yacine, ""Yaz""",yaz@example.com,pending`)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
