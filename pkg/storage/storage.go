package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver names accepted by UPLOAD_DRIVER.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Storage persists uploaded files and returns the URL they are served from.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	Driver() string
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectName builds a collision-resistant file name: a millisecond timestamp
// and a random suffix followed by the sanitised original name.
func ObjectName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "-"), "-.")
	if stem == "" {
		stem = "file"
	}
	if len(stem) > 64 {
		stem = stem[:64]
	}
	ext = unsafeChars.ReplaceAllString(ext, "")
	return fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), uuid.NewString()[:8], stem, ext)
}
