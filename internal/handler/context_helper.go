package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/middleware"
	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

var errAnnouncementNotFound = appErrors.Clone(appErrors.ErrNotFound, "announcement not found")

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	claims, ok := middleware.CurrentAdmin(c)
	if !ok {
		return nil
	}
	return claims
}

// parseID reads the numeric :id path parameter.
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

// bindPayload decodes JSON, urlencoded or multipart bodies according to the
// request content type.
func bindPayload(c *gin.Context, dest interface{}, subject string) error {
	if err := c.ShouldBind(dest); err != nil {
		return bindError(err, "invalid "+subject+" payload")
	}
	return nil
}

// bindError maps a body read cut off by middleware.BodyLimit to 413 and any
// other decoding failure to a validation error.
func bindError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status,
			fmt.Sprintf("request body exceeds the %d byte limit", tooLarge.Limit))
	}
	return appErrors.Validation(err, message)
}

// blankFormField reports whether a urlencoded or multipart body sent field
// with no value. Form binding turns such a field into a pointer to the zero
// value, which callers must treat as absent.
func blankFormField(c *gin.Context, field string) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
	default:
		return false
	}
	value, ok := c.GetPostForm(field)
	return ok && strings.TrimSpace(value) == ""
}

// formFile returns the uploaded file under field, or nil when none was sent.
func formFile(c *gin.Context, field string) (*service.FileUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, bindError(err, "invalid "+field+" upload")
	}
	file := service.FileFromHeader(fh)
	return &file, nil
}

// formFiles collects every file sent under any of fields.
func formFiles(c *gin.Context, fields ...string) ([]service.FileUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bindError(err, "invalid multipart form")
	}
	var files []service.FileUpload
	for _, field := range fields {
		for _, fh := range form.File[field] {
			files = append(files, service.FileFromHeader(fh))
		}
	}
	return files, nil
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEMultipartPOSTForm
}
