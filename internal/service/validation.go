package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexus-club/admin-api/pkg/database"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

var (
	mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{2,19}$`)
)

// NewValidator returns a validator that reports JSON field names and knows
// the shared "mailbox" and "phone" tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	registerCommonValidators(v)
	return v
}

func registerCommonValidators(v *validator.Validate) {
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return mailboxPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerCommonValidators(v)
	return v
}

// validationError wraps a validator failure, naming the first offending field.
func validationError(err error, subject string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return appErrors.Validation(err, fmt.Sprintf("invalid %s: %s %s", subject, fe.Field(), describeRule(fe)))
	}
	return appErrors.Validation(err, "invalid "+subject)
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "mailbox", "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "member_role", "project_status", "newbie_status", "see_status", "admin_role":
		return "has an unsupported value " + fmt.Sprintf("%q", fe.Value())
	case "unique":
		return "must not contain duplicates"
	default:
		return "is invalid"
	}
}

// persistenceError maps store failures onto the API taxonomy. Unique
// violations become conflicts carrying conflictMsg.
func persistenceError(err error, action, conflictMsg string) error {
	switch {
	case database.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictMsg)
	case database.IsInvalidInput(err):
		return appErrors.Validation(err, "invalid value for "+action)
	default:
		return appErrors.Internal(err, "failed to "+action)
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", raw)
	}
	return t.UTC(), nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
