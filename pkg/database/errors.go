package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the services remap to domain errors.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeCheckViolation   = "23514"
	codeInvalidText      = "22P02"
	codeStringTooLong    = "22001"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsInvalidInput reports constraint or type failures that stem from bad client input.
func IsInvalidInput(err error) bool {
	return hasCode(err, codeNotNullViolation, codeCheckViolation, codeInvalidText, codeStringTooLong)
}

func hasCode(err error, codes ...string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	for _, code := range codes {
		if string(pqErr.Code) == code {
			return true
		}
	}
	return false
}
