package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorUnauthorized covers both "not yours" and "does not exist" for
	// ownership-scoped lookups, so callers cannot probe for other CRMs' rows.
	ErrorUnauthorized = errors.New("not found or unauthorized")

	ErrorInvalidAmount = errors.New("amount must be positive")

	ErrorInvalidOption = errors.New("invalid option value")
)
