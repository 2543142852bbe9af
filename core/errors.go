package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	SigningErrorValidation    = "SIGNING_VALIDATION"
	SigningErrorNotFound      = "SIGNING_NOT_FOUND"
	SigningErrorInvalidStatus = "SIGNING_INVALID_STATUS"
	SigningErrorInvalidToken  = "SIGNING_INVALID_TOKEN"
	SigningErrorExpired       = "SIGNING_EXPIRED"
	SigningErrorInternal      = "SIGNING_INTERNAL_ERROR"
)

func signingErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureSigningErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newSigningError(err.Error(), goerrors.CategoryNotFound, SigningErrorNotFound)
	case strings.Contains(msg, "invalid document status transition"),
		strings.Contains(msg, "not editable"):
		return newStateConflictError(err.Error())
	case strings.Contains(msg, "token signature"),
		strings.Contains(msg, "malformed token"):
		return newSigningError(err.Error(), goerrors.CategoryAuth, SigningErrorInvalidToken)
	case strings.Contains(msg, "expired"):
		return newExpiredError(err.Error())
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newSigningError(err.Error(), goerrors.CategoryValidation, SigningErrorValidation)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSigningErrorEnvelope(mapped)
}

func newSigningError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureSigningErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

// newStateConflictError maps an illegal-for-current-state operation. The API
// contract surfaces these as 400, not 409.
func newStateConflictError(message string) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryConflict).
		WithTextCode(SigningErrorInvalidStatus)
	err.Code = http.StatusBadRequest
	return err
}

// newExpiredError covers business expiry of tokens and signing links (410).
func newExpiredError(message string) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithTextCode(SigningErrorExpired)
	err.Code = http.StatusGone
	return err
}

func ensureSigningErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = signingHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSigningTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultSigningTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return SigningErrorValidation
	case goerrors.CategoryNotFound:
		return SigningErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return SigningErrorInvalidToken
	case goerrors.CategoryConflict:
		return SigningErrorInvalidStatus
	default:
		return SigningErrorInternal
	}
}

func signingHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
