package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CryptoErrorBadInput         = "CRYPTO_BAD_INPUT"
	CryptoErrorNoSuchAlgorithm  = "CRYPTO_NO_SUCH_ALGORITHM"
	CryptoErrorProviderNotFound = "CRYPTO_PROVIDER_NOT_FOUND"
	CryptoErrorProviderConflict = "CRYPTO_PROVIDER_CONFLICT"
	CryptoErrorSelfTestFailed   = "CRYPTO_SELF_TEST_FAILED"
	CryptoErrorInternal         = "CRYPTO_INTERNAL_ERROR"
)

var (
	ErrNoSuchAlgorithm  = errors.New("core: no such algorithm")
	ErrProviderNotFound = errors.New("core: provider not found")
	ErrSelfTestFailed   = errors.New("core: self test failed")
)

func cryptoErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureCryptoErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrNoSuchAlgorithm):
		return wrapCryptoError(err, goerrors.CategoryNotFound, CryptoErrorNoSuchAlgorithm)
	case errors.Is(err, ErrProviderNotFound):
		return wrapCryptoError(err, goerrors.CategoryNotFound, CryptoErrorProviderNotFound)
	case errors.Is(err, ErrSelfTestFailed):
		return wrapCryptoError(err, goerrors.CategoryOperation, CryptoErrorSelfTestFailed)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "already registered"):
		return newCryptoError(err.Error(), goerrors.CategoryConflict, CryptoErrorProviderConflict)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must"):
		return newCryptoError(err.Error(), goerrors.CategoryBadInput, CryptoErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureCryptoErrorEnvelope(mapped)
}

func newCryptoError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureCryptoErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

// wrapCryptoError keeps err as the source so errors.Is still matches the
// package sentinels after mapping.
func wrapCryptoError(err error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureCryptoErrorEnvelope(
		goerrors.Wrap(err, category, err.Error()).
			WithTextCode(textCode),
	)
}

func ensureCryptoErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = cryptoHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultCryptoTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultCryptoTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return CryptoErrorBadInput
	case goerrors.CategoryNotFound:
		return CryptoErrorNoSuchAlgorithm
	case goerrors.CategoryConflict:
		return CryptoErrorProviderConflict
	case goerrors.CategoryOperation:
		return CryptoErrorSelfTestFailed
	default:
		return CryptoErrorInternal
	}
}

func cryptoHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
