package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateErrorsCarryConflictStatus(t *testing.T) {
	for _, code := range []string{
		CodeResolutionRequired,
		CodePermanentlyClosed,
		CodeReopenLimitExceeded,
		CodeReopenWindowExpired,
		CodeNoEscalationTarget,
		CodeInvalidTransition,
	} {
		err := NewStateError(code, "blocked", nil)
		assert.True(t, IsCode(err, code))
		assert.Equal(t, http.StatusConflict, ToDomainError(err).HTTPStatus)
	}
}

func TestIsCodeUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("saving ticket: %w", NewStateError(CodeReopenWindowExpired, "expired", nil))
	assert.True(t, IsCode(err, CodeReopenWindowExpired))
	assert.False(t, IsCode(err, CodeReopenLimitExceeded))
	assert.False(t, IsCode(errors.New("plain"), CodeReopenWindowExpired))
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorContains(t, domainErr, "boom")
}
