package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInvalidUnit, "unit not allowed for category")

	assert.True(t, HasCode(err, CodeInvalidUnit))
	assert.False(t, HasCode(err, CodeUnknownCategory))
	assert.False(t, HasCode(errors.New("plain"), CodeInvalidUnit))
	assert.False(t, HasCode(nil, CodeInvalidUnit))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(cause, CodeNotFound, "claim not found")

	require.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.Contains(t, err.Error(), "claim not found")
}

func TestHasCode_SeesThroughOuterWrapping(t *testing.T) {
	inner := New(CodeAlreadyVerified, "claim already verified")
	outer := fmt.Errorf("verify claim: %w", inner)

	assert.True(t, HasCode(outer, CodeAlreadyVerified))
	assert.Equal(t, CodeAlreadyVerified, CodeOf(outer))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnknownCategory, http.StatusBadRequest},
		{CodeInvalidUnit, http.StatusBadRequest},
		{CodeInvalidMethodology, http.StatusBadRequest},
		{CodeOutOfRange, http.StatusBadRequest},
		{CodeInvalidScore, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyVerified, http.StatusConflict},
		{CodeDuplicateID, http.StatusConflict},
		{CodeClaimTooOld, http.StatusUnprocessableEntity},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unmapped"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.code), string(tt.code))
	}
}
