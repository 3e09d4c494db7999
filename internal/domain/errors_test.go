package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindThroughWrapping(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := WrapError(KindDataUnavailable, "inventory.ListSnapshot", cause, "failed to query inventory")
	wrapped := fmt.Errorf("detect anomalies: %w", err)

	assert.ErrorIs(t, wrapped, ErrDataUnavailable)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindDataUnavailable, KindOf(wrapped))
}

func TestError_Message(t *testing.T) {
	err := NewError(KindNotFound, "recommendations.GetByID", "recommendation %s not found", "REC-1")
	assert.Equal(t, "recommendations.GetByID: recommendation REC-1 not found", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidTransition, http.StatusConflict},
		{ErrInsufficientStock, http.StatusConflict},
		{ErrDataUnavailable, http.StatusServiceUnavailable},
		{ErrInternalConsistency, http.StatusInternalServerError},
		{ErrPersistence, http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}
