package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := New(ErrKindNotFound, "connection not found: local")
	assert.Equal(t, "[not_found] connection not found: local", err.Error())

	cause := errors.New("dial tcp: connection refused")
	wrapped := Wrap(ErrKindConnectionFailed, "failed to connect", cause)
	assert.Equal(t, "[connection_failed] failed to connect: dial tcp: connection refused", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrKindQueryFailed, "query failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, errors.Unwrap(New(ErrKindUnknown, "no cause")))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind  ErrKind
		check func(error) bool
	}{
		{ErrKindNotFound, IsNotFound},
		{ErrKindTimeout, IsTimeout},
		{ErrKindConnectionFailed, IsConnectionFailed},
		{ErrKindQueryFailed, IsQueryFailed},
		{ErrKindInvalidInput, IsInvalidInput},
		{ErrKindForbiddenQuery, IsForbiddenQuery},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.check(New(tt.kind, "boom")))
			assert.False(t, tt.check(New(ErrKindUnknown, "boom")))
			assert.False(t, tt.check(errors.New("plain error")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	// The kind survives further wrapping with %w.
	inner := New(ErrKindForbiddenQuery, "DROP statements are not allowed")
	outer := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, ErrKindForbiddenQuery, KindOf(outer))
	assert.True(t, IsForbiddenQuery(outer))
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", ErrKindNotFound.String())
	assert.Equal(t, "forbidden_query", ErrKindForbiddenQuery.String())
	assert.Equal(t, "unknown", ErrKindUnknown.String())
	assert.Equal(t, "unknown", ErrKind(99).String())
}
