package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindConfig, "bad project path")
	assert.Equal(t, "bad project path", err.Error())

	wrapped := Wrap(fmt.Errorf("dial tcp: refused"), KindGraphUnavailable, "cannot connect")
	assert.Equal(t, "cannot connect: dial tcp: refused", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindGraphQuery, "ignored"))
	assert.Nil(t, Wrapf(nil, KindGraphQuery, "ignored %d", 1))
}

func TestKindMatching(t *testing.T) {
	err := GraphUnavailable(fmt.Errorf("refused"), "cannot connect")

	assert.True(t, IsKind(err, KindGraphUnavailable))
	assert.False(t, IsKind(err, KindConfig))
	assert.Equal(t, KindGraphUnavailable, GetKind(err))

	// Kind survives further wrapping.
	outer := fmt.Errorf("pass failed: %w", err)
	assert.Equal(t, KindGraphUnavailable, GetKind(outer))
	assert.True(t, stderrors.Is(outer, &Error{Kind: KindGraphUnavailable}))
}

func TestGetKindPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, GetKind(fmt.Errorf("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, KindParse, "parse failed")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CONFIG", KindConfig.String())
	assert.Equal(t, "GRAPH_UNAVAILABLE", KindGraphUnavailable.String())
	assert.Equal(t, "PARSE", KindParse.String())
}
