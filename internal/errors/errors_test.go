package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesCodeAndMeta(t *testing.T) {
	base := errors.InvalidArgument("event name is required").WithMeta("event", "")

	wrapped := errors.Wrap(base, "subscribe")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeInvalidArgument, wrapped.Code)
	assert.Equal(t, "", wrapped.Meta["event"])
	assert.True(t, errors.IsInvalidArgument(wrapped))
	assert.Equal(t, "subscribe: event name is required", wrapped.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "nothing"))
	assert.Nil(t, errors.Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, errors.WrapWithCode(nil, errors.CodeInternal, "nothing"))
}

func TestWrap_ForeignErrorIsUnknown(t *testing.T) {
	wrapped := errors.Wrap(stderrors.New("boom"), "outer")

	assert.Equal(t, errors.CodeUnknown, wrapped.Code)
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
}

func TestCallbackFailure(t *testing.T) {
	cause := stderrors.New("subscriber exploded")

	err := errors.CallbackFailure(cause, "score", "A")

	assert.True(t, errors.IsCallbackFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "score", errors.GetMeta(err)["event"])
	assert.Equal(t, "A", errors.GetMeta(err)["subscriber"])
}

func TestIs_Codes(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFoundf("event %s", "score")))
	assert.True(t, errors.IsUnavailable(errors.Unavailable(stderrors.New("conn refused"), "redis")))
	assert.True(t, errors.IsDisposed(errors.Disposed("bus disposed")))
	assert.True(t, errors.IsInternal(errors.Internalf("bad %s", "state")))
	assert.True(t, errors.IsValidation(errors.Validationf("bad %s", "duration")))
	assert.False(t, errors.IsValidation(errors.Internal("nope")))
	assert.Nil(t, errors.GetMeta(stderrors.New("plain")))
}
