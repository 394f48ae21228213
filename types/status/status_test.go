// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package status

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := Errorf(KindArityMismatch, InvalidArgument, "got %d buffers, wanted %d", 2, 3)
	require.Error(t, err)
	assert.Equal(t, KindArityMismatch, KindOf(err))
	assert.Equal(t, InvalidArgument, CodeOf(err))
	assert.True(t, IsKind(err, KindArityMismatch))
	assert.False(t, IsKind(err, KindInternal))
	assert.Equal(t, "ArityMismatch (INVALID_ARGUMENT): got 2 buffers, wanted 3", fmt.Sprint(&Error{
		Kind: KindArityMismatch, Code: InvalidArgument, Message: "got 2 buffers, wanted 3"}))

	// Wrapping keeps the kind.
	wrapped := errors.WithMessage(err, "executing graph")
	assert.Equal(t, KindArityMismatch, KindOf(wrapped))
	wrapped = fmt.Errorf("outer: %w", wrapped)
	assert.True(t, IsKind(wrapped, KindArityMismatch))

	// Foreign errors.
	assert.Equal(t, KindUnknown, KindOf(errors.New("foreign")))
	assert.Equal(t, Unknown, CodeOf(errors.New("foreign")))
	assert.Equal(t, OK, CodeOf(nil))
	assert.False(t, IsKind(nil, KindUnknown))
}

func TestFromNative(t *testing.T) {
	err := FromNative(KindBackendDescriptor, InvalidArgument, "BAD_PARAM", "tensor descriptor uid=%d", 7)
	var statusErr *Error
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "BAD_PARAM", statusErr.Native)
	assert.Contains(t, err.Error(), "BackendDescriptor (INVALID_ARGUMENT, backend status BAD_PARAM)")
	assert.Contains(t, err.Error(), "uid=7")
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "NoViableEngineConfig", KindNoViableEngineConfig.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, "UNIMPLEMENTED", Unimplemented.String())
	assert.Equal(t, "NOT_FOUND", NotFound.String())
	assert.Equal(t, "RESOURCE_EXHAUSTED", ResourceExhausted.String())
	assert.Equal(t, "Code(4)", Code(4).String())

	code, err := CodeString("failed_precondition")
	require.NoError(t, err)
	assert.Equal(t, FailedPrecondition, code)
	kind, err := KindString("ShapeMismatch")
	require.NoError(t, err)
	assert.Equal(t, KindShapeMismatch, kind)
}
