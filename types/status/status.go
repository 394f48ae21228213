// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package status defines the errors returned by dnngraph: a Kind, telling what went wrong from the
// caller's perspective, and a normalized Code, translated from whatever native status the backend reported.
//
// All errors are recoverable and returned as values. Use KindOf or IsKind to inspect an error, they
// work through wrapping (github.com/pkg/errors or fmt.Errorf with %w).
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go status.go

// Kind classifies an error from the caller's point of view.
type Kind int

const (
	// KindUnknown is used for errors that were not created by this package.
	KindUnknown Kind = iota

	// KindShapeMismatch is a rank/shape precondition violated by the caller, e.g.: convolution input and
	// filter with different ranks, or a 3-D convolution request.
	KindShapeMismatch

	// KindBackendDescriptor means the backend rejected a descriptor during construction.
	KindBackendDescriptor

	// KindUnsupportedGraph means the heuristics produced no candidate engine configuration for a graph.
	KindUnsupportedGraph

	// KindNoViableEngineConfig means candidates existed, but none could be built into an execution plan.
	KindNoViableEngineConfig

	// KindArityMismatch means the number of buffers given to Execute doesn't match arguments+results.
	KindArityMismatch

	// KindInvalidBufferKind means a buffer is not backed by the expected (device) memory.
	KindInvalidBufferKind

	// KindWorkspaceUnsupported means the selected plan requires workspace memory, which is not supported.
	KindWorkspaceUnsupported

	// KindBackendExecution means the backend's execute call reported failure.
	KindBackendExecution

	// KindPrecondition is a violated precondition of a helper function, e.g. channels-last strides
	// requested for a rank other than 4 or 5.
	KindPrecondition

	// KindInternal flags a broken internal invariant. It is never expected, and it indicates a bug.
	KindInternal
)

// Error is the concrete error type created by this package.
//
// It is usually returned wrapped with a stack trace (see Errorf), so use errors.As, KindOf or IsKind
// instead of a direct type assertion.
type Error struct {
	Kind Kind
	Code Code

	// Native is the name of the backend's native status, if the error originated in the backend.
	// It is empty otherwise.
	Native string

	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Native != "" {
		return fmt.Sprintf("%s (%s, backend status %s): %s", e.Kind, e.Code, e.Native, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

// Errorf creates a new error of the given kind and code, with a stack trace.
func Errorf(kind Kind, code Code, format string, args ...any) error {
	return errors.WithStack(&Error{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// FromNative creates an error for a failure reported by the backend. native is the name of the backend status,
// and code its normalized translation.
func FromNative(kind Kind, code Code, native string, format string, args ...any) error {
	return errors.WithStack(&Error{
		Kind:    kind,
		Code:    code,
		Native:  native,
		Message: fmt.Sprintf(format, args...),
	})
}

// KindOf returns the Kind of the error, or KindUnknown if err was not created by this package.
// It returns KindUnknown for nil.
func KindOf(err error) Kind {
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Kind
	}
	return KindUnknown
}

// CodeOf returns the normalized Code of the error: OK for nil, Unknown if err was not created by this package.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return Unknown
}

// IsKind returns whether err (or any error it wraps) is a status Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
