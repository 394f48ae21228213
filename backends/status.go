// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import "github.com/gomlx/dnngraph/types/status"

//go:generate go tool enumer -type=Status -trimprefix=Status -transform=snake-upper -output=gen_status_enumer.go status.go

// Status is the native status reported by a backend call.
type Status int

const (
	StatusSuccess Status = iota
	StatusNotInitialized
	StatusAllocFailed
	StatusBadParam
	StatusInternalError
	StatusInvalidValue
	StatusArchMismatch
	StatusMappingError
	StatusExecutionFailed
	StatusNotSupported
	StatusLicenseError
	StatusRuntimePrerequisiteMissing
	StatusRuntimeInProgress
	StatusRuntimeFPOverflow
	StatusVersionMismatch
)

// Ok returns whether the status is StatusSuccess.
func (s Status) Ok() bool { return s == StatusSuccess }

// Code translates the native status to a normalized status.Code.
func (s Status) Code() status.Code {
	switch s {
	case StatusSuccess:
		return status.OK
	case StatusNotInitialized, StatusRuntimePrerequisiteMissing, StatusLicenseError:
		return status.FailedPrecondition
	case StatusAllocFailed:
		return status.ResourceExhausted
	case StatusBadParam, StatusInvalidValue:
		return status.InvalidArgument
	case StatusArchMismatch, StatusNotSupported, StatusVersionMismatch:
		return status.Unimplemented
	case StatusRuntimeInProgress:
		return status.Unavailable
	case StatusRuntimeFPOverflow:
		return status.OutOfRange
	case StatusInternalError, StatusMappingError, StatusExecutionFailed:
		return status.Internal
	default:
		return status.Unknown
	}
}

// ToError converts a non-successful native status to an error of the given kind, with a message
// formatted from format and args. It returns nil for StatusSuccess.
func (s Status) ToError(kind status.Kind, format string, args ...any) error {
	if s.Ok() {
		return nil
	}
	return status.FromNative(kind, s.Code(), s.String(), format, args...)
}
