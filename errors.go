// errors.go: comprehensive error handling for loom ECS operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all world, entity, column and worker operations.
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package loom

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for loom ECS operations.
const (
	// Configuration / lifecycle errors (1xxx)
	ErrCodeInvalidConfig     errors.ErrorCode = "LOOM_INVALID_CONFIG"
	ErrCodeInvalidSchema     errors.ErrorCode = "LOOM_INVALID_SCHEMA"
	ErrCodeAlreadyInitialized errors.ErrorCode = "LOOM_ALREADY_INITIALIZED"
	ErrCodeNotRegistered     errors.ErrorCode = "LOOM_NOT_REGISTERED"

	// Entity errors (2xxx)
	ErrCodeCapacityExceeded errors.ErrorCode = "LOOM_CAPACITY_EXCEEDED"
	ErrCodeEntityDead       errors.ErrorCode = "LOOM_ENTITY_DEAD"
	ErrCodeEntityNotFound   errors.ErrorCode = "LOOM_ENTITY_NOT_FOUND"

	// Component errors (3xxx)
	ErrCodeDuplicateComponent errors.ErrorCode = "LOOM_DUPLICATE_COMPONENT"

	// Worker errors (4xxx)
	ErrCodeThreadCountExceeded errors.ErrorCode = "LOOM_THREAD_COUNT_EXCEEDED"
	ErrCodeWorkerTimeout       errors.ErrorCode = "LOOM_WORKER_TIMEOUT"
	ErrCodeWorkerError         errors.ErrorCode = "LOOM_WORKER_ERROR"

	// Internal errors (5xxx)
	ErrCodeInternalError  errors.ErrorCode = "LOOM_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "LOOM_PANIC_RECOVERED"
)

// Common error messages
const (
	msgInvalidConfig         = "invalid world configuration"
	msgInvalidSchema         = "invalid column schema"
	msgAlreadyInitialized    = "column is already registered in a world"
	msgNotRegistered         = "column is not registered in this world"
	msgCapacityExceeded      = "id pool is exhausted"
	msgEntityDead            = "entity is not alive"
	msgEntityNotFound        = "entity id out of range"
	msgDuplicateComponent    = "entity already owns this component"
	msgThreadCountExceeded   = "requested thread count exceeds MaxWorkers"
	msgWorkerTimeout         = "worker did not respond within the configured timeout"
	msgWorkerError           = "worker system returned an error"
	msgInternalError         = "internal loom error"
	msgPanicRecovered        = "panic recovered in system callback"
)

// =============================================================================
// CONFIGURATION / LIFECYCLE ERRORS
// =============================================================================

// NewErrInvalidSchema creates an error for a malformed field schema.
func NewErrInvalidSchema(column string, reason string) error {
	return errors.NewWithContext(ErrCodeInvalidSchema, msgInvalidSchema, map[string]interface{}{
		"column": column,
		"reason": reason,
	})
}

// NewErrAlreadyInitialized creates an error when attaching a column to a
// second world.
func NewErrAlreadyInitialized(column string) error {
	return errors.NewWithField(ErrCodeAlreadyInitialized, msgAlreadyInitialized, "column", column)
}

// NewErrNotRegistered creates an error when a column op runs against a
// context that never registered the column.
func NewErrNotRegistered(column string) error {
	return errors.NewWithField(ErrCodeNotRegistered, msgNotRegistered, "column", column)
}

// =============================================================================
// ENTITY ERRORS
// =============================================================================

// NewErrCapacityExceeded creates an error when the id pool is exhausted.
func NewErrCapacityExceeded(capacity int) error {
	return errors.NewWithContext(ErrCodeCapacityExceeded, msgCapacityExceeded, map[string]interface{}{
		"capacity": capacity,
	})
}

// NewErrEntityDead creates an error for an operation against a dead entity.
func NewErrEntityDead(id EntityID, operation string) error {
	return errors.NewWithContext(ErrCodeEntityDead, msgEntityDead, map[string]interface{}{
		"entity_id": uint32(id),
		"operation": operation,
	})
}

// NewErrEntityNotFound creates an error for an out-of-range entity id.
func NewErrEntityNotFound(id EntityID) error {
	return errors.NewWithField(ErrCodeEntityNotFound, msgEntityNotFound, "entity_id", uint32(id))
}

// =============================================================================
// COMPONENT ERRORS
// =============================================================================

// NewErrDuplicateComponent creates an error when addComponent targets an
// entity that already owns the column.
func NewErrDuplicateComponent(id EntityID, column string) error {
	return errors.NewWithContext(ErrCodeDuplicateComponent, msgDuplicateComponent, map[string]interface{}{
		"entity_id": uint32(id),
		"column":    column,
	})
}

// =============================================================================
// WORKER ERRORS
// =============================================================================

// NewErrThreadCountExceeded creates an error when a worker-system dispatch
// requests more threads than MaxWorkers.
func NewErrThreadCountExceeded(requested, max int) error {
	return errors.NewWithContext(ErrCodeThreadCountExceeded, msgThreadCountExceeded, map[string]interface{}{
		"requested":  requested,
		"max_workers": max,
	}).AsRetryable()
}

// NewErrWorkerTimeout creates an error when a worker misses the host timeout.
func NewErrWorkerTimeout(threadIndex int, timeout interface{}) error {
	return errors.NewWithContext(ErrCodeWorkerTimeout, msgWorkerTimeout, map[string]interface{}{
		"thread_index": threadIndex,
		"timeout":      timeout,
	}).AsRetryable()
}

// NewErrWorkerError wraps an error returned by worker system code.
func NewErrWorkerError(threadIndex int, cause error) error {
	return errors.Wrap(cause, ErrCodeWorkerError, msgWorkerError).
		WithContext("thread_index", threadIndex)
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error when a panic is recovered from a
// system or loader callback.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsEntityDead reports whether err is an EntityDead error.
func IsEntityDead(err error) bool {
	return errors.HasCode(err, ErrCodeEntityDead)
}

// IsDuplicateComponent reports whether err is a DuplicateComponent error.
func IsDuplicateComponent(err error) bool {
	return errors.HasCode(err, ErrCodeDuplicateComponent)
}

// IsCapacityExceeded reports whether err is a CapacityExceeded error.
func IsCapacityExceeded(err error) bool {
	return errors.HasCode(err, ErrCodeCapacityExceeded)
}

// IsWorkerTimeout reports whether err is a WorkerTimeout error.
func IsWorkerTimeout(err error) bool {
	return errors.HasCode(err, ErrCodeWorkerTimeout)
}

// IsRetryable reports whether err can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts structured context from an error, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var loomErr *errors.Error
	if goerrors.As(err, &loomErr) {
		return loomErr.Context
	}
	return nil
}
