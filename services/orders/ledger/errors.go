// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for store requests.
var (
	// Malformed input; nothing is written.
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidDate    = errors.New("invalid date format, use yyyy-MM-dd")

	// Configuration errors
	ErrEmptyFileName = errors.New("file name must not be empty")
	ErrNilStore      = errors.New("document store must not be nil")
)

// Storage operations reported in StorageError.Op.
const (
	OpResolveDirectory = "resolve directory"
	OpLoad             = "load document"
	OpSave             = "save document"
	OpLock             = "acquire write lock"
)

// StorageError wraps a filesystem or document failure with the operation
// and path involved.
type StorageError struct {
	Op   string // Operation that failed
	Path string // File or directory involved
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.message(), e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// message is the caller-facing text for the failed operation.
func (e *StorageError) message() string {
	switch e.Op {
	case OpResolveDirectory:
		return "Unable to create or access directory"
	case OpLoad:
		return "Unable to read existing Excel file"
	default:
		return "Failed to store order details"
	}
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
