// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"fmt"

	"github.com/olegiv/clubportal/internal/model"
)

var (
	// ErrNotFound means the item does not exist or the caller may not see it.
	// The two cases are deliberately indistinguishable to non-admin callers.
	ErrNotFound = errors.New("content not found")

	// ErrUnauthorized means the actor may not perform a mutation.
	ErrUnauthorized = errors.New("not authorized")

	// ErrUpstream matches every *UpstreamError via errors.Is.
	ErrUpstream = errors.New("document store failure")
)

// UpstreamError wraps a failed call into the document store.
type UpstreamError struct {
	Kind model.Kind
	Op   string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the adapter error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUpstream) true for any UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func upstream(kind model.Kind, op string, err error) error {
	return &UpstreamError{Kind: kind, Op: op, Err: err}
}
