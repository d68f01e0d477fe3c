// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting error strings. ErrNotFound is derived purely from the
// affected-row count of a targeted mutation, never from a separate
// existence check that could race with the mutation itself.
package repository

import "errors"

// ErrNotFound is returned when a targeted mutation or lookup matched zero
// rows. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrAllocationExhausted is returned when the sequence allocator ran out of
// retries against transient storage conflicts. The caller must fail the
// request; a code is never fabricated in place of an allocated one.
var ErrAllocationExhausted = errors.New("sequence allocation retries exhausted")

// ErrStorageUnavailable is returned when the underlying store cannot be
// reached or the operation failed for a non-transient reason. Handlers
// should translate this into a generic HTTP 500 response.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrEmailExists is returned when creating a user with an email that is
// already registered.
var ErrEmailExists = errors.New("email already exists")
