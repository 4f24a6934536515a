package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks malformed or schema-mismatched response bodies.
	ErrDecode = errors.New("failed to decode response")
	// ErrMissingApprovalData marks an approvals response without an integer approvals_left.
	ErrMissingApprovalData = errors.New("no approval data")
)

// FetchError is the single failure type returned by MergeRequestService.
// Err carries the underlying cause (api.ErrTransport, *api.StatusError,
// ErrDecode or ErrMissingApprovalData).
type FetchError struct {
	Op  string
	IID int64 // zero when the failure is not tied to a single merge request
	Err error
}

func (e *FetchError) Error() string {
	if e.IID != 0 {
		return fmt.Sprintf("%s for merge request !%d: %v", e.Op, e.IID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
