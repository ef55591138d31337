package services

import "errors"

var (
	// ErrNotFound means the referenced request, team or member does not
	// exist at the expected key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means an approve or reject was attempted on a request
	// that already left the pending state. Surfacing this instead of a
	// silent no-op is what prevents a swap from being applied twice.
	ErrInvalidState = errors.New("request is not pending")

	// ErrIneligibleCounterpart means the submission targets a member outside
	// the requester's eligible set.
	ErrIneligibleCounterpart = errors.New("counterpart is not eligible for this requester")

	// ErrNoAvailableSlot means a give-away targets a member with no free
	// slot on the requested date. Checked at submission; no request record
	// is created.
	ErrNoAvailableSlot = errors.New("target has no available slot on that date")

	// ErrConcurrentModification means the roster document kept changing
	// under the approval and the retry limit was reached.
	ErrConcurrentModification = errors.New("roster was concurrently modified")
)
