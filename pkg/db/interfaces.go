package db

import (
	"context"
	"errors"
	"time"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

var (
	// ErrNotFound is returned when a team, roster document or request does
	// not exist at the expected key.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by a compare-and-swap roster write when
	// the document changed since it was read.
	ErrVersionConflict = errors.New("roster document version conflict")

	// ErrNotPending is returned when a decision is committed against a
	// request that has already been approved or rejected.
	ErrNotPending = errors.New("request is not pending")
)

// TeamStore reads department team rosters. Team membership is maintained by
// the administration screens; the exchange engine never writes it.
type TeamStore interface {
	GetTeam(ctx context.Context, department string) ([]model.TeamMember, error)
}

// RosterStore persists roster documents with optimistic versioning.
type RosterStore interface {
	// GetRoster returns the document at (department, monthKey), or
	// ErrNotFound if no roster has been written for that month yet.
	GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error)

	// SaveRoster writes doc if the stored version still equals
	// expectedVersion (0 for a document that does not exist yet) and stamps
	// the stored document with expectedVersion+1. Returns ErrVersionConflict
	// when another writer got there first.
	SaveRoster(ctx context.Context, doc *model.RosterDocument, expectedVersion int64) error
}

// RequestStore persists the append-only exchange request collection.
type RequestStore interface {
	InsertRequest(ctx context.Context, req *model.ExchangeRequest) error
	GetRequest(ctx context.Context, id string) (*model.ExchangeRequest, error)

	// MarkRejected flips a pending request to rejected. Returns ErrNotFound
	// for an unknown ID and ErrNotPending when the request was already
	// decided.
	MarkRejected(ctx context.Context, id, decidedBy string, decidedAt time.Time) error

	// CommitApproval atomically writes the mutated roster document (with the
	// same compare-and-swap contract as SaveRoster) and flips the request to
	// approved. Either both changes commit or neither does. Returns
	// ErrVersionConflict on a roster race, ErrNotFound / ErrNotPending on a
	// bad request state.
	CommitApproval(ctx context.Context, id, decidedBy string, decidedAt time.Time, doc *model.RosterDocument, expectedVersion int64) error

	// ListByRequester returns every request the member has submitted, newest
	// first.
	ListByRequester(ctx context.Context, requesterID string) ([]model.ExchangeRequest, error)

	// ListByDepartment returns the department's requests, newest first,
	// optionally filtered by status (empty status means all).
	ListByDepartment(ctx context.Context, department string, status model.RequestStatus) ([]model.ExchangeRequest, error)
}

// Store is the full persistence surface of the exchange engine.
type Store interface {
	TeamStore
	RosterStore
	RequestStore
}
