package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/schedule"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

// DefaultApprovalRetries bounds how many times an approval re-runs its
// read-modify-write cycle after losing a roster version race.
const DefaultApprovalRetries = 5

// ApprovalStore defines the database operations needed to decide a request.
type ApprovalStore interface {
	GetRequest(ctx context.Context, id string) (*model.ExchangeRequest, error)
	GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error)
	CommitApproval(ctx context.Context, id, decidedBy string, decidedAt time.Time, doc *model.RosterDocument, expectedVersion int64) error
	MarkRejected(ctx context.Context, id, decidedBy string, decidedAt time.Time) error
}

// DecisionResult contains the decided request and, for approvals, the roster
// document as written.
type DecisionResult struct {
	Request *model.ExchangeRequest
	Roster  *model.RosterDocument
}

// Approve applies a pending request to its roster document and marks the
// request approved, as one atomic commit. The roster read-modify-write runs
// under optimistic versioning: on a version conflict the whole cycle retries
// up to maxRetries times before surfacing ErrConcurrentModification. On any
// failure the request stays pending and the roster is untouched.
func Approve(
	ctx context.Context,
	store ApprovalStore,
	notifier realtime.Publisher,
	logger *zap.Logger,
	requestID string,
	decidedBy string,
	maxRetries int,
) (*DecisionResult, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultApprovalRetries
	}

	req, err := loadPending(ctx, store, requestID)
	if err != nil {
		return nil, err
	}

	monthKey, err := schedule.MonthKeyOf(req.Date)
	if err != nil {
		return nil, err
	}

	logger.Info("Approving exchange request",
		zap.String("request_id", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("department", req.RequesterDepartment),
		zap.String("month_key", monthKey))

	for attempt := 1; attempt <= maxRetries; attempt++ {
		roster, err := loadRosterOrEmpty(ctx, store, req.RequesterDepartment, monthKey)
		if err != nil {
			return nil, err
		}

		mutated, err := applyRequest(roster, req)
		if err != nil {
			return nil, err
		}

		decidedAt := time.Now().UTC()
		err = store.CommitApproval(ctx, req.ID, decidedBy, decidedAt, mutated, roster.Version)
		if errors.Is(err, db.ErrVersionConflict) {
			logger.Warn("Roster version conflict during approval, retrying",
				zap.String("request_id", req.ID),
				zap.Int64("read_version", roster.Version),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, mapDecisionError(err, req.ID)
		}

		mutated.Version = roster.Version + 1
		decided := *req
		decided.Status = model.StatusApproved
		decided.DecidedAt = &decidedAt
		decided.DecidedBy = decidedBy

		logger.Info("Exchange request approved",
			zap.String("request_id", req.ID),
			zap.Int64("roster_version", mutated.Version),
			zap.Int("attempts", attempt))

		publishDecision(notifier, &decided, mutated)
		return &DecisionResult{Request: &decided, Roster: mutated}, nil
	}

	logger.Error("Approval gave up after repeated roster conflicts",
		zap.String("request_id", req.ID),
		zap.Int("max_retries", maxRetries))
	return nil, ErrConcurrentModification
}

// Reject marks a pending request rejected. The roster is never touched.
func Reject(
	ctx context.Context,
	store ApprovalStore,
	notifier realtime.Publisher,
	logger *zap.Logger,
	requestID string,
	decidedBy string,
) (*DecisionResult, error) {
	req, err := loadPending(ctx, store, requestID)
	if err != nil {
		return nil, err
	}

	decidedAt := time.Now().UTC()
	if err := store.MarkRejected(ctx, req.ID, decidedBy, decidedAt); err != nil {
		return nil, mapDecisionError(err, req.ID)
	}

	decided := *req
	decided.Status = model.StatusRejected
	decided.DecidedAt = &decidedAt
	decided.DecidedBy = decidedBy

	logger.Info("Exchange request rejected",
		zap.String("request_id", req.ID),
		zap.String("decided_by", decidedBy))

	notifier.Publish(realtime.Event{
		Key:  realtime.RequestsKey(decided.RequesterDepartment),
		Type: realtime.TypeRequestDecided,
		At:   decidedAt,
		Data: &decided,
	})
	return &DecisionResult{Request: &decided}, nil
}

func loadPending(ctx context.Context, store ApprovalStore, requestID string) (*model.ExchangeRequest, error) {
	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch request %s: %w", requestID, err)
	}
	if req.Status != model.StatusPending {
		return nil, fmt.Errorf("request %s is %s: %w", requestID, req.Status, ErrInvalidState)
	}
	return req, nil
}

func applyRequest(roster *model.RosterDocument, req *model.ExchangeRequest) (*model.RosterDocument, error) {
	switch req.Kind {
	case model.KindExchange:
		return schedule.ApplyExchange(roster, req)
	case model.KindGive:
		return schedule.ApplyGive(roster, req)
	default:
		return nil, fmt.Errorf("request %s has unknown kind %q", req.ID, req.Kind)
	}
}

// mapDecisionError translates store preconditions into the service taxonomy.
// The commit itself re-checks the pending state, so a request decided by a
// concurrent supervisor surfaces here as ErrInvalidState.
func mapDecisionError(err error, requestID string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	case errors.Is(err, db.ErrNotPending):
		return fmt.Errorf("request %s: %w", requestID, ErrInvalidState)
	default:
		return fmt.Errorf("failed to decide request %s: %w", requestID, err)
	}
}

// publishDecision emits the request and roster events for an approval.
// Callers set DecidedAt before publishing.
func publishDecision(notifier realtime.Publisher, req *model.ExchangeRequest, roster *model.RosterDocument) {
	at := *req.DecidedAt
	notifier.Publish(realtime.Event{
		Key:  realtime.RequestsKey(req.RequesterDepartment),
		Type: realtime.TypeRequestDecided,
		At:   at,
		Data: req,
	})
	notifier.Publish(realtime.Event{
		Key:  realtime.RosterKey(roster.Department, roster.MonthKey),
		Type: realtime.TypeRosterUpdated,
		At:   at,
		Data: map[string]any{
			"department": roster.Department,
			"monthKey":   roster.MonthKey,
			"version":    roster.Version,
		},
	})
}
