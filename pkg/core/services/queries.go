package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

// QueryStore defines the read operations behind the request and roster views.
type QueryStore interface {
	rosterReader
	ListByRequester(ctx context.Context, requesterID string) ([]model.ExchangeRequest, error)
	ListByDepartment(ctx context.Context, department string, status model.RequestStatus) ([]model.ExchangeRequest, error)
}

// ListRequestsByRequester returns every request a member has submitted,
// newest first.
func ListRequestsByRequester(ctx context.Context, store QueryStore, logger *zap.Logger, requesterID string) ([]model.ExchangeRequest, error) {
	requests, err := store.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for %s: %w", requesterID, err)
	}
	logger.Debug("Listed requests by requester",
		zap.String("requester_id", requesterID),
		zap.Int("count", len(requests)))
	return requests, nil
}

// ListPendingByDepartment returns a department's open requests, the
// supervisor review queue.
func ListPendingByDepartment(ctx context.Context, store QueryStore, logger *zap.Logger, department string) ([]model.ExchangeRequest, error) {
	return ListRequestsByDepartment(ctx, store, logger, department, model.StatusPending)
}

// ListRequestsByDepartment returns a department's requests filtered by
// status; an empty status returns all of them.
func ListRequestsByDepartment(ctx context.Context, store QueryStore, logger *zap.Logger, department string, status model.RequestStatus) ([]model.ExchangeRequest, error) {
	requests, err := store.ListByDepartment(ctx, department, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for department %s: %w", department, err)
	}
	logger.Debug("Listed requests by department",
		zap.String("department", department),
		zap.String("status", string(status)),
		zap.Int("count", len(requests)))
	return requests, nil
}

// GetRoster returns the roster document for a department and month. A month
// nobody has written yet reads as an empty document at version 0.
func GetRoster(ctx context.Context, store QueryStore, logger *zap.Logger, department, monthKey string) (*model.RosterDocument, error) {
	roster, err := loadRosterOrEmpty(ctx, store, department, monthKey)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched roster",
		zap.String("department", department),
		zap.String("month_key", monthKey),
		zap.Int64("version", roster.Version))
	return roster, nil
}
