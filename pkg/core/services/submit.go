package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/eligibility"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/schedule"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

// SubmitStore defines the database operations needed to submit a request.
type SubmitStore interface {
	GetTeam(ctx context.Context, department string) ([]model.TeamMember, error)
	GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error)
	InsertRequest(ctx context.Context, req *model.ExchangeRequest) error
}

// SubmitExchangeParams describes a mutual swap submission.
type SubmitExchangeParams struct {
	Department     string
	RequesterID    string
	TargetID       string
	Date           string // YYYY-MM-DD
	MyShiftType    model.Row
	OtherShiftType model.Row
}

// SubmitGiveParams describes a one-directional give-away submission.
type SubmitGiveParams struct {
	Department  string
	RequesterID string
	TargetID    string
	Date        string // YYYY-MM-DD
	MyShiftType model.Row
}

// SubmitResult contains the persisted pending request.
type SubmitResult struct {
	Request *model.ExchangeRequest
}

// SubmitExchange validates an exchange request against the department team
// and the current roster, captures both parties' cell values, and persists a
// pending request. Validation failures surface before any record exists.
func SubmitExchange(
	ctx context.Context,
	store SubmitStore,
	notifier realtime.Publisher,
	logger *zap.Logger,
	params SubmitExchangeParams,
) (*SubmitResult, error) {
	logger.Debug("Submitting exchange request",
		zap.String("department", params.Department),
		zap.String("requester_id", params.RequesterID),
		zap.String("target_id", params.TargetID),
		zap.String("date", params.Date))

	if !params.MyShiftType.IsValid() || !params.OtherShiftType.IsValid() {
		return nil, fmt.Errorf("invalid slot rows %q/%q", params.MyShiftType, params.OtherShiftType)
	}

	requester, target, err := resolvePair(ctx, store, params.Department, params.RequesterID, params.TargetID)
	if err != nil {
		return nil, err
	}

	monthKey, dayIndex, err := locateDate(params.Date)
	if err != nil {
		return nil, err
	}

	roster, err := loadRosterOrEmpty(ctx, store, params.Department, monthKey)
	if err != nil {
		return nil, err
	}

	req := &model.ExchangeRequest{
		ID:                  uuid.New().String(),
		RequesterID:         requester.ID,
		RequesterName:       fullName(requester),
		RequesterDepartment: params.Department,
		TargetID:            target.ID,
		TargetName:          fullName(target),
		Date:                params.Date,
		Kind:                model.KindExchange,
		MyShiftType:         params.MyShiftType,
		MyShiftValue:        roster.Cell(model.CellKey{MemberID: requester.ID, DayIndex: dayIndex, Row: params.MyShiftType}),
		OtherShiftType:      params.OtherShiftType,
		OtherShiftValue:     roster.Cell(model.CellKey{MemberID: target.ID, DayIndex: dayIndex, Row: params.OtherShiftType}),
		Status:              model.StatusPending,
		CreatedAt:           time.Now().UTC(),
	}

	if err := store.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to insert exchange request: %w", err)
	}

	logger.Info("Exchange request submitted",
		zap.String("request_id", req.ID),
		zap.String("requester_id", req.RequesterID),
		zap.String("target_id", req.TargetID))

	notifier.Publish(realtime.Event{
		Key:  realtime.RequestsKey(params.Department),
		Type: realtime.TypeRequestCreated,
		At:   req.CreatedAt,
		Data: req,
	})

	return &SubmitResult{Request: req}, nil
}

// SubmitGive validates a give-away request, resolves the destination slot on
// the target's side (top preferred) and persists a pending request. A target
// with no free slot on that date rejects the submission with
// ErrNoAvailableSlot and nothing is stored.
func SubmitGive(
	ctx context.Context,
	store SubmitStore,
	notifier realtime.Publisher,
	logger *zap.Logger,
	params SubmitGiveParams,
) (*SubmitResult, error) {
	logger.Debug("Submitting give request",
		zap.String("department", params.Department),
		zap.String("requester_id", params.RequesterID),
		zap.String("target_id", params.TargetID),
		zap.String("date", params.Date))

	if !params.MyShiftType.IsValid() {
		return nil, fmt.Errorf("invalid slot row %q", params.MyShiftType)
	}

	requester, target, err := resolvePair(ctx, store, params.Department, params.RequesterID, params.TargetID)
	if err != nil {
		return nil, err
	}

	monthKey, dayIndex, err := locateDate(params.Date)
	if err != nil {
		return nil, err
	}

	roster, err := loadRosterOrEmpty(ctx, store, params.Department, monthKey)
	if err != nil {
		return nil, err
	}

	targetSlot, err := schedule.ResolveGiveSlot(roster, target.ID, dayIndex)
	if err != nil {
		if errors.Is(err, schedule.ErrNoAvailableSlot) {
			return nil, ErrNoAvailableSlot
		}
		return nil, err
	}

	req := &model.ExchangeRequest{
		ID:                  uuid.New().String(),
		RequesterID:         requester.ID,
		RequesterName:       fullName(requester),
		RequesterDepartment: params.Department,
		TargetID:            target.ID,
		TargetName:          fullName(target),
		Date:                params.Date,
		Kind:                model.KindGive,
		MyShiftType:         params.MyShiftType,
		MyShiftValue:        roster.Cell(model.CellKey{MemberID: requester.ID, DayIndex: dayIndex, Row: params.MyShiftType}),
		TargetShiftType:     targetSlot,
		Status:              model.StatusPending,
		CreatedAt:           time.Now().UTC(),
	}

	if err := store.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to insert give request: %w", err)
	}

	logger.Info("Give request submitted",
		zap.String("request_id", req.ID),
		zap.String("requester_id", req.RequesterID),
		zap.String("target_id", req.TargetID),
		zap.String("target_slot", string(targetSlot)))

	notifier.Publish(realtime.Event{
		Key:  realtime.RequestsKey(params.Department),
		Type: realtime.TypeRequestCreated,
		At:   req.CreatedAt,
		Data: req,
	})

	return &SubmitResult{Request: req}, nil
}

// resolvePair loads the department team and checks that both members exist
// and are eligible to trade with each other.
func resolvePair(ctx context.Context, store SubmitStore, department, requesterID, targetID string) (model.TeamMember, model.TeamMember, error) {
	var zero model.TeamMember

	members, err := store.GetTeam(ctx, department)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return zero, zero, fmt.Errorf("team %s: %w", department, ErrNotFound)
		}
		return zero, zero, fmt.Errorf("failed to fetch team %s: %w", department, err)
	}

	requester, ok := findMember(members, requesterID)
	if !ok {
		return zero, zero, fmt.Errorf("requester %s: %w", requesterID, ErrNotFound)
	}
	target, ok := findMember(members, targetID)
	if !ok {
		return zero, zero, fmt.Errorf("target %s: %w", targetID, ErrNotFound)
	}

	if requester.ID == target.ID || !eligibility.Eligible(requester.Role, target.Role) {
		return zero, zero, ErrIneligibleCounterpart
	}
	return requester, target, nil
}

func findMember(members []model.TeamMember, id string) (model.TeamMember, bool) {
	for _, member := range members {
		if member.ID == id {
			return member, true
		}
	}
	return model.TeamMember{}, false
}

func locateDate(date string) (string, int, error) {
	monthKey, err := schedule.MonthKeyOf(date)
	if err != nil {
		return "", 0, err
	}
	dayIndex, err := schedule.DayIndexOf(date)
	if err != nil {
		return "", 0, err
	}
	return monthKey, dayIndex, nil
}

// rosterReader is the read side shared by submission and approval.
type rosterReader interface {
	GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error)
}

// loadRosterOrEmpty treats an absent roster document as an empty grid, which
// is how a month looks before its first write.
func loadRosterOrEmpty(ctx context.Context, store rosterReader, department, monthKey string) (*model.RosterDocument, error) {
	roster, err := store.GetRoster(ctx, department, monthKey)
	if errors.Is(err, db.ErrNotFound) {
		return &model.RosterDocument{Department: department, MonthKey: monthKey}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster %s-%s: %w", department, monthKey, err)
	}
	return roster, nil
}

func fullName(member model.TeamMember) string {
	return member.FirstName + " " + member.LastName
}
