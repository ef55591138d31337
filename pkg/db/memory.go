package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

// Memory is an in-process Store with the same compare-and-swap semantics as
// the Postgres store. It backs the test suites and the CLI's offline mode.
type Memory struct {
	mu       sync.RWMutex
	teams    map[string][]model.TeamMember
	rosters  map[string]*model.RosterDocument // keyed department|monthKey
	requests map[string]*model.ExchangeRequest
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		teams:    make(map[string][]model.TeamMember),
		rosters:  make(map[string]*model.RosterDocument),
		requests: make(map[string]*model.ExchangeRequest),
	}
}

func rosterKey(department, monthKey string) string {
	return department + "|" + monthKey
}

// SeedTeam installs a department's member list. Team maintenance belongs to
// the administration screens, so the store only offers this as a load hook.
func (m *Memory) SeedTeam(department string, members []model.TeamMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[department] = append([]model.TeamMember(nil), members...)
}

func (m *Memory) GetTeam(ctx context.Context, department string) ([]model.TeamMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members, ok := m.teams[department]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]model.TeamMember(nil), members...), nil
}

func (m *Memory) GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.rosters[rosterKey(department, monthKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *Memory) SaveRoster(ctx context.Context, doc *model.RosterDocument, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveRosterLocked(doc, expectedVersion)
}

func (m *Memory) saveRosterLocked(doc *model.RosterDocument, expectedVersion int64) error {
	key := rosterKey(doc.Department, doc.MonthKey)
	current, exists := m.rosters[key]
	if exists && current.Version != expectedVersion {
		return ErrVersionConflict
	}
	if !exists && expectedVersion != 0 {
		return ErrVersionConflict
	}
	stored := doc.Clone()
	stored.Version = expectedVersion + 1
	m.rosters[key] = stored
	return nil
}

func (m *Memory) InsertRequest(ctx context.Context, req *model.ExchangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *Memory) GetRequest(ctx context.Context, id string) (*model.ExchangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *Memory) MarkRejected(ctx context.Context, id, decidedBy string, decidedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decideLocked(id, model.StatusRejected, decidedBy, decidedAt)
}

func (m *Memory) CommitApproval(ctx context.Context, id, decidedBy string, decidedAt time.Time, doc *model.RosterDocument, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate the request transition before touching the roster so a bad
	// state never leaves a half-applied commit.
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != model.StatusPending {
		return ErrNotPending
	}
	if err := m.saveRosterLocked(doc, expectedVersion); err != nil {
		return err
	}
	return m.decideLocked(id, model.StatusApproved, decidedBy, decidedAt)
}

func (m *Memory) decideLocked(id string, status model.RequestStatus, decidedBy string, decidedAt time.Time) error {
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != model.StatusPending {
		return ErrNotPending
	}
	req.Status = status
	req.DecidedBy = decidedBy
	at := decidedAt
	req.DecidedAt = &at
	return nil
}

func (m *Memory) ListByRequester(ctx context.Context, requesterID string) ([]model.ExchangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]model.ExchangeRequest, 0)
	for _, req := range m.requests {
		if req.RequesterID == requesterID {
			result = append(result, *req)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) ListByDepartment(ctx context.Context, department string, status model.RequestStatus) ([]model.ExchangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]model.ExchangeRequest, 0)
	for _, req := range m.requests {
		if req.RequesterDepartment != department {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, *req)
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(requests []model.ExchangeRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}
