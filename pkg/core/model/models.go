package model

import "time"

type Role string

const (
	RoleNurse     Role = "Nurse"
	RoleAssistant Role = "Assistant"
	RoleAide      Role = "Patient care aide"
)

func (r Role) IsValid() bool {
	return r == RoleNurse || r == RoleAssistant || r == RoleAide
}

// IsNurseClass reports whether the role belongs to the nursing category.
func (r Role) IsNurseClass() bool {
	return r == RoleNurse
}

// IsAssistantClass reports whether the role belongs to the assistant category.
// Assistants and patient care aides trade shifts freely with each other.
func (r Role) IsAssistantClass() bool {
	return r == RoleAssistant || r == RoleAide
}

// TeamMember represents one member of a department's duty team.
// The team roster is owned by the team administration screens; the exchange
// engine only reads it.
type TeamMember struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	ERTTeam    string `json:"ertTeam,omitempty"` // secondary duty-team label, empty for nurses
}

// Row identifies one of the two per-day shift slots a member has.
type Row string

const (
	RowTop    Row = "top"
	RowBottom Row = "bottom"
)

func (r Row) IsValid() bool {
	return r == RowTop || r == RowBottom
}

// OffDuty is the token for a slot that is explicitly free, as opposed to a
// slot that was never filled in. Both count as available for a give-away.
const OffDuty = "O"

// SlotFree reports whether a cell value can receive a given-away shift.
func SlotFree(value string) bool {
	return value == "" || value == OffDuty
}

// CellKey addresses a single shift cell in a roster document.
type CellKey struct {
	MemberID string
	DayIndex int
	Row      Row
}

// DayAssignment holds the two shift slots of one member on one day.
type DayAssignment struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// Get returns the value of the given row.
func (d DayAssignment) Get(row Row) string {
	if row == RowBottom {
		return d.Bottom
	}
	return d.Top
}

// Set writes the value of the given row.
func (d *DayAssignment) Set(row Row, value string) {
	if row == RowBottom {
		d.Bottom = value
		return
	}
	d.Top = value
}

// Schedule is the full cell grid of a roster document:
// member ID -> day index (0-based) -> the two slot values.
type Schedule map[string]map[int]DayAssignment

// RosterDocument is the per-department per-month duty roster. It is the
// shared document mutated by approved exchange requests and by the roster
// grid editor. Version stamps the document for compare-and-swap writes; a
// document that has never been written has version 0.
type RosterDocument struct {
	Department string               `json:"department"`
	MonthKey   string               `json:"monthKey"` // YYYY-MM
	Schedule   Schedule             `json:"schedule,omitempty"`
	CellStyles map[string]CellStyle `json:"cellStyles,omitempty"`
	Version    int64                `json:"version"`
}

// CellStyle carries presentation-only formatting for a cell. It is persisted
// alongside the schedule so the grid UI round-trips it, but it never affects
// exchange semantics.
type CellStyle struct {
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
}

// Cell returns the value at key, treating missing map levels as empty.
func (r *RosterDocument) Cell(key CellKey) string {
	days, ok := r.Schedule[key.MemberID]
	if !ok {
		return ""
	}
	day, ok := days[key.DayIndex]
	if !ok {
		return ""
	}
	return day.Get(key.Row)
}

// SetCell writes value at key. Intermediate map levels are only created when
// a non-empty value has to be stored.
func (r *RosterDocument) SetCell(key CellKey, value string) {
	days, ok := r.Schedule[key.MemberID]
	if !ok {
		if value == "" {
			return
		}
		if r.Schedule == nil {
			r.Schedule = make(Schedule)
		}
		days = make(map[int]DayAssignment)
		r.Schedule[key.MemberID] = days
	}
	day, exists := days[key.DayIndex]
	if !exists && value == "" {
		return
	}
	day.Set(key.Row, value)
	days[key.DayIndex] = day
}

// Clone returns a deep copy of the document. The mutator works on a clone so
// a failed approval never leaves a half-modified snapshot behind.
func (r *RosterDocument) Clone() *RosterDocument {
	out := &RosterDocument{
		Department: r.Department,
		MonthKey:   r.MonthKey,
		Version:    r.Version,
	}
	if r.Schedule != nil {
		out.Schedule = make(Schedule, len(r.Schedule))
		for memberID, days := range r.Schedule {
			copied := make(map[int]DayAssignment, len(days))
			for day, assignment := range days {
				copied[day] = assignment
			}
			out.Schedule[memberID] = copied
		}
	}
	if r.CellStyles != nil {
		out.CellStyles = make(map[string]CellStyle, len(r.CellStyles))
		for k, v := range r.CellStyles {
			out.CellStyles[k] = v
		}
	}
	return out
}

// RequestKind distinguishes a mutual swap from a one-directional give-away.
type RequestKind string

const (
	KindExchange RequestKind = "exchange"
	KindGive     RequestKind = "give"
)

// RequestStatus is the lifecycle state of an exchange request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ExchangeRequest is a staff member's request to swap or give away one shift
// slot. Requests are append-only: once a supervisor decides one it is
// immutable and kept as an audit record.
type ExchangeRequest struct {
	ID                  string        `json:"id"`
	RequesterID         string        `json:"requesterId"`
	RequesterName       string        `json:"requesterName"`
	RequesterDepartment string        `json:"requesterDepartment"`
	TargetID            string        `json:"targetId"`
	TargetName          string        `json:"targetName"`
	Date                string        `json:"date"` // YYYY-MM-DD
	Kind                RequestKind   `json:"kind"`
	MyShiftType         Row           `json:"myShiftType"`
	MyShiftValue        string        `json:"myShiftValue"`
	OtherShiftType      Row           `json:"otherShiftType,omitempty"` // empty for give
	OtherShiftValue     string        `json:"otherShiftValue,omitempty"`
	TargetShiftType     Row           `json:"targetShiftType,omitempty"` // destination slot for give, resolved at submission
	Status              RequestStatus `json:"status"`
	CreatedAt           time.Time     `json:"createdAt"`
	DecidedAt           *time.Time    `json:"decidedAt,omitempty"`
	DecidedBy           string        `json:"decidedBy,omitempty"`
}
