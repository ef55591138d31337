package schedule

import (
	"errors"
	"fmt"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

// ErrNoAvailableSlot is returned when a give-away targets a member whose two
// slots on the requested date are both occupied.
var ErrNoAvailableSlot = errors.New("target has no available slot on that date")

// ApplyExchange swaps the two cell values named by an exchange request and
// returns a new roster document; the input document is never modified.
// The swap is a plain value exchange and works uniformly for every
// combination of top/bottom slots on the two sides: the row labels identify
// the cells but do not have to match. Cells on members or days the document
// has never seen read as empty strings.
func ApplyExchange(doc *model.RosterDocument, req *model.ExchangeRequest) (*model.RosterDocument, error) {
	if req.Kind != model.KindExchange {
		return nil, fmt.Errorf("request %s is not an exchange request", req.ID)
	}
	if !req.MyShiftType.IsValid() || !req.OtherShiftType.IsValid() {
		return nil, fmt.Errorf("request %s has invalid slot rows %q/%q", req.ID, req.MyShiftType, req.OtherShiftType)
	}
	dayIndex, err := DayIndexOf(req.Date)
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	mine := model.CellKey{MemberID: req.RequesterID, DayIndex: dayIndex, Row: req.MyShiftType}
	theirs := model.CellKey{MemberID: req.TargetID, DayIndex: dayIndex, Row: req.OtherShiftType}

	a := out.Cell(mine)
	b := out.Cell(theirs)
	out.SetCell(mine, b)
	out.SetCell(theirs, a)
	return out, nil
}

// ApplyGive moves the shift value captured at submission time into the
// target's slot resolved at submission time and marks the giver's slot off
// duty. The value written is req.MyShiftValue, not a re-read of the current
// roster: the gift is what the requester offered, even if the grid was edited
// between submission and approval.
func ApplyGive(doc *model.RosterDocument, req *model.ExchangeRequest) (*model.RosterDocument, error) {
	if req.Kind != model.KindGive {
		return nil, fmt.Errorf("request %s is not a give request", req.ID)
	}
	if !req.MyShiftType.IsValid() || !req.TargetShiftType.IsValid() {
		return nil, fmt.Errorf("request %s has invalid slot rows %q/%q", req.ID, req.MyShiftType, req.TargetShiftType)
	}
	dayIndex, err := DayIndexOf(req.Date)
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	out.SetCell(model.CellKey{MemberID: req.RequesterID, DayIndex: dayIndex, Row: req.MyShiftType}, model.OffDuty)
	out.SetCell(model.CellKey{MemberID: req.TargetID, DayIndex: dayIndex, Row: req.TargetShiftType}, req.MyShiftValue)
	return out, nil
}

// ResolveGiveSlot finds the destination slot for a give-away: the target's
// top slot if it is free, otherwise the bottom slot, otherwise
// ErrNoAvailableSlot. A slot is free when it is unset or holds the off-duty
// token. Called at submission time; the resolved row is stored on the request
// and reused verbatim at approval.
func ResolveGiveSlot(doc *model.RosterDocument, targetID string, dayIndex int) (model.Row, error) {
	if model.SlotFree(doc.Cell(model.CellKey{MemberID: targetID, DayIndex: dayIndex, Row: model.RowTop})) {
		return model.RowTop, nil
	}
	if model.SlotFree(doc.Cell(model.CellKey{MemberID: targetID, DayIndex: dayIndex, Row: model.RowBottom})) {
		return model.RowBottom, nil
	}
	return "", ErrNoAvailableSlot
}
