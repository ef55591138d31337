package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

func testRoster() *model.RosterDocument {
	return &model.RosterDocument{
		Department: "ICU",
		MonthKey:   "2025-09",
		Schedule: model.Schedule{
			"alice": {9: {Top: "ช", Bottom: "ERT"}},
			"bob":   {9: {Top: "บ", Bottom: "ด"}, 10: {Top: "ช"}},
		},
		Version: 3,
	}
}

func exchangeRequest(myRow, otherRow model.Row) *model.ExchangeRequest {
	return &model.ExchangeRequest{
		ID:                  "req-1",
		RequesterID:         "alice",
		RequesterDepartment: "ICU",
		TargetID:            "bob",
		Date:                "2025-09-10",
		Kind:                model.KindExchange,
		MyShiftType:         myRow,
		OtherShiftType:      otherRow,
		Status:              model.StatusPending,
	}
}

func TestApplyExchange_AllRowCombinations(t *testing.T) {
	tests := []struct {
		name     string
		myRow    model.Row
		otherRow model.Row
	}{
		{"top-top", model.RowTop, model.RowTop},
		{"top-bottom", model.RowTop, model.RowBottom},
		{"bottom-top", model.RowBottom, model.RowTop},
		{"bottom-bottom", model.RowBottom, model.RowBottom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testRoster()
			req := exchangeRequest(tt.myRow, tt.otherRow)

			a := doc.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: tt.myRow})
			b := doc.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: tt.otherRow})

			out, err := ApplyExchange(doc, req)
			require.NoError(t, err)

			assert.Equal(t, b, out.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: tt.myRow}))
			assert.Equal(t, a, out.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: tt.otherRow}))

			// Cells outside the swap are untouched
			assert.Equal(t, "ช", out.Cell(model.CellKey{MemberID: "bob", DayIndex: 10, Row: model.RowTop}))
			for _, row := range []model.Row{model.RowTop, model.RowBottom} {
				if row != tt.myRow {
					assert.Equal(t, doc.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: row}),
						out.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: row}))
				}
				if row != tt.otherRow {
					assert.Equal(t, doc.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: row}),
						out.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: row}))
				}
			}
		})
	}
}

func TestApplyExchange_DoesNotMutateInput(t *testing.T) {
	doc := testRoster()

	_, err := ApplyExchange(doc, exchangeRequest(model.RowTop, model.RowTop))
	require.NoError(t, err)

	assert.Equal(t, "ช", doc.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: model.RowTop}))
	assert.Equal(t, "บ", doc.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: model.RowTop}))
}

func TestApplyExchange_Involution(t *testing.T) {
	doc := testRoster()

	swapped, err := ApplyExchange(doc, exchangeRequest(model.RowTop, model.RowBottom))
	require.NoError(t, err)

	// The inverse request: roles swapped, slot types mirrored
	inverse := &model.ExchangeRequest{
		ID:             "req-2",
		RequesterID:    "bob",
		TargetID:       "alice",
		Date:           "2025-09-10",
		Kind:           model.KindExchange,
		MyShiftType:    model.RowBottom,
		OtherShiftType: model.RowTop,
	}
	restored, err := ApplyExchange(swapped, inverse)
	require.NoError(t, err)

	assert.Equal(t, doc.Schedule, restored.Schedule)
}

func TestApplyExchange_MissingLevelsReadEmpty(t *testing.T) {
	doc := testRoster()
	req := &model.ExchangeRequest{
		ID:             "req-3",
		RequesterID:    "carol", // not in the document at all
		TargetID:       "bob",
		Date:           "2025-09-10",
		Kind:           model.KindExchange,
		MyShiftType:    model.RowTop,
		OtherShiftType: model.RowTop,
	}

	out, err := ApplyExchange(doc, req)
	require.NoError(t, err)

	assert.Equal(t, "บ", out.Cell(model.CellKey{MemberID: "carol", DayIndex: 9, Row: model.RowTop}))
	assert.Equal(t, "", out.Cell(model.CellKey{MemberID: "bob", DayIndex: 9, Row: model.RowTop}))
}

func TestApplyExchange_EmptySwapDoesNotMaterializeEntries(t *testing.T) {
	doc := &model.RosterDocument{Department: "ICU", MonthKey: "2025-09"}
	req := &model.ExchangeRequest{
		ID:             "req-4",
		RequesterID:    "carol",
		TargetID:       "dave",
		Date:           "2025-09-10",
		Kind:           model.KindExchange,
		MyShiftType:    model.RowTop,
		OtherShiftType: model.RowTop,
	}

	out, err := ApplyExchange(doc, req)
	require.NoError(t, err)

	// Swapping two empties stores nothing
	assert.NotContains(t, out.Schedule, "carol")
	assert.NotContains(t, out.Schedule, "dave")
}

func TestApplyExchange_EmptySwapDoesNotMaterializeDayEntries(t *testing.T) {
	// Both members exist in the document but have no entry on the swap date;
	// exchanging their two empty cells must not create one.
	doc := testRoster()
	req := &model.ExchangeRequest{
		ID:             "req-7",
		RequesterID:    "alice",
		TargetID:       "bob",
		Date:           "2025-09-20",
		Kind:           model.KindExchange,
		MyShiftType:    model.RowTop,
		OtherShiftType: model.RowTop,
	}

	out, err := ApplyExchange(doc, req)
	require.NoError(t, err)

	assert.NotContains(t, out.Schedule["alice"], 19)
	assert.NotContains(t, out.Schedule["bob"], 19)
}

func TestApplyExchange_RejectsWrongKind(t *testing.T) {
	req := exchangeRequest(model.RowTop, model.RowTop)
	req.Kind = model.KindGive

	_, err := ApplyExchange(testRoster(), req)
	assert.Error(t, err)
}

func TestApplyGive(t *testing.T) {
	doc := testRoster()
	req := &model.ExchangeRequest{
		ID:              "req-5",
		RequesterID:     "alice",
		TargetID:        "bob",
		Date:            "2025-09-11", // bob has top="ช", bottom unset on day 10
		Kind:            model.KindGive,
		MyShiftType:     model.RowTop,
		MyShiftValue:    "ช",
		TargetShiftType: model.RowBottom,
	}

	out, err := ApplyGive(doc, req)
	require.NoError(t, err)

	assert.Equal(t, model.OffDuty, out.Cell(model.CellKey{MemberID: "alice", DayIndex: 10, Row: model.RowTop}))
	assert.Equal(t, "ช", out.Cell(model.CellKey{MemberID: "bob", DayIndex: 10, Row: model.RowBottom}))

	// Everything else survives
	assert.Equal(t, "ERT", out.Cell(model.CellKey{MemberID: "alice", DayIndex: 9, Row: model.RowBottom}))
	assert.Equal(t, "ช", out.Cell(model.CellKey{MemberID: "bob", DayIndex: 10, Row: model.RowTop}))
}

func TestApplyGive_WritesSubmissionTimeValue(t *testing.T) {
	// The roster changed after submission; the gift is still the value
	// captured when the request was created.
	doc := testRoster()
	req := &model.ExchangeRequest{
		ID:              "req-6",
		RequesterID:     "alice",
		TargetID:        "bob",
		Date:            "2025-09-11",
		Kind:            model.KindGive,
		MyShiftType:     model.RowTop,
		MyShiftValue:    "ด", // captured earlier, differs from alice's current cell
		TargetShiftType: model.RowBottom,
	}

	out, err := ApplyGive(doc, req)
	require.NoError(t, err)

	assert.Equal(t, "ด", out.Cell(model.CellKey{MemberID: "bob", DayIndex: 10, Row: model.RowBottom}))
}

func TestResolveGiveSlot(t *testing.T) {
	doc := &model.RosterDocument{
		Schedule: model.Schedule{
			"free-top":    {9: {Top: model.OffDuty, Bottom: ""}},
			"busy-top":    {9: {Top: "ช", Bottom: ""}},
			"full":        {9: {Top: "ช", Bottom: "บ"}},
			"off-and-off": {9: {Top: model.OffDuty, Bottom: model.OffDuty}},
		},
	}

	// Top preferred when free
	row, err := ResolveGiveSlot(doc, "free-top", 9)
	require.NoError(t, err)
	assert.Equal(t, model.RowTop, row)

	row, err = ResolveGiveSlot(doc, "off-and-off", 9)
	require.NoError(t, err)
	assert.Equal(t, model.RowTop, row)

	// Bottom when only the bottom is free
	row, err = ResolveGiveSlot(doc, "busy-top", 9)
	require.NoError(t, err)
	assert.Equal(t, model.RowBottom, row)

	// A member the document has never seen is fully free
	row, err = ResolveGiveSlot(doc, "unknown", 9)
	require.NoError(t, err)
	assert.Equal(t, model.RowTop, row)

	// No free slot at all
	_, err = ResolveGiveSlot(doc, "full", 9)
	assert.ErrorIs(t, err, ErrNoAvailableSlot)
}

func TestDateHelpers(t *testing.T) {
	monthKey, err := MonthKeyOf("2025-09-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-09", monthKey)

	dayIndex, err := DayIndexOf("2025-09-10")
	require.NoError(t, err)
	assert.Equal(t, 9, dayIndex)

	dayIndex, err = DayIndexOf("2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, 0, dayIndex)

	_, err = MonthKeyOf("10/09/2025")
	assert.Error(t, err)
}
