package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/core/model"
)

func rec(name, date, start, end, role string) model.ShiftRecord {
	return model.ShiftRecord{StaffName: name, DateLabel: date, Start: start, End: end, Role: role}
}

func TestNewSnapshot_SkipsInvalidRecords(t *testing.T) {
	records := []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Bob", "not a date", "09:00", "17:00", "FAB Serving"),
		rec("Carol", "Tue 10 Jun", "9am", "17:00", "Ushering"),
		rec("", "Mon 09 Jun", "09:00", "17:00", "Ushering"),
	}

	snap := NewSnapshot(records, ref, zap.NewNop())

	assert.Equal(t, 3, snap.Skipped())
	assert.Equal(t, []string{"Alice"}, snap.Names())
	require.Len(t, snap.Dates(), 1)
	assert.Len(t, snap.ShiftsFor("alice", snap.Dates()[0]), 1)
}

func TestNewSnapshot_GroupsCaseInsensitively(t *testing.T) {
	records := []model.ShiftRecord{
		rec("alice smith", "Mon 09 Jun", "09:00", "12:00", "FAB Serving"),
		rec("ALICE SMITH", "Mon 09 Jun", "13:00", "17:00", "Ushering"),
	}

	snap := NewSnapshot(records, ref, zap.NewNop())

	assert.Equal(t, []string{"Alice Smith"}, snap.Names())
	shifts := snap.ShiftsFor("Alice Smith", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC))
	require.Len(t, shifts, 2)
	// Input order is the stable first-shift tie-break
	assert.Equal(t, 9*60, shifts[0].Start)
}

func TestNewSnapshot_DatesAscending(t *testing.T) {
	records := []model.ShiftRecord{
		rec("Alice", "Wed 11 Jun", "09:00", "17:00", "FAB"),
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB"),
		rec("Bob", "Tue 10 Jun", "09:00", "17:00", "FAB"),
	}

	snap := NewSnapshot(records, ref, zap.NewNop())

	dates := snap.Dates()
	require.Len(t, dates, 3)
	assert.True(t, dates[0].Before(dates[1]))
	assert.True(t, dates[1].Before(dates[2]))
}

func TestNewSnapshot_Empty(t *testing.T) {
	assert.True(t, NewSnapshot(nil, ref, zap.NewNop()).Empty())
	assert.True(t, NewSnapshot([]model.ShiftRecord{rec("A", "junk", "x", "y", "")}, ref, zap.NewNop()).Empty())
	assert.False(t, NewSnapshot([]model.ShiftRecord{rec("A", "09 Jun", "09:00", "17:00", "")}, ref, zap.NewNop()).Empty())
}

func TestShiftType_Default(t *testing.T) {
	assert.Equal(t, "Shift", model.ShiftRecord{}.ShiftType())
	assert.Equal(t, "Overtime", model.ShiftRecord{Type: "Overtime"}.ShiftType())
}
