package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/core/model"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// mockStore implements a test double for cache.ShiftStore
type mockStore struct {
	records []model.ShiftRecord
	saved   [][]model.ShiftRecord
	loadErr error
	saveErr error
}

func (m *mockStore) Load() ([]model.ShiftRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records, nil
}

func (m *mockStore) Save(records []model.ShiftRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, records)
	m.records = records
	return nil
}

// mockUsers implements a test double for cache.UserStore
type mockUsers struct {
	bound   map[string]string
	bindErr error
}

func (m *mockUsers) Bind(handle, fullName string) error {
	if m.bindErr != nil {
		return m.bindErr
	}
	if m.bound == nil {
		m.bound = map[string]string{}
	}
	m.bound[handle] = fullName
	return nil
}

func (m *mockUsers) Lookup(handle string) (string, bool) {
	name, ok := m.bound[handle]
	return name, ok
}

// mockFetcher implements a test double for portalclient.Fetcher
type mockFetcher struct {
	records []model.ShiftRecord
	err     error
	calls   int
}

func (m *mockFetcher) FetchShifts(ctx context.Context, filterName string) ([]model.ShiftRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// 9 June 2025 is a Monday
var testRef = time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)

func rec(name, date, start, end, role string) model.ShiftRecord {
	return model.ShiftRecord{StaffName: name, DateLabel: date, Start: start, End: end, Role: role}
}

func TestFree_ScenarioWorkingAndFree(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Bob", "Wed 11 Jun", "10:00", "18:00", "Ushering"),
	}}

	result, err := Free(context.Background(), store, zap.NewNop(), FreeQuery{Days: "Monday"}, testRef)
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	day := result.Days[0]
	require.Len(t, day.Working, 1)
	assert.Equal(t, "Alice", day.Working[0].Name)
	assert.Equal(t, "09:00", schedule.ClockString(day.Working[0].Start))
	assert.Equal(t, "17:00", schedule.ClockString(day.Working[0].End))
	assert.Equal(t, []string{"Bob"}, day.Free)
}

func TestFree_RequiresAFilter(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB"),
	}}

	_, err := Free(context.Background(), store, zap.NewNop(), FreeQuery{}, testRef)
	assert.ErrorIs(t, err, ErrNoFilter)
}

func TestFree_EmptyCacheIsNoData(t *testing.T) {
	_, err := Free(context.Background(), &mockStore{}, zap.NewNop(), FreeQuery{Names: "Alice"}, testRef)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRota_DefaultsToToday(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Bob", "Tue 10 Jun", "10:00", "18:00", "Ushering"),
	}}

	result, err := Rota(context.Background(), store, zap.NewNop(), RotaQuery{}, testRef)
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	assert.Equal(t, 9, result.Days[0].Date.Day())
}

func TestRota_GroupsByCategoryInOrder(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Carol", "Mon 09 Jun", "08:00", "16:00", "FAB Kitchen Assistant"),
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "Duty Manager"),
		rec("Bob", "Mon 09 Jun", "10:00", "18:00", "Ushering"),
	}}

	result, err := Rota(context.Background(), store, zap.NewNop(), RotaQuery{Day: "today"}, testRef)
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	sections := result.Days[0].Sections
	require.Len(t, sections, 3)
	assert.Equal(t, schedule.CategoryManagers, sections[0].Category)
	assert.Equal(t, schedule.CategoryFloor, sections[1].Category)
	assert.Equal(t, schedule.CategoryFAB, sections[2].Category)
}

func TestRota_MultiRoleFilter(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Bob", "Mon 09 Jun", "10:00", "18:00", "Ushering"),
		rec("Carol", "Mon 09 Jun", "11:00", "19:00", "Duty Manager"),
	}}

	result, err := Rota(context.Background(), store, zap.NewNop(), RotaQuery{Role: "fab serving, ushering"}, testRef)
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	var names []string
	for _, section := range result.Days[0].Sections {
		for _, line := range section.Lines {
			names = append(names, line.Name)
		}
	}
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, names)
}

func TestRota_NoMatchesIsEmptyNotError(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB"),
	}}

	result, err := Rota(context.Background(), store, zap.NewNop(), RotaQuery{Name: "nobody"}, testRef)
	require.NoError(t, err)
	assert.Empty(t, result.Days)
}

func TestSwap_ResolvesAndFindsCandidates(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Tue 10 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Dave", "Fri 13 Jun", "09:00", "17:00", "FAB Serving"),
	}}

	result, err := Swap(context.Background(), store, zap.NewNop(),
		schedule.SwapFilters{Name: "alice"}, schedule.DefaultRestThreshold, testRef)
	require.NoError(t, err)

	assert.Equal(t, "Alice", result.Target.Name)
	assert.Equal(t, []string{"Dave"}, result.Candidates)
}

func TestSwap_AmbiguousFilters(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Tue 10 Jun", "09:00", "17:00", "FAB Serving"),
		rec("Bob", "Tue 10 Jun", "12:00", "20:00", "FAB Serving"),
	}}

	_, err := Swap(context.Background(), store, zap.NewNop(),
		schedule.SwapFilters{Day: "10 Jun", Role: "FAB Serving"}, schedule.DefaultRestThreshold, testRef)
	assert.ErrorIs(t, err, schedule.ErrAmbiguous)
}

func TestSwap_EmptyCacheIsNoData(t *testing.T) {
	_, err := Swap(context.Background(), &mockStore{}, zap.NewNop(),
		schedule.SwapFilters{Name: "alice"}, schedule.DefaultRestThreshold, testRef)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSharedFree_EmptyCacheIsNoData(t *testing.T) {
	_, err := SharedFree(context.Background(), &mockStore{}, zap.NewNop(), "", schedule.DefaultWindow(), testRef)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSharedFree_ReportsBlocks(t *testing.T) {
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "12:00", "FAB"),
	}}

	days, err := SharedFree(context.Background(), store, zap.NewNop(), "Alice", schedule.DefaultWindow(), testRef)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Blocks, 1)
	assert.Equal(t, 12*60, days[0].Blocks[0].Start)
}

func TestRefresh_SavesFetchedRecords(t *testing.T) {
	fetcher := &mockFetcher{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB"),
	}}
	store := &mockStore{}

	count, err := Refresh(context.Background(), fetcher, store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, store.saved, 1)
}

func TestRefresh_FetchFailureLeavesCacheUntouched(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("login failed")}
	store := &mockStore{records: []model.ShiftRecord{
		rec("Alice", "Mon 09 Jun", "09:00", "17:00", "FAB"),
	}}

	_, err := Refresh(context.Background(), fetcher, store, zap.NewNop())
	require.Error(t, err)
	assert.Empty(t, store.saved, "a failed fetch must not overwrite the cache")
	assert.Len(t, store.records, 1)
}

func TestIdentify_BindsNormalizedName(t *testing.T) {
	users := &mockUsers{}

	bound, err := Identify(context.Background(), users, zap.NewNop(), "123", "  alice SMITH ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", bound)
	assert.Equal(t, "Alice Smith", users.bound["123"])
}

func TestIdentify_RejectsEmptyName(t *testing.T) {
	_, err := Identify(context.Background(), &mockUsers{}, zap.NewNop(), "123", "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestResolveHandle(t *testing.T) {
	users := &mockUsers{bound: map[string]string{"123": "Alice Smith"}}
	assert.Equal(t, "Alice Smith", ResolveHandle(users, "123"))
	assert.Equal(t, "456", ResolveHandle(users, " 456 "))
}
