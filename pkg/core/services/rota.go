package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// RotaQuery filters the rota listing. All fields optional; a fully empty
// query means "today, everyone, every role".
type RotaQuery struct {
	Name string
	Day  string
	Role string
}

// RotaLine is one shift as displayed in a rota listing.
type RotaLine struct {
	Name  string
	Start string
	End   string
	Role  string
}

// RotaSection groups a day's shifts under one role category.
type RotaSection struct {
	Category schedule.Category
	Lines    []RotaLine
}

// DayRota is one calendar date's shifts, grouped by role category in the
// fixed Managers/Floor/FAB/Other order.
type DayRota struct {
	Date     time.Time
	Sections []RotaSection
}

// RotaResult is the full rota listing for a query.
type RotaResult struct {
	Days []DayRota
}

var categoryOrder = []schedule.Category{
	schedule.CategoryManagers,
	schedule.CategoryFloor,
	schedule.CategoryFAB,
	schedule.CategoryOther,
}

// Rota lists shifts matching the query, grouped per day and role category.
// With no filters at all it shows today only.
func Rota(ctx context.Context, store cache.ShiftStore, logger *zap.Logger, query RotaQuery, ref time.Time) (*RotaResult, error) {
	snap, err := loadSnapshot(store, logger, ref)
	if err != nil {
		return nil, err
	}

	logger.Info("rota query",
		zap.String("name", query.Name),
		zap.String("day", query.Day),
		zap.String("role", query.Role))

	day := query.Day
	if query.Name == "" && query.Day == "" && query.Role == "" {
		day = "today"
	}

	nameFilters := lowered(schedule.SplitMultiField(query.Name))
	roleFilters := lowered(schedule.SplitMultiField(query.Role))

	var dayDate time.Time
	daySubstring := ""
	if day != "" {
		if d, ok := schedule.ResolveDayWord(day, ref); ok {
			dayDate = d
		} else {
			daySubstring = strings.ToLower(day)
		}
	}

	byDate := make(map[time.Time]map[schedule.Category][]RotaLine)
	var dates []time.Time
	for _, name := range snap.Names() {
		if len(nameFilters) > 0 && !containsAny(name, nameFilters) {
			continue
		}
		for _, date := range snap.Dates() {
			if !dayDate.IsZero() && !date.Equal(dayDate) {
				continue
			}
			for _, sh := range snap.ShiftsFor(name, date) {
				if daySubstring != "" && !strings.Contains(strings.ToLower(sh.Record.DateLabel), daySubstring) {
					continue
				}
				if len(roleFilters) > 0 && !containsAny(sh.Role, roleFilters) {
					continue
				}
				if byDate[date] == nil {
					byDate[date] = make(map[schedule.Category][]RotaLine)
					dates = append(dates, date)
				}
				cat := schedule.ClassifyRole(sh.Role, schedule.DefaultCategoryRules)
				byDate[date][cat] = append(byDate[date][cat], RotaLine{
					Name:  name,
					Start: sh.Record.Start,
					End:   sh.Record.End,
					Role:  sh.Role,
				})
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	result := &RotaResult{}
	for _, date := range dates {
		day := DayRota{Date: date}
		for _, cat := range categoryOrder {
			if lines := byDate[date][cat]; len(lines) > 0 {
				day.Sections = append(day.Sections, RotaSection{Category: cat, Lines: lines})
			}
		}
		result.Days = append(result.Days, day)
	}

	logger.Info("rota query complete", zap.Int("days", len(result.Days)))
	return result, nil
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func containsAny(s string, filters []string) bool {
	s = strings.ToLower(s)
	for _, f := range filters {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
