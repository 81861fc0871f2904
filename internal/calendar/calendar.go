package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

const dateLayout = "2006-01-02"

// Calendar 节假日日历（构造后只读）
type Calendar struct {
	holidays map[string]struct{}
}

// New 由节假日列表创建日历
func New(holidays []time.Time) *Calendar {
	return &Calendar{
		holidays: lo.SliceToMap(holidays, func(d time.Time) (string, struct{}) {
			return d.Format(dateLayout), struct{}{}
		}),
	}
}

// Parse 解析 "YYYY-MM-DD" 格式的节假日列表
func Parse(dates []string) (*Calendar, error) {
	holidays := make([]time.Time, 0, len(dates))
	for _, s := range dates {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", s, err)
		}
		holidays = append(holidays, d)
	}
	return New(holidays), nil
}

// HolidayCount 节假日数量
func (c *Calendar) HolidayCount() int {
	return len(c.holidays)
}

// IsHoliday 是否节假日
func (c *Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[d.Format(dateLayout)]
	return ok
}

// Classify 周六、周日或节假日为 Weekend，其余为 Weekday
func (c *Calendar) Classify(d time.Time) model.DayType {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return model.Weekend
	}
	if c.IsHoliday(d) {
		return model.Weekend
	}
	return model.Weekday
}

// DaysInMonth 当月天数
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RemainingDayCounts 统计 latest 次日至月末（含）的平日 / 周末天数
func (c *Calendar) RemainingDayCounts(latest time.Time) (weekdays, weekends int) {
	year, month, day := latest.Date()
	last := DaysInMonth(year, month)
	for d := day + 1; d <= last; d++ {
		if c.Classify(time.Date(year, month, d, 0, 0, 0, 0, time.UTC)) == model.Weekend {
			weekends++
		} else {
			weekdays++
		}
	}
	return weekdays, weekends
}

// NewMonthContext 由数据中最新订单日推导当月上下文；数据为空时以 now 为准，剩余天数均为 0
func (c *Calendar) NewMonthContext(records []model.Record, now time.Time) model.MonthContext {
	if len(records) == 0 {
		return model.MonthContext{
			Year:            now.Year(),
			Month:           int(now.Month()),
			LatestDate:      dateOnly(now),
			LastObservedDay: now.Day(),
			DaysInMonth:     DaysInMonth(now.Year(), now.Month()),
		}
	}

	latest := lo.MaxBy(records, func(a, b model.Record) bool {
		return a.OrderDate.After(b.OrderDate)
	}).OrderDate
	latest = dateOnly(latest)

	weekdays, weekends := c.RemainingDayCounts(latest)
	return model.MonthContext{
		Year:              latest.Year(),
		Month:             int(latest.Month()),
		LatestDate:        latest,
		LastObservedDay:   latest.Day(),
		DaysInMonth:       DaysInMonth(latest.Year(), latest.Month()),
		RemainingWeekdays: weekdays,
		RemainingWeekends: weekends,
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
