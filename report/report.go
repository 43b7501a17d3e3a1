// Package report 把借还记录聚合成仪表盘用的时间序列。
// 纯计算，不碰存储：db 层给一段区间内的记录，这里只做分桶。
package report

import (
	"fmt"
	"time"
)

type Mode string

const (
	ModeDay          Mode = "day"
	ModeTimeOfDay    Mode = "time_of_day"
	ModeTimeOfDayAvg Mode = "time_of_day_avg"
	ModeWeekday      Mode = "weekday"
	ModeWeekdayAvg   Mode = "weekday_avg"
	ModeMonthDay     Mode = "monthday"
	ModeMonthDayAvg  Mode = "monthday_avg"
)

// LoanTimes 一条借还记录里报表关心的三个时间
type LoanTimes struct {
	CheckedOutAt time.Time
	DueAt        *time.Time
	ReturnedAt   *time.Time
}

type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type OverdueSplit struct {
	OnTime int64 `json:"onTime"`
	Late   int64 `json:"late"`
}

type Result struct {
	Overdue   OverdueSplit `json:"overdue"`
	Checkouts Series       `json:"checkouts"`
	Returns   Series       `json:"returns"`
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Build 汇总 [start, end]（含两端，按日历日）内的记录。
// 空桶也要出现在序列里，值为 0，不允许静默跳过。
func Build(loans []LoanTimes, start, end time.Time, mode Mode) (Result, error) {
	switch mode {
	case ModeDay, ModeTimeOfDay, ModeTimeOfDayAvg, ModeWeekday, ModeWeekdayAvg, ModeMonthDay, ModeMonthDayAvg:
	default:
		return Result{}, fmt.Errorf("unknown report mode %q", mode)
	}

	checkoutTimes := make([]time.Time, 0, len(loans))
	returnTimes := make([]time.Time, 0, len(loans))
	var split OverdueSplit
	for _, l := range loans {
		checkoutTimes = append(checkoutTimes, l.CheckedOutAt)
		if l.ReturnedAt != nil {
			returnTimes = append(returnTimes, *l.ReturnedAt)
			// 逾期统计只看有归还预期的已关闭记录
			if l.DueAt != nil {
				if l.ReturnedAt.After(*l.DueAt) {
					split.Late++
				} else {
					split.OnTime++
				}
			}
		}
	}

	co := bucketize(checkoutTimes, start, end, mode)
	ret := bucketize(returnTimes, start, end, mode)
	padTail(&co, &ret)

	return Result{Overdue: split, Checkouts: co, Returns: ret}, nil
}

// padTail 短的那条序列在尾部补零，标签向长的对齐
func padTail(a, b *Series) {
	if len(a.Data) < len(b.Data) {
		a, b = b, a
	}
	for len(b.Data) < len(a.Data) {
		b.Data = append(b.Data, 0)
	}
	if len(b.Labels) < len(a.Labels) {
		b.Labels = append([]string(nil), a.Labels...)
	}
}

func bucketize(times []time.Time, start, end time.Time, mode Mode) Series {
	days := daysInRange(start, end)

	switch mode {
	case ModeDay:
		labels := make([]string, 0, days)
		index := make(map[string]int, days)
		for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
			index[d.Format("02/01/2006")] = len(labels)
			labels = append(labels, d.Format("02/01/2006"))
		}
		data := make([]float64, len(labels))
		for _, t := range times {
			if i, ok := index[t.Format("02/01/2006")]; ok {
				data[i]++
			}
		}
		return Series{Labels: labels, Data: data}

	case ModeTimeOfDay, ModeTimeOfDayAvg:
		labels := make([]string, 24)
		data := make([]float64, 24)
		for h := 0; h < 24; h++ {
			labels[h] = fmt.Sprintf("%02d:00", h)
		}
		for _, t := range times {
			data[t.Hour()]++
		}
		if mode == ModeTimeOfDayAvg {
			divide(data, float64(days))
		}
		return Series{Labels: labels, Data: data}

	case ModeWeekday, ModeWeekdayAvg:
		labels := append([]string(nil), weekdayLabels...)
		data := make([]float64, 7)
		for _, t := range times {
			// time.Weekday 从周日起算，这里要周一在前
			data[(int(t.Weekday())+6)%7]++
		}
		if mode == ModeWeekdayAvg {
			weeks := float64(days) / 7.0
			if weeks < 1 {
				weeks = 1
			}
			divide(data, weeks)
		}
		return Series{Labels: labels, Data: data}

	case ModeMonthDay, ModeMonthDayAvg:
		labels := make([]string, 31)
		data := make([]float64, 31)
		for d := 1; d <= 31; d++ {
			labels[d-1] = fmt.Sprintf("%d", d)
		}
		for _, t := range times {
			data[t.Day()-1]++
		}
		if mode == ModeMonthDayAvg {
			months := monthsInRange(start, end)
			if months < 1 {
				months = 1
			}
			divide(data, float64(months))
		}
		return Series{Labels: labels, Data: data}
	}
	return Series{}
}

func divide(data []float64, by float64) {
	for i := range data {
		data[i] /= by
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysInRange 含两端的日历天数
func daysInRange(start, end time.Time) int {
	n := int(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
	if n < 1 {
		return 1
	}
	return n
}

// monthsInRange 区间跨过的日历月份数
func monthsInRange(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}
