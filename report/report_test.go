package report

import (
	"testing"
	"time"
)

func ts(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func TestBuildDayZeroFill(t *testing.T) {
	start := ts(2026, time.March, 1, 0)
	end := ts(2026, time.March, 3, 0)
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.March, 1, 9)},
		{CheckedOutAt: ts(2026, time.March, 3, 14)},
		{CheckedOutAt: ts(2026, time.March, 3, 16)},
	}

	res, err := Build(loans, start, end, ModeDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantLabels := []string{"01/03/2026", "02/03/2026", "03/03/2026"}
	if len(res.Checkouts.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", res.Checkouts.Labels, wantLabels)
	}
	for i, l := range wantLabels {
		if res.Checkouts.Labels[i] != l {
			t.Errorf("label[%d] = %q, want %q", i, res.Checkouts.Labels[i], l)
		}
	}
	wantData := []float64{1, 0, 2}
	for i, v := range wantData {
		if res.Checkouts.Data[i] != v {
			t.Errorf("data[%d] = %v, want %v", i, res.Checkouts.Data[i], v)
		}
	}
	// 没有归还也要给全零序列，不能缺桶
	if len(res.Returns.Data) != 3 {
		t.Fatalf("returns len = %d, want 3", len(res.Returns.Data))
	}
	for i, v := range res.Returns.Data {
		if v != 0 {
			t.Errorf("returns[%d] = %v, want 0", i, v)
		}
	}
}

func TestBuildSeriesSameLength(t *testing.T) {
	start := ts(2026, time.January, 1, 0)
	end := ts(2026, time.January, 10, 0)
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.January, 2, 8), ReturnedAt: tp(ts(2026, time.January, 2, 17))},
		{CheckedOutAt: ts(2026, time.January, 5, 8)},
	}
	res, err := Build(loans, start, end, ModeDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Checkouts.Data) != len(res.Returns.Data) {
		t.Errorf("series lengths differ: %d vs %d", len(res.Checkouts.Data), len(res.Returns.Data))
	}
	if len(res.Checkouts.Labels) != len(res.Returns.Labels) {
		t.Errorf("label lengths differ: %d vs %d", len(res.Checkouts.Labels), len(res.Returns.Labels))
	}
}

func TestBuildOverdueSplit(t *testing.T) {
	start := ts(2026, time.May, 1, 0)
	end := ts(2026, time.May, 31, 0)
	loans := []LoanTimes{
		// 按时还
		{
			CheckedOutAt: ts(2026, time.May, 2, 9),
			DueAt:        tp(ts(2026, time.May, 3, 9)),
			ReturnedAt:   tp(ts(2026, time.May, 2, 18)),
		},
		// 逾期还
		{
			CheckedOutAt: ts(2026, time.May, 4, 9),
			DueAt:        tp(ts(2026, time.May, 5, 9)),
			ReturnedAt:   tp(ts(2026, time.May, 6, 9)),
		},
		// 没有归还期限，不进统计
		{
			CheckedOutAt: ts(2026, time.May, 7, 9),
			ReturnedAt:   tp(ts(2026, time.May, 8, 9)),
		},
		// 还没还,不进统计
		{
			CheckedOutAt: ts(2026, time.May, 9, 9),
			DueAt:        tp(ts(2026, time.May, 10, 9)),
		},
	}

	res, err := Build(loans, start, end, ModeDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Overdue.OnTime != 1 {
		t.Errorf("OnTime = %d, want 1", res.Overdue.OnTime)
	}
	if res.Overdue.Late != 1 {
		t.Errorf("Late = %d, want 1", res.Overdue.Late)
	}
}

func TestBuildTimeOfDay(t *testing.T) {
	start := ts(2026, time.June, 1, 0)
	end := ts(2026, time.June, 2, 0) // 两天
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.June, 1, 9)},
		{CheckedOutAt: ts(2026, time.June, 1, 9)},
		{CheckedOutAt: ts(2026, time.June, 2, 9)},
		{CheckedOutAt: ts(2026, time.June, 2, 14)},
	}

	res, err := Build(loans, start, end, ModeTimeOfDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Checkouts.Labels) != 24 {
		t.Fatalf("labels len = %d, want 24", len(res.Checkouts.Labels))
	}
	if res.Checkouts.Labels[9] != "09:00" {
		t.Errorf("label[9] = %q, want 09:00", res.Checkouts.Labels[9])
	}
	if res.Checkouts.Data[9] != 3 {
		t.Errorf("data[09:00] = %v, want 3", res.Checkouts.Data[9])
	}

	avg, err := Build(loans, start, end, ModeTimeOfDayAvg)
	if err != nil {
		t.Fatalf("Build avg: %v", err)
	}
	if avg.Checkouts.Data[9] != 1.5 {
		t.Errorf("avg data[09:00] = %v, want 1.5", avg.Checkouts.Data[9])
	}
	if avg.Checkouts.Data[14] != 0.5 {
		t.Errorf("avg data[14:00] = %v, want 0.5", avg.Checkouts.Data[14])
	}
}

func TestBuildWeekdayMondayFirst(t *testing.T) {
	// 2026-06-01 是周一，2026-06-07 是周日
	start := ts(2026, time.June, 1, 0)
	end := ts(2026, time.June, 7, 0)
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.June, 1, 9)}, // Mon
		{CheckedOutAt: ts(2026, time.June, 7, 9)}, // Sun
	}

	res, err := Build(loans, start, end, ModeWeekday)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Checkouts.Labels[0] != "Mon" || res.Checkouts.Labels[6] != "Sun" {
		t.Fatalf("labels = %v, want Mon..Sun", res.Checkouts.Labels)
	}
	if res.Checkouts.Data[0] != 1 {
		t.Errorf("Mon = %v, want 1", res.Checkouts.Data[0])
	}
	if res.Checkouts.Data[6] != 1 {
		t.Errorf("Sun = %v, want 1", res.Checkouts.Data[6])
	}
}

func TestBuildWeekdayAvgShortRange(t *testing.T) {
	// 不足一周时除数按 1 周算，不放大数值
	start := ts(2026, time.June, 1, 0)
	end := ts(2026, time.June, 3, 0)
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.June, 1, 9)},
		{CheckedOutAt: ts(2026, time.June, 1, 10)},
	}

	res, err := Build(loans, start, end, ModeWeekdayAvg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Checkouts.Data[0] != 2 {
		t.Errorf("Mon avg = %v, want 2", res.Checkouts.Data[0])
	}
}

func TestBuildWeekdayAvgTwoWeeks(t *testing.T) {
	start := ts(2026, time.June, 1, 0)
	end := ts(2026, time.June, 14, 0) // 14 天 = 2 周
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.June, 1, 9)},  // Mon
		{CheckedOutAt: ts(2026, time.June, 8, 9)},  // Mon
		{CheckedOutAt: ts(2026, time.June, 8, 10)}, // Mon
	}

	res, err := Build(loans, start, end, ModeWeekdayAvg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Checkouts.Data[0] != 1.5 {
		t.Errorf("Mon avg = %v, want 1.5", res.Checkouts.Data[0])
	}
}

func TestBuildMonthDayAvg(t *testing.T) {
	// 1月15日~3月10日跨 3 个日历月
	start := ts(2026, time.January, 15, 0)
	end := ts(2026, time.March, 10, 0)
	loans := []LoanTimes{
		{CheckedOutAt: ts(2026, time.January, 20, 9)},
		{CheckedOutAt: ts(2026, time.February, 20, 9)},
		{CheckedOutAt: ts(2026, time.March, 5, 9)},
	}

	res, err := Build(loans, start, end, ModeMonthDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Checkouts.Labels) != 31 {
		t.Fatalf("labels len = %d, want 31", len(res.Checkouts.Labels))
	}
	if res.Checkouts.Labels[0] != "1" || res.Checkouts.Labels[30] != "31" {
		t.Errorf("labels = %v..%v, want 1..31", res.Checkouts.Labels[0], res.Checkouts.Labels[30])
	}
	if res.Checkouts.Data[19] != 2 { // 20 号
		t.Errorf("day 20 = %v, want 2", res.Checkouts.Data[19])
	}

	avg, err := Build(loans, start, end, ModeMonthDayAvg)
	if err != nil {
		t.Fatalf("Build avg: %v", err)
	}
	want := 2.0 / 3.0
	if diff := avg.Checkouts.Data[19] - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("day 20 avg = %v, want %v", avg.Checkouts.Data[19], want)
	}
}

func TestBuildUnknownMode(t *testing.T) {
	_, err := Build(nil, ts(2026, time.June, 1, 0), ts(2026, time.June, 2, 0), Mode("hourly"))
	if err == nil {
		t.Fatal("want error for unknown mode")
	}
}

func TestDaysInRange(t *testing.T) {
	if n := daysInRange(ts(2026, time.June, 1, 0), ts(2026, time.June, 1, 0)); n != 1 {
		t.Errorf("same day = %d, want 1", n)
	}
	if n := daysInRange(ts(2026, time.June, 1, 0), ts(2026, time.June, 30, 0)); n != 30 {
		t.Errorf("june = %d, want 30", n)
	}
}

func TestMonthsInRange(t *testing.T) {
	if n := monthsInRange(ts(2026, time.January, 31, 0), ts(2026, time.February, 1, 0)); n != 2 {
		t.Errorf("jan31-feb1 = %d, want 2", n)
	}
	if n := monthsInRange(ts(2025, time.November, 1, 0), ts(2026, time.February, 1, 0)); n != 4 {
		t.Errorf("nov-feb = %d, want 4", n)
	}
}
