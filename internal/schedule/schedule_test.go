package schedule

import (
	"testing"
	"time"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/shopspring/decimal"
)

func d(s string) models.Date {
	return models.MustParseDate(s)
}

func TestWeekly(t *testing.T) {
	dates := Weekly(d("2026-01-01"), 4)
	want := []string{"2026-01-01", "2026-01-08", "2026-01-15", "2026-01-22"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i, w := range want {
		if dates[i].String() != w {
			t.Errorf("date %d = %s, want %s", i, dates[i], w)
		}
	}
}

func TestPayoutDatesStartOnSunday(t *testing.T) {
	tests := []struct {
		start string
		first string
	}{
		{"2026-10-11", "2026-10-11"}, // Sunday
		{"2026-10-12", "2026-10-18"}, // Monday
		{"2026-10-17", "2026-10-18"}, // Saturday
	}
	for _, tt := range tests {
		dates := PayoutDates(d(tt.start), 3)
		if dates[0].String() != tt.first {
			t.Errorf("PayoutDates(%s)[0] = %s, want %s", tt.start, dates[0], tt.first)
		}
		for i, date := range dates {
			if date.Weekday() != time.Sunday {
				t.Errorf("PayoutDates(%s)[%d] = %s is a %s", tt.start, i, date, date.Weekday())
			}
		}
		if dates[2].String() != d(tt.first).AddDays(14).String() {
			t.Errorf("PayoutDates(%s) are not successive Sundays: %v", tt.start, dates)
		}
	}
}

func TestClassify(t *testing.T) {
	today := d("2026-10-15")
	tests := []struct {
		name   string
		unpaid []models.Date
		want   Status
	}{
		{"nothing unpaid", nil, PaidOff},
		{"past due", []models.Date{d("2026-10-30"), d("2026-10-14")}, Overdue},
		{"due today", []models.Date{d("2026-10-15")}, DueSoon},
		{"due in seven days", []models.Date{d("2026-10-22")}, DueSoon},
		{"due in eight days", []models.Date{d("2026-10-23")}, OnTrack},
	}
	for _, tt := range tests {
		if got := Classify(today, tt.unpaid); got != tt.want {
			t.Errorf("%s: Classify = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		paid, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{4, 4, 100},
		{5, 4, 100},
	}
	for _, tt := range tests {
		if got := Progress(tt.paid, tt.total); got != tt.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tt.paid, tt.total, got, tt.want)
		}
	}
}

func TestSummarizeDebt(t *testing.T) {
	debt := &models.Debt{
		PaymentSchedule: []models.PaymentSchedule{
			{DueDate: d("2026-10-01"), Amount: decimal.NewFromInt(250), IsPaid: true},
			{DueDate: d("2026-10-08"), Amount: decimal.NewFromInt(250), IsPaid: true},
			{DueDate: d("2026-10-22"), Amount: decimal.NewFromInt(250)},
			{DueDate: d("2026-10-15"), Amount: decimal.NewFromInt(250)},
		},
	}
	s := SummarizeDebt(debt, d("2026-10-15"))

	if !s.Remaining.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Remaining = %s, want 500", s.Remaining)
	}
	if s.NextDueDate == nil || s.NextDueDate.String() != "2026-10-15" {
		t.Errorf("NextDueDate = %v, want 2026-10-15", s.NextDueDate)
	}
	if s.Status != DueSoon {
		t.Errorf("Status = %s, want due_soon", s.Status)
	}
	if s.Progress != 50 {
		t.Errorf("Progress = %d, want 50", s.Progress)
	}
}

func TestSummarizePaluwagan(t *testing.T) {
	p := &models.Paluwagan{
		AmountPerNumber: decimal.NewFromInt(500),
		PayoutPerNumber: decimal.NewFromInt(2000),
		TotalNumbers:    4,
		Numbers: []models.PaluwaganNumber{
			{Number: 1, PayoutDate: d("2026-10-04"), IsOwner: true, IsPaid: true},
			{Number: 2, PayoutDate: d("2026-10-11"), IsOwner: true},
			{Number: 3, PayoutDate: d("2026-10-18")},
			{Number: 4, PayoutDate: d("2026-10-25"), IsOwner: true},
		},
		WeeklyPayments: []models.WeeklyPayment{
			{WeekNumber: 1, DueDate: d("2026-10-04"), Amount: decimal.NewFromInt(1500), IsPaid: true},
			{WeekNumber: 2, DueDate: d("2026-10-11"), Amount: decimal.NewFromInt(1500), IsPaid: true},
			{WeekNumber: 3, DueDate: d("2026-10-18"), Amount: decimal.NewFromInt(1500)},
			{WeekNumber: 4, DueDate: d("2026-10-25"), Amount: decimal.NewFromInt(1500)},
		},
	}
	s := SummarizePaluwagan(p, d("2026-10-15"))

	if !s.NetPosition.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("NetPosition = %s, want -1000", s.NetPosition)
	}
	if s.OwnedNumbers != 3 || s.PayoutsReceived != 1 {
		t.Errorf("owned/received = %d/%d, want 3/1", s.OwnedNumbers, s.PayoutsReceived)
	}
	if len(s.AvailablePayouts) != 1 || s.AvailablePayouts[0] != 2 {
		t.Errorf("AvailablePayouts = %v, want [2]", s.AvailablePayouts)
	}
	if s.NextPayoutDate == nil || s.NextPayoutDate.String() != "2026-10-25" {
		t.Errorf("NextPayoutDate = %v, want 2026-10-25", s.NextPayoutDate)
	}
	if s.Status != DueSoon || s.Progress != 50 {
		t.Errorf("Status/Progress = %s/%d, want due_soon/50", s.Status, s.Progress)
	}
}

func TestToday(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	// 20:00 UTC is already the next day in Manila
	now := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)
	if got := Today(now, manila).String(); got != "2026-10-15" {
		t.Errorf("Today = %s, want 2026-10-15", got)
	}
}
