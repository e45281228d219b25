// Package schedule holds the date generation and read-only summaries of debt
// and paluwagan schedules. Nothing here touches the store.
package schedule

import (
	"math"
	"time"

	"github.com/Dan9191/family-ledger/internal/models"
)

// DueSoonDays is the window in which an unpaid entry counts as due soon.
const DueSoonDays = 7

// Status classifies a schedule against today's date.
type Status string

const (
	PaidOff Status = "paid_off"
	Overdue Status = "overdue"
	DueSoon Status = "due_soon"
	OnTrack Status = "on_track"
)

// Weekly returns n dates seven days apart starting at first.
func Weekly(first models.Date, n int) []models.Date {
	dates := make([]models.Date, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, first.AddDays(7*i))
	}
	return dates
}

// FirstSunday returns d when it is a Sunday, otherwise the next Sunday.
func FirstSunday(d models.Date) models.Date {
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDays(offset)
}

// PayoutDates returns n successive Sundays beginning with the first Sunday on
// or after start.
func PayoutDates(start models.Date, n int) []models.Date {
	return Weekly(FirstSunday(start), n)
}

// Classify derives the status from the due dates that are still unpaid.
func Classify(today models.Date, unpaid []models.Date) Status {
	next, ok := Earliest(unpaid)
	if !ok {
		return PaidOff
	}
	if next.Before(today) {
		return Overdue
	}
	if today.DaysUntil(next) <= DueSoonDays {
		return DueSoon
	}
	return OnTrack
}

// Earliest returns the minimum date; ok is false for an empty slice.
func Earliest(dates []models.Date) (models.Date, bool) {
	if len(dates) == 0 {
		return models.Date{}, false
	}
	earliest := dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest, true
}

// Progress is round(100 * paid / total), clamped to [0, 100]. An empty
// schedule has no progress.
func Progress(paid, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(paid) / float64(total)))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) models.Date {
	if loc == nil {
		loc = time.UTC
	}
	return models.NewDate(now.In(loc))
}
