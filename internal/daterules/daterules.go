package daterules

import (
	"errors"
	"time"
)

// CycleLength is the fixed billing period used when rolling a payment
// obligation forward. The schedule is calendar-day based, not month based.
const CycleLength = 30 * 24 * time.Hour

// CriticalWindowDays is how close to a due date a pending payment is
// considered critical.
const CriticalWindowDays = 30

var ErrInvalidDate = errors.New("invalid_date")

// PaymentState classifies a payment obligation relative to a reference date.
type PaymentState string

const (
	PaymentStatePaid     PaymentState = "PAID"
	PaymentStateOverdue  PaymentState = "OVERDUE"
	PaymentStateCritical PaymentState = "CRITICAL"
	PaymentStateOK       PaymentState = "OK"
)

// FirstDueDate computes the first due date for a new contract. The due date
// takes the contract start month with the day set to paymentDay, clamped to
// the last valid day of short months. When paymentDay has already elapsed
// relative to today's day of month, the due date rolls to the following
// month, including the December to January year rollover.
func FirstDueDate(contractStart time.Time, paymentDay int, today time.Time) (time.Time, error) {
	if contractStart.IsZero() || today.IsZero() {
		return time.Time{}, ErrInvalidDate
	}
	if paymentDay < 1 || paymentDay > 31 {
		return time.Time{}, ErrInvalidDate
	}

	year, month := contractStart.Year(), contractStart.Month()
	due := dateWithClampedDay(year, month, paymentDay, contractStart.Location())

	if due.Day() < today.Day() {
		year, month = nextMonth(year, month)
		due = dateWithClampedDay(year, month, paymentDay, contractStart.Location())
	}

	if due.Before(truncateToDay(contractStart)) {
		year, month = nextMonth(due.Year(), due.Month())
		due = dateWithClampedDay(year, month, paymentDay, contractStart.Location())
	}
	return due, nil
}

// NextDueDate advances a due date by one fixed billing cycle.
func NextDueDate(prev time.Time) time.Time {
	return prev.Add(CycleLength)
}

// Classify derives the payment state from the stored record fields and a
// reference date. Every reporting and monitoring surface uses this one
// classification.
func Classify(paid bool, dueDate, asOf time.Time) PaymentState {
	if paid {
		return PaymentStatePaid
	}
	due := truncateToDay(dueDate)
	ref := truncateToDay(asOf)
	if due.Before(ref) {
		return PaymentStateOverdue
	}
	if DaysBetween(ref, due) <= CriticalWindowDays {
		return PaymentStateCritical
	}
	return PaymentStateOK
}

// DaysBetween returns whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24)
}

func dateWithClampedDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
