package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"

	shared_utils "github.com/arrienda/mono-repo/backend/shared/go-utils"
)

var (
	colombia = cal.NewBusinessCalendar()
	rentZone = loadRentZone()
)

func init() {
	colombia.AddHoliday(
		fixed("Año Nuevo", time.January, 1),
		moved("Reyes Magos", time.January, 6),
		moved("San José", time.March, 19),
		easter("Jueves Santo", -3),
		easter("Viernes Santo", -2),
		fixed("Día del Trabajo", time.May, 1),
		easter("Ascensión del Señor", 43),
		easter("Corpus Christi", 64),
		easter("Sagrado Corazón", 71),
		moved("San Pedro y San Pablo", time.June, 29),
		fixed("Grito de Independencia", time.July, 20),
		fixed("Batalla de Boyacá", time.August, 7),
		moved("Asunción de la Virgen", time.August, 15),
		moved("Día de la Raza", time.October, 12),
		moved("Todos los Santos", time.November, 1),
		moved("Independencia de Cartagena", time.November, 11),
		fixed("Inmaculada Concepción", time.December, 8),
		fixed("Navidad", time.December, 25),
	)
}

func loadRentZone() *time.Location {
	loc, err := time.LoadLocation(shared_utils.DefaultReferenceTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func fixed(name string, m time.Month, d int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: m, Day: d, Func: cal.CalcDayOfMonth}
}

func easter(name string, offset int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Offset: offset, Func: cal.CalcEasterOffset}
}

// moved holidays are observed on the following Monday unless they already
// fall on one.
func moved(name string, m time.Month, d int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: m, Day: d, Func: calcNextMonday}
}

func calcNextMonday(h *cal.Holiday, year int) time.Time {
	t := time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// IsRentBusinessDay reports whether day is neither a weekend nor a
// Colombian public holiday.
func IsRentBusinessDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	actual, _, _ := colombia.IsHoliday(day)
	return !actual
}

// NextRentDue returns the next date rent is due on a lease running from
// start to end, on or after the calendar day of now. The payment day is
// clamped to short months and rolled forward past weekends and holidays.
// ok is false once the lease has no due dates left.
func NextRentDue(start, end time.Time, paymentDay int, now time.Time) (due time.Time, ok bool) {
	if paymentDay < 1 {
		return time.Time{}, false
	}
	today := civilDate(now.In(rentZone))
	start, end = civilDate(start), civilDate(end)

	from := today
	if start.After(from) {
		from = start
	}
	for i := 0; i < 13; i++ {
		month := time.Date(from.Year(), from.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		due = rollToBusinessDay(clampDay(month, paymentDay))
		if due.Before(from) {
			continue
		}
		if due.After(end) {
			return time.Time{}, false
		}
		return due, true
	}
	return time.Time{}, false
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clampDay(month time.Time, day int) time.Time {
	last := month.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

func rollToBusinessDay(t time.Time) time.Time {
	for !IsRentBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
