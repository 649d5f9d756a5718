package testhelpers

import (
	"time"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// PastVisitSlot returns a date and clock value that lies `ago` in the past
// in loc, so a visit accepted for it has already ended.
func (h *TestHelper) PastVisitSlot(loc *time.Location, ago time.Duration) (string, string) {
	t := time.Now().In(loc).Add(-ago)
	return t.Format(models.VisitDateLayout), t.Format(models.VisitTimeLayout)
}

// FutureVisitSlot is PastVisitSlot for a slot that has not started yet.
func (h *TestHelper) FutureVisitSlot(loc *time.Location, ahead time.Duration) (string, string) {
	t := time.Now().In(loc).Add(ahead)
	return t.Format(models.VisitDateLayout), t.Format(models.VisitTimeLayout)
}
