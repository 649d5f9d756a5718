package models

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentalRequestTransitions(t *testing.T) {
	allowed := map[RentalRequestStatus][]RentalRequestStatus{
		RentalRequestPending:         {RentalRequestAccepted, RentalRequestRejected, RentalRequestCounterProposed},
		RentalRequestCounterProposed: {RentalRequestAccepted, RentalRequestRejected, RentalRequestCounterProposed},
		RentalRequestAccepted:        {RentalRequestRejected, RentalRequestVisitCompleted, RentalRequestContractSent},
		RentalRequestVisitCompleted:  {RentalRequestRejected, RentalRequestContractSent},
		RentalRequestRejected:        {},
		RentalRequestContractSent:    {},
	}
	all := []RentalRequestStatus{
		RentalRequestPending, RentalRequestAccepted, RentalRequestRejected,
		RentalRequestCounterProposed, RentalRequestVisitCompleted, RentalRequestContractSent,
	}

	for from, targets := range allowed {
		for _, to := range all {
			want := false
			for _, ok := range targets {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, RentalRequestRejected.IsTerminal())
	assert.True(t, RentalRequestContractSent.IsTerminal())
	assert.False(t, RentalRequestAccepted.IsTerminal())

	assert.True(t, RentalRequestCounterProposed.IsActive())
	assert.False(t, RentalRequestVisitCompleted.IsActive())
	assert.False(t, RentalRequestStatus("cancelled").Valid())
}

func TestScheduleVisitUsesReferenceZone(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	r := &RentalRequest{
		RequestedDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		RequestedTime: "14:00",
	}
	require.NoError(t, r.ScheduleVisit(bogota, time.Minute))
	require.NotNil(t, r.VisitEndTime)
	assert.Equal(t, "2025-06-02T14:01:00-05:00", r.VisitEndTime.Format(time.RFC3339))
	assert.Equal(t, "2025-06-02T19:01:00Z", r.VisitEndTime.UTC().Format(time.RFC3339))

	r.RequestedTime = "2pm"
	assert.Error(t, r.ScheduleVisit(bogota, time.Minute))
}

func TestPromoteCounter(t *testing.T) {
	counterDate := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	counterTime := "10:30"
	r := &RentalRequest{
		ID:            uuid.New(),
		RequestedDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		RequestedTime: "14:00",
		CounterDate:   &counterDate,
		CounterTime:   &counterTime,
	}

	require.NoError(t, r.PromoteCounter())
	assert.Equal(t, counterDate, r.RequestedDate)
	assert.Equal(t, "10:30", r.RequestedTime)
	assert.Nil(t, r.CounterDate)
	assert.Nil(t, r.CounterTime)

	assert.Error(t, r.PromoteCounter())
}

func TestRentalRequestParties(t *testing.T) {
	tenant, owner := uuid.New(), uuid.New()
	r := &RentalRequest{TenantID: tenant, OwnerID: owner}

	assert.True(t, r.IsParty(tenant))
	assert.True(t, r.IsParty(owner))
	assert.False(t, r.IsParty(uuid.New()))
	assert.Equal(t, owner, r.Counterpart(tenant))
	assert.Equal(t, tenant, r.Counterpart(owner))
}
