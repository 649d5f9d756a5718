package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	internal_utils "github.com/arrienda/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// RentalRequestService negotiates visit dates between a tenant and the
// property owner.
type RentalRequestService struct {
	requestRepo  repositories.RentalRequestRepository
	propertyRepo repositories.PropertyRepository
	authz        *Authorizer
	outbox       OutboxKicker

	loc           *time.Location
	visitDuration time.Duration
	now           func() time.Time
}

func NewRentalRequestService(
	cfg *config.Config,
	requestRepo repositories.RentalRequestRepository,
	propertyRepo repositories.PropertyRepository,
	authz *Authorizer,
	outbox OutboxKicker,
) *RentalRequestService {
	return &RentalRequestService{
		requestRepo:   requestRepo,
		propertyRepo:  propertyRepo,
		authz:         authz,
		outbox:        outbox,
		loc:           referenceLocation(cfg),
		visitDuration: cfg.VisitDuration,
		now:           time.Now,
	}
}

// ----------------------------------------------------------------
// Create
// ----------------------------------------------------------------

func (s *RentalRequestService) CreateRequest(
	ctx context.Context,
	actor Actor,
	req dtos.CreateRentalRequestRequest,
) (*models.RentalRequest, error) {
	const op = "create_request"

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, validationError("Invalid property_id", map[string]string{"property_id": "must be a UUID"})
	}
	date, clock, fields := parseVisitSlot(req.RequestedDate, req.RequestedTime, "requested_date", "requested_time")
	if len(fields) > 0 {
		return nil, validationError("Invalid visit date or time", fields)
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, internalError("Failed to load property", err)
	}
	if property == nil {
		return nil, notFound("Property not found")
	}
	if property.OwnerID == actor.ID {
		recordRejection(op, internal_utils.ErrCodeOwnPropertyRequest)
		return nil, businessRuleError(internal_utils.ErrCodeOwnPropertyRequest,
			"You cannot request a visit to your own property", internal_utils.ErrOwnPropertyRequest)
	}
	if property.Status != models.PropertyStatusAvailable {
		recordRejection(op, internal_utils.ErrCodePropertyUnavailable)
		return nil, propertyUnavailable()
	}

	existing, err := s.requestRepo.FindActive(ctx, propertyID, actor.ID)
	if err != nil {
		return nil, internalError("Failed to check existing requests", err)
	}
	if existing != nil {
		recordRejection(op, internal_utils.ErrCodeDuplicateActiveRequest)
		return nil, duplicateActiveRequest()
	}

	now := s.now().UTC()
	rr := &models.RentalRequest{
		ID:            uuid.New(),
		PropertyID:    property.ID,
		TenantID:      actor.ID,
		OwnerID:       property.OwnerID,
		RequestedDate: date,
		RequestedTime: clock,
		Message:       utils.NilIfEmpty(req.Message),
		Status:        models.RentalRequestPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	note := models.NewNotification(
		rr.OwnerID,
		models.NotificationRentalRequest,
		"New visit request",
		fmt.Sprintf("A tenant wants to visit %s on %s at %s", property.Title, req.RequestedDate, clock),
		requestData(rr),
	)

	// The property re-check and the active-request index inside Create close
	// the window between the reads above and the insert.
	if err := s.requestRepo.Create(ctx, rr, []*models.Notification{note}); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateActiveRequest):
			recordRejection(op, internal_utils.ErrCodeDuplicateActiveRequest)
			return nil, duplicateActiveRequest()
		case errors.Is(err, repositories.ErrPropertyUnavailable):
			recordRejection(op, internal_utils.ErrCodePropertyUnavailable)
			return nil, propertyUnavailable()
		}
		return nil, internalError("Failed to create rental request", err)
	}

	recordTransition("rental_request", string(rr.Status))
	s.outbox.Kick()
	utils.Logger.WithFields(logrus.Fields{
		"rental_request_id": rr.ID,
		"property_id":       rr.PropertyID,
		"tenant_id":         rr.TenantID,
	}).Info("Rental request created")
	return rr, nil
}

// ----------------------------------------------------------------
// Owner responses
// ----------------------------------------------------------------

func (s *RentalRequestService) OwnerRespond(
	ctx context.Context,
	actor Actor,
	requestID uuid.UUID,
	action dtos.OwnerAction,
	counter *dtos.CounterProposalRequest,
) (*models.RentalRequest, error) {
	op := "owner_" + string(action)

	rr, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.ID != rr.OwnerID {
		return nil, forbidden("Only the property owner can respond to this request")
	}

	expected := rr.Status
	var note *models.Notification

	switch action {
	case dtos.OwnerAccept:
		if rr.Status != models.RentalRequestPending {
			recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
			return nil, invalidTransition(fmt.Sprintf("Only pending requests can be accepted (status is %s)", rr.Status))
		}
		if err := rr.ScheduleVisit(s.loc, s.visitDuration); err != nil {
			return nil, internalError("Stored visit time is invalid", err)
		}
		rr.Status = models.RentalRequestAccepted
		note = models.NewNotification(
			rr.TenantID,
			models.NotificationRequestAccepted,
			"Visit request accepted",
			fmt.Sprintf("Your visit on %s at %s was accepted", rr.RequestedDate.Format(models.VisitDateLayout), rr.RequestedTime),
			requestData(rr),
		)

	case dtos.OwnerReject:
		if !rr.Status.CanTransition(models.RentalRequestRejected) {
			recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
			return nil, invalidTransition(fmt.Sprintf("A %s request cannot be rejected", rr.Status))
		}
		rr.Status = models.RentalRequestRejected
		rr.ClearCounter()
		note = models.NewNotification(
			rr.TenantID,
			models.NotificationRequestRejected,
			"Visit request rejected",
			"The owner rejected your visit request",
			requestData(rr),
		)

	case dtos.OwnerCounter:
		if counter == nil {
			return nil, validationError("counter_date and counter_time are required", nil)
		}
		if !rr.Status.CanTransition(models.RentalRequestCounterProposed) {
			recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
			return nil, invalidTransition(fmt.Sprintf("Cannot counter-propose on a %s request", rr.Status))
		}
		date, clock, fields := parseVisitSlot(counter.CounterDate, counter.CounterTime, "counter_date", "counter_time")
		if len(fields) > 0 {
			return nil, validationError("Invalid counter-proposal", fields)
		}
		today := dateOnlyInLocation(s.now(), s.loc)
		if time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc).Before(today) {
			return nil, validationError("Invalid counter-proposal", map[string]string{
				"counter_date": "must be today or later",
			})
		}
		rr.CounterDate = &date
		rr.CounterTime = &clock
		rr.Status = models.RentalRequestCounterProposed
		note = models.NewNotification(
			rr.TenantID,
			models.NotificationCounterProposal,
			"New visit date proposed",
			fmt.Sprintf("The owner proposes a visit on %s at %s", counter.CounterDate, clock),
			requestData(rr),
		)

	default:
		return nil, validationError(fmt.Sprintf("Unknown action %q", action), nil)
	}

	return s.commit(ctx, op, rr, expected, note)
}

// ----------------------------------------------------------------
// Tenant response to a counter-proposal
// ----------------------------------------------------------------

func (s *RentalRequestService) TenantRespondToCounter(
	ctx context.Context,
	actor Actor,
	requestID uuid.UUID,
	accept bool,
) (*models.RentalRequest, error) {
	op := "tenant_reject_counter"
	if accept {
		op = "tenant_accept_counter"
	}

	rr, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.ID != rr.TenantID {
		return nil, forbidden("Only the requesting tenant can answer a counter-proposal")
	}
	if rr.Status != models.RentalRequestCounterProposed {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("There is no counter-proposal to answer (status is %s)", rr.Status))
	}

	expected := rr.Status
	var note *models.Notification

	if accept {
		if err := rr.PromoteCounter(); err != nil {
			return nil, internalError("Counter-proposal is incomplete", err)
		}
		if err := rr.ScheduleVisit(s.loc, s.visitDuration); err != nil {
			return nil, internalError("Stored visit time is invalid", err)
		}
		rr.Status = models.RentalRequestAccepted
		note = models.NewNotification(
			rr.OwnerID,
			models.NotificationCounterAccepted,
			"Counter-proposal accepted",
			fmt.Sprintf("The tenant accepted the visit on %s at %s", rr.RequestedDate.Format(models.VisitDateLayout), rr.RequestedTime),
			requestData(rr),
		)
	} else {
		rr.ClearCounter()
		rr.Status = models.RentalRequestRejected
		note = models.NewNotification(
			rr.OwnerID,
			models.NotificationCounterRejected,
			"Counter-proposal rejected",
			"The tenant rejected your proposed visit date",
			requestData(rr),
		)
	}

	return s.commit(ctx, op, rr, expected, note)
}

// ----------------------------------------------------------------
// Visit status (read-only)
// ----------------------------------------------------------------

func (s *RentalRequestService) CheckVisitStatus(
	ctx context.Context,
	actor Actor,
	requestID uuid.UUID,
) (*dtos.VisitStatusDTO, error) {
	rr, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.authz.Gate(actor, bypassAll, rr.OwnerID) {
		return nil, forbidden("Only the property owner can check the visit status")
	}

	now := s.now().In(s.loc)
	out := &dtos.VisitStatusDTO{CurrentTime: now}

	if property, pErr := s.propertyRepo.GetByID(ctx, rr.PropertyID); pErr == nil {
		out.PropertyTimeZone = PropertyTimeZone(property)
	}

	if rr.VisitEndTime == nil {
		return out, nil
	}
	end := rr.VisitEndTime.In(s.loc)
	out.VisitEndTime = &end
	out.CanContinue = !now.Before(end)
	if !out.CanContinue {
		remaining := end.Sub(now)
		mins := int(math.Ceil(remaining.Minutes()))
		out.TimeRemaining = utils.Ptr(remaining.Round(time.Second).String())
		out.MinutesRemaining = &mins
	}
	return out, nil
}

// ----------------------------------------------------------------
// Cancel / Get
// ----------------------------------------------------------------

func (s *RentalRequestService) Cancel(ctx context.Context, actor Actor, requestID uuid.UUID) error {
	const op = "cancel_request"

	rr, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if !rr.IsParty(actor.ID) {
		return forbidden("Only the tenant or the owner can cancel this request")
	}
	if rr.Status == models.RentalRequestContractSent {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return invalidTransition("A contract was already issued from this request")
	}

	note := models.NewNotification(
		rr.Counterpart(actor.ID),
		models.NotificationRequestCancelled,
		"Visit request cancelled",
		"A visit request you were part of was cancelled",
		requestData(rr),
	)
	ok, err := s.requestRepo.DeleteIfNotSuperseded(ctx, rr.ID, rr.RowVersion, []*models.Notification{note})
	if err != nil {
		return internalError("Failed to cancel rental request", err)
	}
	if !ok {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return invalidTransition("The request changed while it was being cancelled")
	}

	recordTransition("rental_request", "cancelled")
	s.outbox.Kick()
	return nil
}

func (s *RentalRequestService) Get(ctx context.Context, actor Actor, requestID uuid.UUID) (*models.RentalRequest, error) {
	rr, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanView(actor, rr.TenantID, rr.OwnerID) {
		return nil, forbidden("You are not a party to this request")
	}
	return rr, nil
}

// ----------------------------------------------------------------
// helpers
// ----------------------------------------------------------------

func (s *RentalRequestService) loadRequest(ctx context.Context, id uuid.UUID) (*models.RentalRequest, error) {
	rr, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load rental request", err)
	}
	if rr == nil {
		return nil, notFound("Rental request not found")
	}
	return rr, nil
}

// commit applies the status-guarded write. Losing the guard means another
// caller moved the request first.
func (s *RentalRequestService) commit(
	ctx context.Context,
	op string,
	rr *models.RentalRequest,
	expected models.RentalRequestStatus,
	note *models.Notification,
) (*models.RentalRequest, error) {
	rr.UpdatedAt = s.now().UTC()
	ok, err := s.requestRepo.UpdateIfStatus(ctx, rr, expected, []*models.Notification{note})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateActiveRequest) {
			recordRejection(op, internal_utils.ErrCodeDuplicateActiveRequest)
			return nil, duplicateActiveRequest()
		}
		return nil, internalError("Failed to update rental request", err)
	}
	if !ok {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition("The request changed while it was being updated")
	}

	recordTransition("rental_request", string(rr.Status))
	s.outbox.Kick()
	utils.Logger.WithFields(logrus.Fields{
		"rental_request_id": rr.ID,
		"from":              expected,
		"to":                rr.Status,
	}).Info("Rental request transitioned")
	return rr, nil
}

// parseVisitSlot validates a date/time pair from the wire.
func parseVisitSlot(date, clock, dateField, timeField string) (time.Time, string, map[string]string) {
	fields := map[string]string{}
	d, err := time.Parse(models.VisitDateLayout, date)
	if err != nil {
		fields[dateField] = "must be a date in YYYY-MM-DD format"
	}
	c, err := time.Parse(models.VisitTimeLayout, clock)
	if err != nil {
		fields[timeField] = "must be a time in HH:MM format"
	}
	return d, c.Format(models.VisitTimeLayout), fields
}

func requestData(rr *models.RentalRequest) map[string]any {
	return map[string]any{
		"rental_request_id": rr.ID,
		"property_id":       rr.PropertyID,
		"status":            rr.Status,
	}
}

func propertyUnavailable() error {
	return businessRuleError(internal_utils.ErrCodePropertyUnavailable,
		"This property is not available", internal_utils.ErrPropertyUnavailable)
}

func duplicateActiveRequest() error {
	return businessRuleError(internal_utils.ErrCodeDuplicateActiveRequest,
		"You already have an active request for this property", internal_utils.ErrDuplicateActiveRequest)
}

func referenceLocation(cfg *config.Config) *time.Location {
	if cfg != nil && cfg.ReferenceLocation != nil {
		return cfg.ReferenceLocation
	}
	return loadLocation(utils.DefaultReferenceTimeZone, time.UTC)
}
