package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	internal_utils "github.com/arrienda/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// ContractService issues leases from completed visits and drives them
// through tenant acceptance and administrative review.
type ContractService struct {
	requestRepo  repositories.RentalRequestRepository
	contractRepo repositories.ContractRepository
	propertyRepo repositories.PropertyRepository
	authz        *Authorizer
	outbox       OutboxKicker
	activity     *ActivityService

	now func() time.Time
}

func NewContractService(
	requestRepo repositories.RentalRequestRepository,
	contractRepo repositories.ContractRepository,
	propertyRepo repositories.PropertyRepository,
	authz *Authorizer,
	outbox OutboxKicker,
	activity *ActivityService,
) *ContractService {
	return &ContractService{
		requestRepo:  requestRepo,
		contractRepo: contractRepo,
		propertyRepo: propertyRepo,
		authz:        authz,
		outbox:       outbox,
		activity:     activity,
		now:          time.Now,
	}
}

// ----------------------------------------------------------------
// Issue
// ----------------------------------------------------------------

func (s *ContractService) IssueContract(
	ctx context.Context,
	actor Actor,
	req dtos.SendContractRequest,
) (*models.Contract, error) {
	const op = "issue_contract"

	requestID, start, end, terms, err := parseContractOffer(req)
	if err != nil {
		return nil, err
	}

	rr, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, internalError("Failed to load rental request", err)
	}
	if rr == nil {
		return nil, notFound("Rental request not found")
	}
	if actor.ID != rr.OwnerID {
		return nil, forbidden("Only the property owner can send a contract")
	}
	if rr.Status != models.RentalRequestAccepted {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("A contract needs an accepted request (status is %s)", rr.Status))
	}
	if rr.VisitEndTime == nil || s.now().Before(*rr.VisitEndTime) {
		recordRejection(op, internal_utils.ErrCodeVisitNotCompleted)
		return nil, businessRuleError(internal_utils.ErrCodeVisitNotCompleted,
			"The visit has not finished yet", internal_utils.ErrVisitNotCompleted)
	}

	property, err := s.propertyRepo.GetByID(ctx, rr.PropertyID)
	if err != nil {
		return nil, internalError("Failed to load property", err)
	}
	if property == nil {
		return nil, notFound("Property not found")
	}
	if property.Status != models.PropertyStatusAvailable {
		recordRejection(op, internal_utils.ErrCodePropertyUnavailable)
		return nil, propertyUnavailable()
	}

	now := s.now().UTC()
	c := &models.Contract{
		ID:              uuid.New(),
		PropertyID:      rr.PropertyID,
		LandlordID:      rr.OwnerID,
		TenantID:        rr.TenantID,
		RentalRequestID: &rr.ID,
		StartDate:       start,
		EndDate:         end,
		Terms:           terms,
		Status:          models.ContractPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	note := models.NewNotification(
		c.TenantID,
		models.NotificationContractSent,
		"You received a contract",
		fmt.Sprintf("The owner of %s sent you a lease to review", property.Title),
		contractData(c, nil),
	)

	if err := s.contractRepo.IssueFromRequest(ctx, c, rr.ID, rr.RowVersion, []*models.Notification{note}); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPropertyUnavailable):
			recordRejection(op, internal_utils.ErrCodePropertyUnavailable)
			return nil, propertyUnavailable()
		case errors.Is(err, repositories.ErrStatusMismatch):
			recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
			return nil, invalidTransition("The request changed while the contract was being issued")
		}
		return nil, internalError("Failed to issue contract", err)
	}

	recordTransition("rental_request", string(models.RentalRequestContractSent))
	recordTransition("contract", string(c.Status))
	s.outbox.Kick()
	s.activity.Record(ctx, actor.ID, models.ActivityContractCreated, models.TargetContract, c.ID, map[string]any{
		"rental_request_id": rr.ID,
		"monthly_price":     terms.MonthlyPrice,
	})
	utils.Logger.WithFields(logrus.Fields{
		"contract_id":       c.ID,
		"rental_request_id": rr.ID,
	}).Info("Contract issued")
	return c, nil
}

// parseContractOffer turns the wire offer into validated values; every
// problem is reported as a 422 with per-field messages.
func parseContractOffer(req dtos.SendContractRequest) (uuid.UUID, time.Time, time.Time, models.ContractTerms, error) {
	fields := map[string]string{}

	requestID, err := uuid.Parse(req.RentalRequestID)
	if err != nil {
		fields["rental_request_id"] = "must be a UUID"
	}
	start, err := time.Parse(models.VisitDateLayout, req.StartDate)
	if err != nil {
		fields["start_date"] = "must be a date in YYYY-MM-DD format"
	}
	end, err := time.Parse(models.VisitDateLayout, req.EndDate)
	if err != nil {
		fields["end_date"] = "must be a date in YYYY-MM-DD format"
	}
	if len(fields) == 0 {
		if err := models.ValidatePeriod(start, end); err != nil {
			fields["end_date"] = err.Error()
		}
	}

	if req.MonthlyPrice == nil {
		fields["monthly_price"] = "is required"
	}
	if req.Deposit == nil {
		fields["deposit"] = "is required"
	}
	if len(fields) > 0 {
		return uuid.Nil, time.Time{}, time.Time{}, models.ContractTerms{}, validationError("Invalid contract", fields)
	}

	lateFee := decimal.Zero
	if req.LateFee != nil {
		lateFee = *req.LateFee
	}
	terms, err := models.NewContractTerms(
		*req.MonthlyPrice,
		*req.Deposit,
		req.Clauses,
		req.PaymentDay,
		lateFee,
		req.UtilitiesIncluded,
		req.SpecialConditions,
	)
	if err != nil {
		var te *models.TermsError
		if errors.As(err, &te) {
			return uuid.Nil, time.Time{}, time.Time{}, models.ContractTerms{}, validationError("Invalid contract terms", te.Fields)
		}
		return uuid.Nil, time.Time{}, time.Time{}, models.ContractTerms{}, validationError(err.Error(), nil)
	}
	return requestID, start, end, terms, nil
}

// ----------------------------------------------------------------
// Tenant decisions
// ----------------------------------------------------------------

func (s *ContractService) TenantAccept(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	const op = "tenant_accept_contract"

	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if actor.ID != c.TenantID {
		return nil, forbidden("Only the tenant can accept this contract")
	}
	if c.Status != models.ContractPending {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("Only pending contracts can be accepted (status is %s)", c.Status))
	}

	now := s.now().UTC()
	c.Status = models.ContractActive
	c.AcceptedByTenant = true
	c.TenantAcceptanceDate = &now
	c.UpdatedAt = now

	flip := &models.PropertyFlip{
		PropertyID: c.PropertyID,
		From:       models.PropertyStatusAvailable,
		To:         models.PropertyStatusRented,
	}
	note := models.NewNotification(
		c.LandlordID,
		models.NotificationContractAccepted,
		"Contract accepted",
		"The tenant accepted your contract",
		contractData(c, nil),
	)

	if err := s.commit(ctx, op, c, models.ContractPending, flip, note); err != nil {
		return nil, err
	}
	recordTransition("property", string(models.PropertyStatusRented))
	return c, nil
}

func (s *ContractService) TenantReject(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	const op = "tenant_reject_contract"

	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if actor.ID != c.TenantID {
		return nil, forbidden("Only the tenant can reject this contract")
	}
	if c.Status != models.ContractPending {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("Only pending contracts can be rejected (status is %s)", c.Status))
	}

	c.Status = models.ContractRejected
	c.UpdatedAt = s.now().UTC()
	note := models.NewNotification(
		c.LandlordID,
		models.NotificationContractRejected,
		"Contract rejected",
		"The tenant rejected your contract",
		contractData(c, nil),
	)

	if err := s.commit(ctx, op, c, models.ContractPending, nil, note); err != nil {
		return nil, err
	}
	return c, nil
}

// ----------------------------------------------------------------
// Administration
// ----------------------------------------------------------------

// AdminCancel cancels a pending or active contract. Cancelling an active
// lease puts the property back on the market in the same transaction.
func (s *ContractService) AdminCancel(
	ctx context.Context,
	actor Actor,
	contractID uuid.UUID,
	reason string,
) (*models.Contract, models.ContractStatus, error) {
	const op = "admin_cancel_contract"

	if !s.authz.Gate(actor, canAdministerContracts) {
		return nil, "", forbidden("Only administrators can cancel contracts")
	}
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, "", err
	}
	previous := c.Status
	if !previous.CanTransition(models.ContractCancelled) {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, "", invalidTransition(fmt.Sprintf("A %s contract cannot be cancelled", previous))
	}

	c.Status = models.ContractCancelled
	c.UpdatedAt = s.now().UTC()

	var flip *models.PropertyFlip
	if previous == models.ContractActive {
		flip = &models.PropertyFlip{PropertyID: c.PropertyID, To: models.PropertyStatusAvailable}
	}

	extra := map[string]any{"previous_status": previous}
	if reason != "" {
		extra["reason"] = reason
	}
	notes := []*models.Notification{
		models.NewNotification(c.TenantID, models.NotificationContractCancelled,
			"Contract cancelled", "An administrator cancelled your contract", contractData(c, extra)),
		models.NewNotification(c.LandlordID, models.NotificationContractCancelled,
			"Contract cancelled", "An administrator cancelled your contract", contractData(c, extra)),
	}

	if err := s.commit(ctx, op, c, previous, flip, notes...); err != nil {
		return nil, "", err
	}
	if flip != nil {
		recordTransition("property", string(models.PropertyStatusAvailable))
	}
	s.activity.Record(ctx, actor.ID, models.ActivityContractCancelled, models.TargetContract, c.ID, extra)
	return c, previous, nil
}

// AdminValidate records support's review. The status is left alone, so a
// concurrent unrelated write is retried rather than refused.
func (s *ContractService) AdminValidate(
	ctx context.Context,
	actor Actor,
	contractID uuid.UUID,
	validated bool,
) (*models.Contract, error) {
	if !s.authz.Gate(actor, canAdministerContracts) {
		return nil, forbidden("Only administrators can validate contracts")
	}
	current, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	message := "Support validated your contract"
	if !validated {
		message = "Support withdrew the validation of your contract"
	}
	data := contractData(current, map[string]any{"validated": validated})
	notes := []*models.Notification{
		models.NewNotification(current.TenantID, models.NotificationContractValidated, "Contract review", message, data),
		models.NewNotification(current.LandlordID, models.NotificationContractValidated, "Contract review", message, data),
	}

	var updated *models.Contract
	err = s.contractRepo.UpdateWithRetry(ctx, contractID, func(c *models.Contract) error {
		c.ValidatedBySupport = validated
		if validated {
			now := s.now().UTC()
			c.SupportValidationDate = &now
		} else {
			c.SupportValidationDate = nil
		}
		updated = c
		return nil
	}, notes)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, notFound("Contract not found")
		case errors.Is(err, utils.ErrRowVersionConflict):
			return nil, conflictError("Contract is being modified, try again", err)
		}
		return nil, internalError("Failed to validate contract", err)
	}

	s.outbox.Kick()
	s.activity.Record(ctx, actor.ID, models.ActivityContractValidated, models.TargetContract, contractID,
		map[string]any{"validated": validated})
	return updated, nil
}

func (s *ContractService) Get(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanView(actor, c.TenantID, c.LandlordID) {
		return nil, forbidden("You are not a party to this contract")
	}
	return c, nil
}

// NextPaymentDue returns the next rent due date of an active contract, or
// nil when none is left in its period.
func (s *ContractService) NextPaymentDue(c *models.Contract) *time.Time {
	if c.Status != models.ContractActive {
		return nil
	}
	due, ok := internal_utils.NextRentDue(c.StartDate, c.EndDate, c.Terms.PaymentDay, s.now())
	if !ok {
		return nil
	}
	return &due
}

// ----------------------------------------------------------------
// helpers
// ----------------------------------------------------------------

func (s *ContractService) loadContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load contract", err)
	}
	if c == nil {
		return nil, notFound("Contract not found")
	}
	return c, nil
}

func (s *ContractService) commit(
	ctx context.Context,
	op string,
	c *models.Contract,
	expected models.ContractStatus,
	flip *models.PropertyFlip,
	notes ...*models.Notification,
) error {
	ok, err := s.contractRepo.UpdateIfStatus(ctx, c, expected, flip, notes)
	if err != nil {
		if errors.Is(err, repositories.ErrPropertyUnavailable) {
			recordRejection(op, internal_utils.ErrCodePropertyUnavailable)
			return propertyUnavailable()
		}
		return internalError("Failed to update contract", err)
	}
	if !ok {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return invalidTransition("The contract changed while it was being updated")
	}

	recordTransition("contract", string(c.Status))
	s.outbox.Kick()
	utils.Logger.WithFields(logrus.Fields{
		"contract_id": c.ID,
		"from":        expected,
		"to":          c.Status,
	}).Info("Contract transitioned")
	return nil
}

func contractData(c *models.Contract, extra map[string]any) map[string]any {
	data := map[string]any{
		"contract_id": c.ID,
		"property_id": c.PropertyID,
		"status":      c.Status,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
