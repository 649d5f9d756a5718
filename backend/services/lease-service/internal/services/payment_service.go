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

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/dtos"
	internal_utils "github.com/arrienda/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// PaymentService keeps the ledger of rent payments against a contract.
type PaymentService struct {
	paymentRepo  repositories.PaymentRepository
	contractRepo repositories.ContractRepository
	authz        *Authorizer
	outbox       OutboxKicker
	activity     *ActivityService

	loc *time.Location
	now func() time.Time
}

func NewPaymentService(
	cfg *config.Config,
	paymentRepo repositories.PaymentRepository,
	contractRepo repositories.ContractRepository,
	authz *Authorizer,
	outbox OutboxKicker,
	activity *ActivityService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		authz:        authz,
		outbox:       outbox,
		activity:     activity,
		loc:          referenceLocation(cfg),
		now:          time.Now,
	}
}

// ----------------------------------------------------------------
// Record
// ----------------------------------------------------------------

func (s *PaymentService) RecordPayment(
	ctx context.Context,
	actor Actor,
	req dtos.CreatePaymentRequest,
) (*models.Payment, error) {
	const op = "record_payment"

	contractID, fields := parsePaymentBasics(req.ContractID, req.Amount, req.PaymentMethod)
	paymentDate := dateOnlyInLocation(s.now(), s.loc)
	if req.PaymentDate != "" {
		d, err := time.Parse(models.VisitDateLayout, req.PaymentDate)
		if err != nil {
			fields["payment_date"] = "must be a date in YYYY-MM-DD format"
		} else {
			paymentDate = d
		}
	}
	if len(fields) > 0 {
		return nil, validationError("Invalid payment", fields)
	}

	c, err := s.loadPayableContract(ctx, op, actor, contractID, false)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Payment{
		ID:          uuid.New(),
		ContractID:  c.ID,
		TenantID:    actor.ID,
		Amount:      *req.Amount,
		PaymentDate: paymentDate,
		Method:      models.PaymentMethod(req.PaymentMethod),
		Status:      models.PaymentPending,
		Notes:       utils.NilIfEmpty(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	note := models.NewNotification(
		c.LandlordID,
		models.NotificationPaymentRecorded,
		"Payment recorded",
		fmt.Sprintf("The tenant recorded a payment of %s", p.Amount.StringFixed(2)),
		paymentData(p),
	)

	if err := s.create(ctx, op, p, false, note); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor.ID, models.ActivityPaymentReceived, models.TargetPayment, p.ID, map[string]any{
		"contract_id": c.ID,
		"amount":      p.Amount,
	})
	return p, nil
}

// SimulatePayment records an already-paid payment with a placeholder
// receipt. It leaves the contract status alone.
func (s *PaymentService) SimulatePayment(
	ctx context.Context,
	actor Actor,
	req dtos.SimulatePaymentRequest,
) (*models.Payment, error) {
	const op = "simulate_payment"

	contractID, fields := parsePaymentBasics(req.ContractID, req.Amount, req.PaymentMethod)
	if len(fields) > 0 {
		return nil, validationError("Invalid payment", fields)
	}

	c, err := s.loadPayableContract(ctx, op, actor, contractID, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Payment{
		ID:          uuid.New(),
		ContractID:  c.ID,
		TenantID:    actor.ID,
		Amount:      *req.Amount,
		PaymentDate: dateOnlyInLocation(now, s.loc),
		Method:      models.PaymentMethod(req.PaymentMethod),
		Status:      models.PaymentPaid,
		ReceiptPath: utils.Ptr(fmt.Sprintf(constants.SimulatedReceiptPattern, now.Unix())),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	note := models.NewNotification(
		c.LandlordID,
		models.NotificationPaymentRecorded,
		"Payment received",
		fmt.Sprintf("The tenant paid %s", p.Amount.StringFixed(2)),
		paymentData(p),
	)

	if err := s.create(ctx, op, p, true, note); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor.ID, models.ActivityPaymentReceived, models.TargetPayment, p.ID, map[string]any{
		"contract_id": c.ID,
		"amount":      p.Amount,
		"simulated":   true,
	})
	return p, nil
}

// ----------------------------------------------------------------
// Status changes
// ----------------------------------------------------------------

func (s *PaymentService) UpdatePaymentStatus(
	ctx context.Context,
	actor Actor,
	paymentID uuid.UUID,
	req dtos.UpdatePaymentStatusRequest,
) (*models.Payment, error) {
	const op = "update_payment_status"

	target := models.PaymentStatus(req.Status)
	if target != models.PaymentPaid && target != models.PaymentRejected {
		return nil, validationError("Invalid payment status", map[string]string{"status": "must be paid or rejected"})
	}

	p, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	c, err := s.contractRepo.GetByID(ctx, p.ContractID)
	if err != nil {
		return nil, internalError("Failed to load contract", err)
	}
	if c == nil {
		return nil, notFound("Contract not found")
	}
	if !s.authz.Gate(actor, canConfirmAnyPayment, c.LandlordID) {
		return nil, forbidden("Only the landlord can confirm or reject this payment")
	}

	expected := p.Status
	if !expected.CanTransition(target) {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("A %s payment cannot become %s", expected, target))
	}

	p.Status = target
	if req.ReceiptPath != "" {
		p.ReceiptPath = &req.ReceiptPath
	}
	if req.Notes != "" {
		p.Notes = &req.Notes
	}
	p.UpdatedAt = s.now().UTC()

	note := models.NewNotification(
		p.TenantID,
		models.NotificationPaymentStatusChanged,
		"Payment status updated",
		fmt.Sprintf("Your payment of %s is now %s", p.Amount.StringFixed(2), target),
		paymentData(p),
	)
	ok, err := s.paymentRepo.UpdateIfStatus(ctx, p, expected, []*models.Notification{note})
	if err != nil {
		return nil, internalError("Failed to update payment", err)
	}
	if !ok {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition("The payment changed while it was being updated")
	}

	recordTransition("payment", string(target))
	s.outbox.Kick()
	s.activity.Record(ctx, actor.ID, models.ActivityPaymentStatusChanged, models.TargetPayment, p.ID, map[string]any{
		"from": expected,
		"to":   target,
	})
	utils.Logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"from":       expected,
		"to":         target,
	}).Info("Payment status changed")
	return p, nil
}

// DeletePayment removes an unconfirmed payment. Only the tenant who
// recorded it may do so.
func (s *PaymentService) DeletePayment(ctx context.Context, actor Actor, paymentID uuid.UUID) error {
	const op = "delete_payment"

	p, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if actor.ID != p.TenantID {
		return forbidden("Only the tenant who recorded this payment can delete it")
	}
	if !p.Status.Deletable() {
		recordRejection(op, internal_utils.ErrCodeCannotDeleteConfirmedPayment)
		return cannotDeleteConfirmed()
	}

	ok, err := s.paymentRepo.DeleteIfDeletable(ctx, p.ID, p.RowVersion)
	if err != nil {
		return internalError("Failed to delete payment", err)
	}
	if !ok {
		// Lost the race; report what the row looks like now.
		current, gErr := s.paymentRepo.GetByID(ctx, p.ID)
		if gErr == nil && current != nil && !current.Status.Deletable() {
			recordRejection(op, internal_utils.ErrCodeCannotDeleteConfirmedPayment)
			return cannotDeleteConfirmed()
		}
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return invalidTransition("The payment changed while it was being deleted")
	}

	recordTransition("payment", "deleted")
	return nil
}

func (s *PaymentService) Get(ctx context.Context, actor Actor, paymentID uuid.UUID) (*models.Payment, error) {
	p, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	c, err := s.contractRepo.GetByID(ctx, p.ContractID)
	if err != nil {
		return nil, internalError("Failed to load contract", err)
	}
	parties := []uuid.UUID{p.TenantID}
	if c != nil {
		parties = append(parties, c.LandlordID)
	}
	if !s.authz.CanView(actor, parties...) {
		return nil, forbidden("You are not a party to this payment")
	}
	return p, nil
}

// ----------------------------------------------------------------
// helpers
// ----------------------------------------------------------------

func (s *PaymentService) loadPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load payment", err)
	}
	if p == nil {
		return nil, notFound("Payment not found")
	}
	return p, nil
}

func (s *PaymentService) loadPayableContract(
	ctx context.Context,
	op string,
	actor Actor,
	contractID uuid.UUID,
	simulated bool,
) (*models.Contract, error) {
	c, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, internalError("Failed to load contract", err)
	}
	if c == nil {
		return nil, notFound("Contract not found")
	}
	if actor.ID != c.TenantID {
		return nil, forbidden("Only the tenant on this contract can pay it")
	}
	if !c.Status.AcceptsPayments(simulated) {
		recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
		return nil, invalidTransition(fmt.Sprintf("Payments cannot be recorded on a %s contract", c.Status))
	}
	return c, nil
}

func (s *PaymentService) create(
	ctx context.Context,
	op string,
	p *models.Payment,
	simulated bool,
	note *models.Notification,
) error {
	err := s.paymentRepo.Create(ctx, p, simulated, []*models.Notification{note})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusMismatch) {
			recordRejection(op, internal_utils.ErrCodeInvalidStateTransition)
			return invalidTransition("The contract changed while the payment was being recorded")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("Contract not found")
		}
		return internalError("Failed to record payment", err)
	}

	recordTransition("payment", string(p.Status))
	s.outbox.Kick()
	utils.Logger.WithFields(logrus.Fields{
		"payment_id":  p.ID,
		"contract_id": p.ContractID,
		"status":      p.Status,
	}).Info("Payment recorded")
	return nil
}

func parsePaymentBasics(contractID string, amount *decimal.Decimal, method string) (uuid.UUID, map[string]string) {
	fields := map[string]string{}
	id, err := uuid.Parse(contractID)
	if err != nil {
		fields["contract_id"] = "must be a UUID"
	}
	if amount == nil {
		fields["amount"] = "is required"
	} else if amount.IsNegative() {
		fields["amount"] = "must be zero or greater"
	}
	if !models.PaymentMethod(method).Valid() {
		fields["payment_method"] = "must be one of transfer, cash, card, pse"
	}
	return id, fields
}

func paymentData(p *models.Payment) map[string]any {
	return map[string]any{
		"payment_id":  p.ID,
		"contract_id": p.ContractID,
		"amount":      p.Amount,
		"status":      p.Status,
	}
}

func cannotDeleteConfirmed() error {
	return businessRuleError(internal_utils.ErrCodeCannotDeleteConfirmedPayment,
		"A confirmed payment cannot be deleted", internal_utils.ErrCannotDeleteConfirmedPayment)
}
