package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
)

/* ------------------------------------------------------------------
   In-memory store shared by the fake repositories. Every guarded write
   runs under one mutex, which gives the same all-or-nothing outcome the
   Postgres transactions give.
------------------------------------------------------------------ */

type memStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*models.User
	properties    map[uuid.UUID]*models.Property
	requests      map[uuid.UUID]*models.RentalRequest
	contracts     map[uuid.UUID]*models.Contract
	payments      map[uuid.UUID]*models.Payment
	notifications []*models.Notification
	claims        map[uuid.UUID]time.Time
	activity      []*models.ActivityLog

	failActivity bool
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]*models.User{},
		properties: map[uuid.UUID]*models.Property{},
		requests:   map[uuid.UUID]*models.RentalRequest{},
		contracts:  map[uuid.UUID]*models.Contract{},
		payments:   map[uuid.UUID]*models.Payment{},
		claims:     map[uuid.UUID]time.Time{},
	}
}

func (s *memStore) appendOutbox(ns []*models.Notification) {
	for _, n := range ns {
		cp := *n
		s.notifications = append(s.notifications, &cp)
	}
}

// notificationsFor returns the outbox rows addressed to userID, oldest first.
func (s *memStore) notificationsFor(userID uuid.UUID) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memStore) propertyStatus(id uuid.UUID) models.PropertyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.properties[id].Status
}

func (s *memStore) activityActions() []models.ActivityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActivityAction, 0, len(s.activity))
	for _, a := range s.activity {
		out = append(out, a.Action)
	}
	return out
}

/* ---------------- users ---------------- */

type fakeUserRepo struct{ *memStore }

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) ListByRoles(_ context.Context, roles ...models.Role) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.Role == role {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

/* ---------------- properties ---------------- */

type fakePropertyRepo struct{ *memStore }

func (r fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.RowVersion = 1
	r.properties[p.ID] = &cp
	return nil
}

func (r fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

/* ---------------- rental requests ---------------- */

type fakeRequestRepo struct{ *memStore }

func (r fakeRequestRepo) Create(_ context.Context, req *models.RentalRequest, outbox []*models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[req.PropertyID]
	if !ok || p.Status != models.PropertyStatusAvailable {
		return repositories.ErrPropertyUnavailable
	}
	if r.findActiveLocked(req.PropertyID, req.TenantID) != nil {
		return repositories.ErrDuplicateActiveRequest
	}
	req.RowVersion = 1
	cp := *req
	r.requests[req.ID] = &cp
	r.appendOutbox(outbox)
	return nil
}

func (r fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RentalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *rr
	return &cp, nil
}

func (r fakeRequestRepo) FindActive(_ context.Context, propertyID, tenantID uuid.UUID) (*models.RentalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findActiveLocked(propertyID, tenantID), nil
}

func (r fakeRequestRepo) findActiveLocked(propertyID, tenantID uuid.UUID) *models.RentalRequest {
	for _, rr := range r.requests {
		if rr.PropertyID == propertyID && rr.TenantID == tenantID && rr.Status.IsActive() {
			cp := *rr
			return &cp
		}
	}
	return nil
}

func (r fakeRequestRepo) UpdateIfStatus(
	_ context.Context,
	req *models.RentalRequest,
	expected models.RentalRequestStatus,
	outbox []*models.Notification,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok || stored.Status != expected || stored.RowVersion != req.RowVersion {
		return false, nil
	}
	req.RowVersion++
	cp := *req
	r.requests[req.ID] = &cp
	r.appendOutbox(outbox)
	return true, nil
}

func (r fakeRequestRepo) DeleteIfNotSuperseded(
	_ context.Context,
	id uuid.UUID,
	expectedVersion int64,
	outbox []*models.Notification,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok || stored.RowVersion != expectedVersion || stored.Status == models.RentalRequestContractSent {
		return false, nil
	}
	delete(r.requests, id)
	r.appendOutbox(outbox)
	return true, nil
}

/* ---------------- contracts ---------------- */

type fakeContractRepo struct{ *memStore }

func (r fakeContractRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r fakeContractRepo) IssueFromRequest(
	_ context.Context,
	c *models.Contract,
	requestID uuid.UUID,
	expectedRequestVersion int64,
	outbox []*models.Notification,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[c.PropertyID]
	if !ok || p.Status != models.PropertyStatusAvailable {
		return repositories.ErrPropertyUnavailable
	}
	rr, ok := r.requests[requestID]
	if !ok || rr.Status != models.RentalRequestAccepted || rr.RowVersion != expectedRequestVersion {
		return fmt.Errorf("rental request %s: %w", requestID, repositories.ErrStatusMismatch)
	}
	rr.Status = models.RentalRequestContractSent
	rr.RowVersion++
	c.RowVersion = 1
	cp := *c
	r.contracts[c.ID] = &cp
	r.appendOutbox(outbox)
	return nil
}

func (r fakeContractRepo) UpdateIfStatus(
	_ context.Context,
	c *models.Contract,
	expected models.ContractStatus,
	flip *models.PropertyFlip,
	outbox []*models.Notification,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contracts[c.ID]
	if !ok || stored.Status != expected || stored.RowVersion != c.RowVersion {
		return false, nil
	}
	if c.Status == models.ContractActive {
		for _, other := range r.contracts {
			if other.ID != c.ID && other.PropertyID == c.PropertyID && other.Status == models.ContractActive {
				return false, repositories.ErrPropertyUnavailable
			}
		}
	}
	if flip != nil {
		p, ok := r.properties[flip.PropertyID]
		if !ok || (flip.From != "" && p.Status != flip.From) {
			return false, repositories.ErrPropertyUnavailable
		}
		p.Status = flip.To
		p.RowVersion++
	}
	c.RowVersion++
	cp := *c
	r.contracts[c.ID] = &cp
	r.appendOutbox(outbox)
	return true, nil
}

func (r fakeContractRepo) UpdateWithRetry(
	_ context.Context,
	id uuid.UUID,
	mutate func(*models.Contract) error,
	outbox []*models.Notification,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contracts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *stored
	if err := mutate(&cp); err != nil {
		return err
	}
	cp.RowVersion = stored.RowVersion + 1
	r.contracts[id] = &cp
	r.appendOutbox(outbox)
	return nil
}

/* ---------------- payments ---------------- */

type fakePaymentRepo struct{ *memStore }

func (r fakePaymentRepo) Create(_ context.Context, p *models.Payment, simulated bool, outbox []*models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[p.ContractID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !c.Status.AcceptsPayments(simulated) {
		return repositories.ErrStatusMismatch
	}
	p.RowVersion = 1
	cp := *p
	r.payments[p.ID] = &cp
	r.appendOutbox(outbox)
	return nil
}

func (r fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakePaymentRepo) UpdateIfStatus(
	_ context.Context,
	p *models.Payment,
	expected models.PaymentStatus,
	outbox []*models.Notification,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[p.ID]
	if !ok || stored.Status != expected || stored.RowVersion != p.RowVersion {
		return false, nil
	}
	p.RowVersion++
	cp := *p
	r.payments[p.ID] = &cp
	r.appendOutbox(outbox)
	return true, nil
}

func (r fakePaymentRepo) DeleteIfDeletable(_ context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[id]
	if !ok || stored.RowVersion != expectedVersion || !stored.Status.Deletable() {
		return false, nil
	}
	delete(r.payments, id)
	return true, nil
}

/* ---------------- notifications ---------------- */

type fakeNotificationRepo struct{ *memStore }

func (r fakeNotificationRepo) ClaimPending(_ context.Context, limit int, lease time.Duration) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.DeliveryStatus != models.DeliveryPending {
			continue
		}
		if until, ok := r.claims[n.ID]; ok && until.After(now) {
			continue
		}
		r.claims[n.ID] = now.Add(lease)
		cp := *n
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r fakeNotificationRepo) MarkDelivered(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			delete(r.claims, id)
			now := time.Now().UTC()
			n.DeliveryStatus = models.DeliverySent
			n.DeliveryAttempts++
			n.DeliveredAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r fakeNotificationRepo) MarkDeliveryFailed(_ context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			delete(r.claims, id)
			n.DeliveryAttempts++
			n.LastError = &reason
			if n.DeliveryAttempts >= maxAttempts {
				n.DeliveryStatus = models.DeliveryFailed
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				now := time.Now().UTC()
				n.ReadAt = &now
			}
			return true, nil
		}
	}
	return false, nil
}

/* ---------------- activity ---------------- */

type fakeActivityRepo struct{ *memStore }

func (r fakeActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failActivity {
		return fmt.Errorf("activity log unavailable")
	}
	cp := *entry
	r.activity = append(r.activity, &cp)
	return nil
}

/* ------------------------------------------------------------------
   Test environment
------------------------------------------------------------------ */

type countingKicker struct {
	mu    sync.Mutex
	kicks int
}

func (k *countingKicker) Kick() {
	k.mu.Lock()
	k.kicks++
	k.mu.Unlock()
}

func (k *countingKicker) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.kicks
}

// testClock is a settable time source shared by every service in an env.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	t     *testing.T
	ctx   context.Context
	store *memStore
	clock *testClock
	kick  *countingKicker
	loc   *time.Location

	requests      *RentalRequestService
	contracts     *ContractService
	payments      *PaymentService
	notifications *NotificationService

	landlord Actor
	tenant   Actor
	stranger Actor
	admin    Actor
	support  Actor
	property *models.Property
}

func mustBogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	return loc
}

// newTestEnv wires every service over one memStore with the clock fixed
// at 2025-06-02 09:00 Bogota time and a one-minute visit window.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loc := mustBogota(t)
	store := newMemStore()
	clock := &testClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, loc)}
	kick := &countingKicker{}
	cfg := &config.Config{ReferenceLocation: loc, VisitDuration: time.Minute}

	authz := NewAuthorizer()
	activity := NewActivityService(fakeActivityRepo{store})

	env := &testEnv{
		t:     t,
		ctx:   context.Background(),
		store: store,
		clock: clock,
		kick:  kick,
		loc:   loc,

		requests:      NewRentalRequestService(cfg, fakeRequestRepo{store}, fakePropertyRepo{store}, authz, kick),
		contracts:     NewContractService(fakeRequestRepo{store}, fakeContractRepo{store}, fakePropertyRepo{store}, authz, kick, activity),
		payments:      NewPaymentService(cfg, fakePaymentRepo{store}, fakeContractRepo{store}, authz, kick, activity),
		notifications: NewNotificationService(fakeNotificationRepo{store}),
	}
	env.requests.now = clock.Now
	env.contracts.now = clock.Now
	env.payments.now = clock.Now

	env.landlord = env.newUser(models.RoleLandlord)
	env.tenant = env.newUser(models.RoleTenant)
	env.stranger = env.newUser(models.RoleTenant)
	env.admin = env.newUser(models.RoleAdmin)
	env.support = env.newUser(models.RoleSupport)
	env.property = env.newProperty(env.landlord.ID)
	return env
}

func (e *testEnv) newUser(role models.Role) Actor {
	e.t.Helper()
	u := &models.User{
		ID:        uuid.New(),
		Name:      string(role) + " user",
		Email:     uuid.NewString() + "@example.test",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(e.t, fakeUserRepo{e.store}.Create(e.ctx, u))
	return Actor{ID: u.ID, Role: role}
}

func (e *testEnv) newProperty(ownerID uuid.UUID) *models.Property {
	e.t.Helper()
	p := &models.Property{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        "Apartamento Chapinero",
		Address:      "Calle 60 # 9-10",
		City:         "Bogota",
		TimeZone:     "America/Bogota",
		Latitude:     4.6486,
		Longitude:    -74.0628,
		MonthlyPrice: decimal.NewFromInt(2500000),
		Status:       models.PropertyStatusAvailable,
	}
	require.NoError(e.t, fakePropertyRepo{e.store}.Create(e.ctx, p))
	return p
}
