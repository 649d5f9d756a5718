package routes

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/controllers"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-middleware"
)

// newTestRouter mounts real controllers over services without storage.
// Every request below is refused before a repository would be touched.
func newTestRouter(t *testing.T) (*rsa.PrivateKey, http.Handler) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.Config{VisitDuration: time.Minute}
	authz := services.NewAuthorizer()
	activity := services.NewActivityService(nil)
	requests := services.NewRentalRequestService(cfg, nil, nil, authz, nil)
	contracts := services.NewContractService(nil, nil, nil, authz, nil, activity)
	payments := services.NewPaymentService(cfg, nil, nil, authz, nil, activity)

	router := NewRouter(&key.PublicKey, Controllers{
		RentalRequest: controllers.NewRentalRequestsController(requests),
		Contract:      controllers.NewContractsController(contracts),
		Payment:       controllers.NewPaymentsController(payments),
		Notification:  controllers.NewNotificationsController(services.NewNotificationService(nil)),
		Admin:         controllers.NewAdminController(contracts, payments),
	})
	return key, router
}

func do(t *testing.T, h http.Handler, key *rsa.PrivateKey, role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		token, err := middleware.SignToken(key, uuid.NewString(), role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterAuthentication(t *testing.T) {
	key, h := newTestRouter(t)
	id := uuid.NewString()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, RentalRequests},
		{http.MethodGet, "/api/v1/rental-requests/" + id},
		{http.MethodPut, "/api/v1/contracts/" + id + "/accept"},
		{http.MethodPost, Payments},
		{http.MethodGet, Notifications},
		{http.MethodPut, "/api/v1/admin/contracts/" + id + "/cancel"},
	} {
		rec := do(t, h, key, "", tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterAdminRoutesNeedStaffRole(t *testing.T) {
	key, h := newTestRouter(t)
	id := uuid.NewString()

	for _, role := range []string{"tenant", "landlord"} {
		rec := do(t, h, key, role, http.MethodPut, "/api/v1/admin/contracts/"+id+"/cancel", "")
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
		rec = do(t, h, key, role, http.MethodPut, "/api/v1/admin/payments/"+id+"/status", `{"status":"paid"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}

	// Staff get through the role gate and hit body validation.
	rec := do(t, h, key, "support", http.MethodPut, "/api/v1/admin/contracts/"+id+"/validate", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouterValidatesBeforeServices(t *testing.T) {
	key, h := newTestRouter(t)

	rec := do(t, h, key, "tenant", http.MethodPost, RentalRequests, `{"property_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, key, "tenant", http.MethodPost, RentalRequests, `{"property_id":"x","requested_date":"2025-06-02","requested_time":"25:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, key, "tenant", http.MethodGet, "/api/v1/rental-requests/not-a-uuid", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, key, "landlord", http.MethodPut, "/api/v1/rental-requests/"+uuid.NewString()+"/counter", `{"counter_date":"tomorrow","counter_time":"10:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, key, "landlord", http.MethodPost, RentalRequestSendContract, `{"rental_request_id":"`+uuid.NewString()+`","clauses":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, key, "tenant", http.MethodPost, PaymentsSimulate, `{"contract_id":"`+uuid.NewString()+`","amount":"10","payment_method":"bitcoin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouterMetricsIsPublic(t *testing.T) {
	key, h := newTestRouter(t)
	rec := do(t, h, key, "", http.MethodGet, Metrics, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
