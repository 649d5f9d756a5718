package testhelpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// TestHelper encapsulates the DB, signing key and repositories used by
// integration tests.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *pgxpool.Pool
	PrivateKey *rsa.PrivateKey

	// From ldflags
	AppName         string
	UniqueRunNumber string
	UniqueRunnerID  string

	// Repositories
	UserRepo          repositories.UserRepository
	PropertyRepo      repositories.PropertyRepository
	RentalRequestRepo repositories.RentalRequestRepository
	ContractRepo      repositories.ContractRepository
	PaymentRepo       repositories.PaymentRepository
	NotificationRepo  repositories.NotificationRepository
}

// NewTestHelper connects to DB_URL and prepares the signing key. Without
// RSA_PRIVATE_KEY_BASE64 a fresh key is generated; callers then serve the
// API in-process with PublicKey().
func NewTestHelper(t *testing.T, appName, uniqueRunID, uniqueRunNum string) *TestHelper {
	dbURL := os.Getenv("DB_URL")
	require.NotEmpty(t, dbURL, "DB_URL env var is missing")

	privateKey := loadOrGenerateKey(t)

	effectiveURL := dbURL
	if uniqueRunID != "" && uniqueRunNum != "" {
		var err error
		effectiveURL, err = utils.WithIsolatedRole(dbURL, uniqueRunID, uniqueRunNum)
		require.NoError(t, err)
	}

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, effectiveURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:                 t,
		Ctx:               ctx,
		BaseURL:           os.Getenv("APP_URL_FROM_ANYWHERE"),
		DB:                dbPool,
		PrivateKey:        privateKey,
		AppName:           appName,
		UniqueRunnerID:    uniqueRunID,
		UniqueRunNumber:   uniqueRunNum,
		UserRepo:          repositories.NewUserRepository(dbPool),
		PropertyRepo:      repositories.NewPropertyRepository(dbPool),
		RentalRequestRepo: repositories.NewRentalRequestRepository(dbPool),
		ContractRepo:      repositories.NewContractRepository(dbPool),
		PaymentRepo:       repositories.NewPaymentRepository(dbPool),
		NotificationRepo:  repositories.NewNotificationRepository(dbPool),
	}
}

func (h *TestHelper) PublicKey() *rsa.PublicKey {
	return &h.PrivateKey.PublicKey
}

func loadOrGenerateKey(t *testing.T) *rsa.PrivateKey {
	b64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	if b64 == "" {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		return key
	}
	keyPEM, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	block, _ := pem.Decode(keyPEM)
	require.NotNil(t, block, "Failed to parse PEM block for RSA_PRIVATE_KEY_BASE64")
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	require.NoError(t, err)
	return key
}
