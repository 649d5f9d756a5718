package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string
	UniqueRunNumber  string
	UniqueRunnerID   string

	// Database
	DBUrl string

	// External services
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string
	NATSUrl          string

	// Auth
	RSAPublicKey *rsa.PublicKey

	// Lease workflow
	ReferenceLocation *time.Location
	VisitDuration     time.Duration

	// LaunchDarkly flags
	LDFlag_UsingIsolatedSchema bool
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_TwilioFromPhone     string
	LDFlag_SMSNotifications    bool
	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
)

// build-time overrides
var (
	AppName             string
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

func LoadConfig() *Config {
	if AppName == "" {
		AppName = "lease-service"
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	if LDServerContextKind == "" {
		LDServerContextKind = "service"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubKey, err := decodePublicKey(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid RSA_PUBLIC_KEY_BASE64")
	}

	tzName := os.Getenv("REFERENCE_TIME_ZONE")
	if tzName == "" {
		tzName = utils.DefaultReferenceTimeZone
	}
	refLoc, err := time.LoadLocation(tzName)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Invalid REFERENCE_TIME_ZONE %q", tzName)
	}

	visitDuration := constants.DefaultVisitDuration
	if raw := os.Getenv("VISIT_DURATION"); raw != "" {
		visitDuration, err = time.ParseDuration(raw)
		if err != nil || visitDuration < 0 {
			utils.Logger.Fatalf("Invalid VISIT_DURATION %q", raw)
		}
	}
	utils.Logger.Infof("Visit window is %s in %s", visitDuration, refLoc)

	// Delivery credentials are optional; a missing one disables its channel.
	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	sgAPIKey := os.Getenv("SENDGRID_API_KEY")
	natsURL := os.Getenv("NATS_URL")

	flags := newFlagReader(os.Getenv("LD_SDK_KEY"))
	defer flags.Close()

	sgFromFlag := flags.stringFlag("sendgrid_from_email", os.Getenv("SENDGRID_FROM_EMAIL"))
	if sgFromFlag == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@arrienda.co")
		sgFromFlag = "no-reply@arrienda.co"
	}
	twilioFromFlag := flags.stringFlag("twilio_from_phone", os.Getenv("TWILIO_FROM_PHONE"))
	if twilioFromFlag == "" {
		utils.Logger.Warn("twilio_from_phone flag is empty, defaulting to +10005550006")
		twilioFromFlag = "+10005550006"
	}

	return &Config{
		OrganizationName:           OrganizationName,
		AppName:                    AppName,
		AppPort:                    appPort,
		AppUrl:                     appUrl,
		Env:                        env,
		UniqueRunNumber:            UniqueRunNumber,
		UniqueRunnerID:             UniqueRunnerID,
		DBUrl:                      dbURL,
		TwilioAccountSID:           twilioSID,
		TwilioAuthToken:            twilioToken,
		SendGridAPIKey:             sgAPIKey,
		NATSUrl:                    natsURL,
		RSAPublicKey:               pubKey,
		ReferenceLocation:          refLoc,
		VisitDuration:              visitDuration,
		LDFlag_UsingIsolatedSchema: flags.boolFlag("using_isolated_schema", false),
		LDFlag_SendgridFromEmail:   sgFromFlag,
		LDFlag_SendgridSandboxMode: flags.boolFlag("sendgrid_sandbox_mode", env != "prod"),
		LDFlag_TwilioFromPhone:     twilioFromFlag,
		LDFlag_SMSNotifications:    flags.boolFlag("sms_notifications_enabled", false),
		LDFlag_SeedDbWithTestData:  flags.boolFlag("seed_db_with_test_data", env == "dev"),
		LDFlag_CORSHighSecurity:    flags.boolFlag("cors_high_security", env == "prod"),
	}
}

func (c *Config) Close() {}

// flagReader reads LaunchDarkly flags for the service context. Without an
// SDK key every flag resolves to its default, which keeps local runs and
// tests independent of LaunchDarkly.
type flagReader struct {
	client *ld.LDClient
	ctx    ldcontext.Context
}

func newFlagReader(sdkKey string) *flagReader {
	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set, using default flag values")
		return &flagReader{ctx: ctx}
	}

	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !client.Initialized() {
		client.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	return &flagReader{client: client, ctx: ctx}
}

func (f *flagReader) boolFlag(key string, def bool) bool {
	if f.client == nil {
		return def
	}
	v, err := f.client.BoolVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	utils.Logger.Debugf("%s flag: %t", key, v)
	return v
}

func (f *flagReader) stringFlag(key string, def string) string {
	if f.client == nil {
		return def
	}
	v, err := f.client.StringVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	utils.Logger.Debugf("%s flag: %s", key, v)
	return v
}

func (f *flagReader) Close() {
	if f.client != nil {
		_ = f.client.Close()
	}
}

// decodePublicKey parses a base64-encoded PEM RSA public key.
func decodePublicKey(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		return nil, errors.New("no PEM block in public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return pubKey, nil
}
