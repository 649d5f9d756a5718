// backend/services/lease-service/cmd/main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/app"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/controllers"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/routes"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/services"
	"github.com/arrienda/mono-repo/backend/shared/go-repositories"
	seeding "github.com/arrienda/mono-repo/backend/shared/go-seeding"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize lease-service:", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.EnsureSchema(ctx); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to apply schema")
	}

	userRepo := repositories.NewUserRepository(application.DB)
	propertyRepo := repositories.NewPropertyRepository(application.DB)
	requestRepo := repositories.NewRentalRequestRepository(application.DB)
	contractRepo := repositories.NewContractRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	notifRepo := repositories.NewNotificationRepository(application.DB)
	activityRepo := repositories.NewActivityLogRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := seeding.SeedAll(ctx, userRepo, propertyRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	channels, closeChannels := services.BuildDeliveryChannels(cfg)
	defer closeChannels()
	dispatcher := services.NewNotificationDispatcher(notifRepo, userRepo, channels)
	go dispatcher.Run(ctx)

	authz := services.NewAuthorizer()
	activity := services.NewActivityService(activityRepo)
	requestService := services.NewRentalRequestService(cfg, requestRepo, propertyRepo, authz, dispatcher)
	contractService := services.NewContractService(requestRepo, contractRepo, propertyRepo, authz, dispatcher, activity)
	paymentService := services.NewPaymentService(cfg, paymentRepo, contractRepo, authz, dispatcher, activity)
	notificationService := services.NewNotificationService(notifRepo)

	router := routes.NewRouter(cfg.RSAPublicKey, routes.Controllers{
		Health:        controllers.NewHealthController(application),
		RentalRequest: controllers.NewRentalRequestsController(requestService),
		Contract:      controllers.NewContractsController(contractService),
		Payment:       controllers.NewPaymentsController(paymentService),
		Notification:  controllers.NewNotificationsController(notificationService),
		Admin:         controllers.NewAdminController(contractService, paymentService),
	})

	// The sweep picks up rows whose kick was lost (crash, full channel) and
	// retries failed deliveries.
	c := cron.New()
	_, sweepErr := c.AddFunc(constants.OutboxSweepSchedule, func() {
		if n := dispatcher.DrainOnce(ctx); n > 0 {
			utils.Logger.Infof("Outbox sweep delivered %d notifications", n)
		}
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule outbox sweep cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: co.Handler(router),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Logger.WithError(err).Warn("Graceful shutdown failed")
		}
	}()

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Logger.Fatal("lease-service failed to start:", err)
	}
	utils.Logger.Info("lease-service stopped")
}
