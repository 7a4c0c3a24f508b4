package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/drive_tutor/configs"
	"github.com/anjiri1684/drive_tutor/database"
	"github.com/anjiri1684/drive_tutor/database/memstore"
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/jobs"
	"github.com/anjiri1684/drive_tutor/logger"
	"github.com/anjiri1684/drive_tutor/notifications"
	"github.com/anjiri1684/drive_tutor/payments"
	"github.com/anjiri1684/drive_tutor/routes"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/anjiri1684/drive_tutor/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, websocket hub and cron jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.New(settings.Environment)
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, settings, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openStore(settings config.Settings, log *zap.Logger) (services.Store, error) {
	if settings.DatabaseURL == "" {
		if settings.Environment == "production" {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		log.Warn("DATABASE_URL not set, using the in-memory store")
		return memstore.New(), nil
	}
	db, err := database.Connect(settings.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	return database.NewStore(db), nil
}

func paymentProviders(settings config.Settings) payments.Registry {
	var providers []payments.Provider
	if settings.PayPalClientID != "" {
		providers = append(providers, payments.NewPayPal(payments.PayPalConfig{
			APIBase:   settings.PayPalAPIBase,
			ClientID:  settings.PayPalClientID,
			Secret:    settings.PayPalSecret,
			ReturnURL: settings.PayPalReturnURL,
			CancelURL: settings.PayPalCancelURL,
		}, nil))
	}
	if settings.MidtransServerKey != "" {
		providers = append(providers, payments.NewMidtrans(settings.MidtransServerKey, settings.MidtransProduction))
	}
	if settings.Environment != "production" {
		providers = append(providers, payments.NewLocal())
	}
	return payments.NewRegistry(providers...)
}

func serve(ctx context.Context, settings config.Settings, log *zap.Logger) error {
	store, err := openStore(settings, log)
	if err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, store, settings.AdminFullName, settings.AdminEmail, settings.AdminPassword, log); err != nil {
		return err
	}

	var mailer services.Mailer
	if brevo := notifications.NewBrevoService(settings.BrevoAPIKey, settings.BrevoSenderEmail, settings.BrevoSenderName, log); brevo != nil {
		mailer = brevo
	} else {
		log.Warn("BREVO_API_KEY not set, emails are disabled")
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	var (
		uploads  handlers.UploadSigner
		uploader services.FileUploader
	)
	if settings.CloudinaryURL != "" {
		cld, err := services.NewCloudinary(settings.CloudinaryURL)
		if err != nil {
			return err
		}
		uploads, uploader = cld, cld
	}

	certificates := services.NewCertificateService(store, services.ChromeRenderer{}, uploader, log)
	events := services.Publishers{hub, notifications.NewDispatcher(mailer, store, log)}
	if uploader != nil {
		events = append(events, certificates)
	} else {
		log.Warn("CLOUDINARY_URL not set, certificates are disabled")
	}

	pricing := services.NewPricing(settings.PlatformFeeRate)
	packages := services.NewPackageService(store, pricing, events, log)
	subscriptions := services.NewSubscriptionService(store, settings.PlatformFeeRate, log)

	h := &handlers.Handlers{
		Auth:          services.NewAuthService(store, mailer, settings.JWTSecret, settings.FrontendURL, log),
		Packages:      packages,
		Lessons:       services.NewLessonService(store, packages, events, log),
		Reviews:       services.NewReviewService(store, events, log),
		Directory:     services.NewDirectoryService(store, log),
		Chat:          services.NewChatService(store, events, log),
		Checkout:      services.NewCheckoutService(store, paymentProviders(settings), log),
		Subscriptions: subscriptions,
		Certificates:  certificates,
		Admin:         services.NewAdminService(store, log),
		Hub:           hub,
		Uploads:       uploads,
		JWTSecret:     settings.JWTSecret,
		Log:           log,
	}

	scheduler := cron.New(cron.WithLocation(settings.Location))
	reminders := jobs.NewLessonReminders(store, mailer, settings.Location, log)
	if err := jobs.Schedule(ctx, scheduler, reminders, subscriptions, log); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := newApp(h, settings, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", settings.Port))
		errCh <- app.Listen(":" + settings.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	certificates.Wait()
	return nil
}

func newApp(h *handlers.Handlers, settings config.Settings, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Drive Tutor",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(log),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   settings.Location.String(),
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Drive Tutor API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, h)
	return app
}
