package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tansa-registration/config"
	"tansa-registration/handlers"
	"tansa-registration/middleware"
	"tansa-registration/services"
	"tansa-registration/store"
	"tansa-registration/utils"
	"tansa-registration/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tansa",
		Short: "TANSA membership registration and referral service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore loads config and returns a migrated store.
func openStore() (*config.Config, *store.GormStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, store.New(db), nil
}

func newExporter(ctx context.Context, cfg *config.Config, st store.RecordStore) (*services.RegistrationExporter, error) {
	r2, err := utils.NewR2Store(ctx, utils.R2Settings{
		AccountID:       cfg.CloudflareAccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		Bucket:          cfg.R2BucketName,
	})
	if err != nil {
		return nil, err
	}
	return services.NewRegistrationExporter(st, r2), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				log.Fatal(err)
			}
			if cfg.StripeWebhookSecret == "" {
				log.Println("⚠️  STRIPE_WEBHOOK_SECRET not set, every webhook will be rejected")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gateway := services.NewStripeGateway(cfg.StripeSecretKey)
			dispatcher := workers.NewNotificationDispatcher(
				services.NewNotifier(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.SiteURL),
				cfg.NotifyQueueSize,
			)
			dispatcher.Start(ctx)

			intake := services.NewRegistrationIntake(st, services.NewReferralCodeGenerator(st), dispatcher)
			signup := services.NewSignupService(st, gateway, cfg.MembershipFeeCents, cfg.MembershipCurrency)
			leaderboard := services.NewLeaderboardService(st)
			dashboard := services.NewExecDashboardService(st, cfg.ExecDashboardPassword)
			sessions := middleware.NewExecSessions(cfg.SessionSecret(), strings.HasPrefix(cfg.SiteURL, "https://"))

			if cfg.StripeSecretKey != "" {
				reconciler := services.NewPaymentReconciler(gateway, intake)
				workers.NewPaymentReconcileWorker(reconciler, cfg.ReconcileInterval, cfg.ReconcileLookback).Start(ctx)
			} else {
				log.Println("⚠️  STRIPE_SECRET_KEY not set, payment reconciliation disabled")
			}

			if cfg.R2Enabled() {
				exporter, err := newExporter(ctx, cfg, st)
				if err != nil {
					log.Fatal("failed to initialize R2 client:", err)
				}
				sched, err := exporter.StartExportScheduler(ctx, cfg.ExportInterval)
				if err != nil {
					log.Fatal(err)
				}
				defer func() { _ = sched.Shutdown() }()
			} else {
				log.Println("⚠️  R2 not configured, registration export disabled")
			}

			app := fiber.New(fiber.Config{
				AppName: "tansa-registration",
			})
			app.Use(recover.New())
			app.Use(logger.New())
			app.Use(cors.New(cors.Config{
				AllowOrigins:     strings.Join(cfg.OriginList(), ","),
				AllowMethods:     "GET,POST,DELETE,OPTIONS",
				AllowHeaders:     "Origin, Content-Type, Accept",
				AllowCredentials: true,
				MaxAge:           86400,
			}))

			handlers.SetupWebhookRoutes(app, intake, cfg.StripeWebhookSecret)
			handlers.SetupSignupRoutes(app, signup, dashboard)
			handlers.SetupReferralRoutes(app, leaderboard, signup)
			handlers.SetupExecDashboardRoutes(app, dashboard, sessions)

			go func() {
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Printf("Server error: %v", err)
				}
			}()

			log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
			log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

			<-ctx.Done()
			log.Println("Shutting down server...")
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				log.Printf("Shutdown error: %v", err)
			}
			dispatcher.Wait()
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create test registrations with random referral points",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return errors.New("--count must be positive")
			}
			_, st, err := openStore()
			if err != nil {
				return err
			}
			created, err := services.SeedRegistrations(cmd.Context(), st, count)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d test registrations\n", len(created))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of registrations to create")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var lookback time.Duration
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Create registrations for succeeded payments whose webhook was missed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			if cfg.StripeSecretKey == "" {
				return errors.New("STRIPE_SECRET_KEY environment variable not set")
			}
			if lookback <= 0 {
				lookback = cfg.ReconcileLookback
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			dispatcher := workers.NewNotificationDispatcher(
				services.NewNotifier(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.SiteURL),
				cfg.NotifyQueueSize,
			)
			dispatcher.Start(ctx)

			intake := services.NewRegistrationIntake(st, services.NewReferralCodeGenerator(st), dispatcher)
			reconciler := services.NewPaymentReconciler(services.NewStripeGateway(cfg.StripeSecretKey), intake)
			sum := workers.NewPaymentReconcileWorker(reconciler, cfg.ReconcileInterval, lookback).RunOnce(ctx)

			cancel()
			dispatcher.Wait()
			fmt.Printf("seen=%d created=%d already=%d discarded=%d failed=%d\n",
				sum.Seen, sum.Created, sum.AlreadyProcessed, sum.Discarded, sum.Failed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&lookback, "lookback", 0, "How far back to look (default RECONCILE_LOOKBACK)")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Upload a CSV of all registrations to R2",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			if !cfg.R2Enabled() {
				return errors.New("R2 is not configured")
			}
			exporter, err := newExporter(cmd.Context(), cfg, st)
			if err != nil {
				return err
			}
			url, err := exporter.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
}
