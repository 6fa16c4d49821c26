package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/middleware"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/server"
	"github.com/terraconstructs/skillshare/internal/services/comments"
	"github.com/terraconstructs/skillshare/internal/services/feeds"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
	"github.com/terraconstructs/skillshare/internal/services/posts"
	"github.com/terraconstructs/skillshare/internal/services/progress"
	"github.com/terraconstructs/skillshare/internal/services/validation"
	"github.com/terraconstructs/skillshare/internal/storage"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

// notificationBuffer bounds each live stream's backlog before events are dropped.
const notificationBuffer = 32

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Starts the HTTP server with the JSON API, upload serving and the notification websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				log.Printf("WARNING: telemetry shutdown: %v", err)
			}
		}()

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		log.Printf("Connected to %s database", bunx.DetectDatabaseType(cfg.DatabaseURL))

		dbMetrics, err := telemetry.NewDatabaseMetrics()
		if err != nil {
			return fmt.Errorf("create database metrics: %w", err)
		}
		db.AddQueryHook(dbMetrics)

		if migrateOnStart {
			if err := withMigrator(ctx, false, migrateUp); err != nil {
				return err
			}
		}

		enforcer, err := auth.InitEnforcer(db)
		if err != nil {
			return fmt.Errorf("configure casbin enforcer: %w", err)
		}
		// Policies are edited offline (iam bootstrap) and reloaded on demand.
		enforcer.EnableAutoSave(false)
		policy := auth.NewPolicy(enforcer)

		codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret))
		if err != nil {
			return fmt.Errorf("create token codec: %w", err)
		}

		blobs, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("configure %s storage: %w", cfg.Storage.Backend, err)
		}
		var uploads http.Handler
		if local, ok := blobs.(*storage.LocalStore); ok {
			uploads = local.Handler()
		}

		// Repositories
		userRepo := repository.NewBunUserRepository(db)
		postRepo := repository.NewBunPostRepository(db)

		// Services
		notifier := notifications.NewService(
			repository.NewBunNotificationRepository(db),
			notifications.NewHub(notificationBuffer),
			policy,
		)
		iamService, err := iam.NewIAMService(
			iam.IAMServiceDependencies{
				Users:    userRepo,
				Follows:  repository.NewBunFollowRepository(db),
				Codec:    codec,
				Policy:   policy,
				Notifier: notifier,
			},
			iam.IAMServiceConfig{Config: cfg},
		)
		if err != nil {
			return fmt.Errorf("create IAM service: %w", err)
		}
		postService := posts.NewService(posts.Dependencies{
			Posts:      postRepo,
			Policy:     policy,
			Blobs:      blobs,
			Notifier:   notifier,
			Visibility: cfg.ContentVisibility,
		})
		commentService := comments.NewService(comments.Dependencies{
			Comments:   repository.NewBunCommentRepository(db),
			Posts:      postRepo,
			Policy:     policy,
			Notifier:   notifier,
			Visibility: cfg.ContentVisibility,
		})
		feedService := feeds.NewService(feeds.Dependencies{
			Feeds:      repository.NewBunFeedRepository(db),
			Posts:      postRepo,
			Policy:     policy,
			Visibility: cfg.ContentVisibility,
		})
		progressService := progress.NewService(progress.Dependencies{
			Progress:   repository.NewBunProgressRepository(db),
			Policy:     policy,
			Visibility: cfg.ContentVisibility,
		})

		validator, err := validation.NewSchemaValidator(validation.DefaultCacheSize)
		if err != nil {
			return fmt.Errorf("create request validator: %w", err)
		}

		authMetrics, err := telemetry.NewAuthMetrics()
		if err != nil {
			return fmt.Errorf("create auth metrics: %w", err)
		}
		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("create server metrics: %w", err)
		}

		authn, err := middleware.NewAuthnMiddleware(middleware.AuthnDependencies{
			Codec:    codec,
			Resolver: iamService,
			Routes:   auth.DefaultRoutes(cfg.ContentVisibility),
			Metrics:  authMetrics,
		})
		if err != nil {
			return fmt.Errorf("configure authentication middleware: %w", err)
		}

		limiter, err := middleware.NewRateLimiter(cfg.LoginRateLimit.Requests, cfg.LoginRateLimit.Window, middleware.DefaultRateLimitClients)
		if err != nil {
			return fmt.Errorf("configure login rate limiter: %w", err)
		}

		handler := server.NewH2CHandler(server.RouterOptions{
			Cfg:            cfg,
			IAM:            iamService,
			Posts:          postService,
			Comments:       commentService,
			Feeds:          feedService,
			Progress:       progressService,
			Notifications:  notifier,
			Blobs:          blobs,
			Uploads:        uploads,
			Validator:      validator,
			Policy:         policy,
			PolicyReloader: enforcer,
			Authn:          authn,
			LoginLimiter:   limiter,
			Metrics:        serverMetrics,
			HealthHandler:  healthHandler(db, cfg.ContentVisibility),
		})

		srv := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			// Body and write timeouts are left unset: video uploads and
			// notification streams outlive any fixed bound.
			IdleTimeout: 60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			log.Printf("Server URL: %s (content visibility: %s)", cfg.ServerURL, cfg.ContentVisibility)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// SIGHUP reloads role policies from casbin_rules.
		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)

		for {
			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-reload:
				if err := enforcer.LoadPolicy(); err != nil {
					log.Printf("ERROR: policy reload via %v failed: %v", sig, err)
				} else {
					log.Printf("INFO: policies reloaded via %v", sig)
				}

			case sig := <-shutdown:
				log.Printf("Received signal %v, shutting down gracefully", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					srv.Close()
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}

				log.Printf("Server stopped")
				return nil
			}
		}
	},
}

func healthHandler(db *bun.DB, visibility config.Visibility) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("health check: database ping failed: %v", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":     status,
			"visibility": string(visibility),
		})
	}
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
