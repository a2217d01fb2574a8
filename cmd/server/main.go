package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/omart/marketplace/internal/cache"
	"github.com/omart/marketplace/internal/config"
	"github.com/omart/marketplace/internal/db"
	"github.com/omart/marketplace/internal/es"
	"github.com/omart/marketplace/internal/httpserver"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/media"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	"github.com/omart/marketplace/internal/mykafka"
	"github.com/omart/marketplace/internal/notify"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/service"
)

func main() {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := db.NewStore(gdb)

	r := &repo.GormRepo{DB: gdb}

	var storage media.Storage
	if cfg.CloudinaryConfigured() {
		cld, err := media.NewCloudinary(media.CloudinaryConfig{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		})
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		storage = cld
	} else {
		logger.Warn("cloudinary_disabled", "reason", "CLOUDINARY_URL or CLOUDINARY_CLOUD_NAME/API_KEY/API_SECRET not set")
	}

	hooks, closers := sideEffects(cfg, logger)

	catalog := &service.CatalogService{
		Repo:  r,
		Media: &media.Attacher{Storage: storage, MaxBytes: cfg.MaxImageBytes},
		Hooks: hooks,
	}
	moderation := &service.ModerationService{Repo: r, Hooks: hooks}
	authSvc := &service.AuthService{
		Repo:               r,
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           cfg.JWTTTL,
		AllowedEmailDomain: cfg.AllowedEmailDomain,
	}

	search := &service.SearchService{}
	if idx, ok := hooks.Index.(*es.ProductIndex); ok {
		search.Index = idx
	}

	e := httpserver.New(&httpserver.Deps{
		Logger: logger,
		DB:     store,
		Auth:   authmw.New(authSvc),
		Products: &httpserver.ProductHTTP{
			Svc:           catalog,
			StrictFilters: cfg.StrictListing,
			MaxUpload:     media.MaxImages*cfg.MaxImageBytes + 1<<20,
		},
		Admin:       &httpserver.AdminHTTP{Admin: &service.AdminService{Repo: r}, Moderation: moderation, Catalog: catalog},
		Users:       &httpserver.UserHTTP{Users: &service.UserService{Repo: r}, Catalog: catalog},
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		Search:      &httpserver.SearchHTTP{Svc: search},

		CORSOrigins:       cfg.CORSOrigins,
		Production:        cfg.IsProduction(),
		Development:       cfg.IsDevelopment(),
		RateLimitPer15Min: cfg.RateLimitPer15Min,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Warn("close_error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}

// sideEffects wires the optional integrations. Each one left unconfigured is logged and skipped.
func sideEffects(cfg config.Config, logger *slog.Logger) (service.Hooks, []func() error) {
	var (
		hooks   service.Hooks
		closers []func() error
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.RedisConfigured() {
		if client := cache.Connect(ctx, cache.Options{URL: cfg.RedisURL, Addr: cfg.RedisAddr, Password: cfg.RedisPassword}, logger); client != nil {
			hooks.Cache = cache.NewListings(client, cfg.ListingCacheTTL)
			closers = append(closers, client.Close)
		}
	} else {
		logger.Info("redis_disabled", "reason", "REDIS_URL or REDIS_ADDR not set")
	}

	if cfg.KafkaConfigured() {
		producer, err := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaProductTopic)
		if err != nil {
			logger.Warn("kafka_disabled", "error", err)
		} else {
			hooks.Events = producer
			closers = append(closers, producer.Close)
		}
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	if cfg.ESConfigured() {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			logger.Warn("elasticsearch_disabled", "error", err)
		} else {
			hooks.Index = es.NewProductIndex(client, cfg.ESIndex)
		}
	} else {
		logger.Info("elasticsearch_disabled", "reason", "ES_URL not set")
	}

	if cfg.SMTPConfigured() {
		mailer, err := notify.NewMailer(notify.Config{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		if err != nil {
			logger.Warn("smtp_disabled", "error", err)
		} else {
			hooks.Notify = mailer
		}
	} else {
		logger.Info("smtp_disabled", "reason", "SMTP_HOST/SMTP_USER/SMTP_PASS not set")
	}

	return hooks, closers
}
