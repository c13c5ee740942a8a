package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paolomureddu/agrikmzero-backend/api/routes"
	authsvc "github.com/paolomureddu/agrikmzero-backend/internal/auth"
	cartsvc "github.com/paolomureddu/agrikmzero-backend/internal/cart"
	messagesvc "github.com/paolomureddu/agrikmzero-backend/internal/messages"
	"github.com/paolomureddu/agrikmzero-backend/internal/notify"
	ordersvc "github.com/paolomureddu/agrikmzero-backend/internal/orders"
	productsvc "github.com/paolomureddu/agrikmzero-backend/internal/products"
	profilesvc "github.com/paolomureddu/agrikmzero-backend/internal/profiles"
	reviewsvc "github.com/paolomureddu/agrikmzero-backend/internal/reviews"
	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	"github.com/paolomureddu/agrikmzero-backend/pkg/auth/session"
	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db"
	"github.com/paolomureddu/agrikmzero-backend/pkg/geo"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
	"github.com/paolomureddu/agrikmzero-backend/pkg/mail"
	"github.com/paolomureddu/agrikmzero-backend/pkg/metrics"
	"github.com/paolomureddu/agrikmzero-backend/pkg/migrate"
	redisclient "github.com/paolomureddu/agrikmzero-backend/pkg/redis"
	"github.com/paolomureddu/agrikmzero-backend/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redisclient.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap object storage", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "object storage not configured, image uploads disabled")
	}

	var geoClient *geo.Client
	if cfg.GoogleMaps.APIKey != "" {
		geoClient, err = geo.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap geocoder", err)
			os.Exit(1)
		}
	}

	mailer := mail.NewFromConfig(cfg.Mail, logg)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	notifyMetrics := metrics.NewNotificationMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := productsvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())
	messageRepo := messagesvc.NewRepository(dbClient.DB())
	reviewRepo := reviewsvc.NewRepository(dbClient.DB())

	dispatcher, err := notify.NewDispatcher(notify.Params{
		Messages: messageRepo,
		Users:    userRepo,
		Mailer:   mailer,
		Metrics:  notifyMetrics,
		Logger:   logg,
		Timeout:  cfg.Notify.DispatchTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Mailer:         mailer,
		Logger:         logg,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		PublicBaseURL:  cfg.App.PublicBaseURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	profilesService, err := newProfilesService(userRepo, geoClient, gcsClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	productsService, err := newProductsService(productRepo, userRepo, gcsClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(ordersvc.ServiceParams{
		Repo:     orderRepo,
		Cart:     cartService,
		Users:    userRepo,
		Notifier: dispatcher,
		Logger:   logg,
		Config:   cfg.Orders,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	messagesService, err := messagesvc.NewService(messageRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	reviewsService, err := reviewsvc.NewService(dbClient, reviewRepo, orderRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	var storagePinger gcs.Pinger
	if gcsClient != nil {
		storagePinger = gcsClient
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Storage:  storagePinger,
		Sessions: sessionManager,
		Metrics:  registry,
		Auth:     authService,
		Profiles: profilesService,
		Products: productsService,
		Cart:     cartService,
		Orders:   ordersService,
		Messages: messagesService,
		Reviews:  reviewsService,
		Users:    userRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		dispatcher.Wait()
	}

	logg.Info(ctx, "api server stopped")
}

// newProfilesService keeps absent optional dependencies as untyped nils so
// the service's nil checks hold.
func newProfilesService(repo *users.Repository, geoClient *geo.Client, gcsClient *gcs.Client, logg *logger.Logger) (profilesvc.Service, error) {
	switch {
	case geoClient != nil && gcsClient != nil:
		return profilesvc.NewService(repo, geoClient, gcsClient, logg)
	case geoClient != nil:
		return profilesvc.NewService(repo, geoClient, nil, logg)
	case gcsClient != nil:
		return profilesvc.NewService(repo, nil, gcsClient, logg)
	default:
		return profilesvc.NewService(repo, nil, nil, logg)
	}
}

func newProductsService(repo *productsvc.Repository, farmers *users.Repository, gcsClient *gcs.Client) (productsvc.Service, error) {
	if gcsClient != nil {
		return productsvc.NewService(repo, farmers, gcsClient)
	}
	return productsvc.NewService(repo, farmers, nil)
}
