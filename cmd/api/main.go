package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tabacweb/tabac-backend/api"
	"github.com/tabacweb/tabac-backend/api/routes"
	"github.com/tabacweb/tabac-backend/internal/auth"
	"github.com/tabacweb/tabac-backend/internal/dashboard"
	"github.com/tabacweb/tabac-backend/internal/mailer"
	"github.com/tabacweb/tabac-backend/internal/notifications"
	"github.com/tabacweb/tabac-backend/internal/orders"
	product "github.com/tabacweb/tabac-backend/internal/products"
	"github.com/tabacweb/tabac-backend/internal/realtime"
	"github.com/tabacweb/tabac-backend/internal/reservations"
	"github.com/tabacweb/tabac-backend/internal/users"
	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/db"
	"github.com/tabacweb/tabac-backend/pkg/logger"
	"github.com/tabacweb/tabac-backend/pkg/metrics"
	"github.com/tabacweb/tabac-backend/pkg/migrate"
	"github.com/tabacweb/tabac-backend/pkg/redis"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	realtime.SetCheckOrigin(realtime.OriginChecker(cfg.CORS.AllowedOrigins))
	hub := realtime.NewHub(logg)
	go hub.Run(ctx)

	mailClient := mailer.New(cfg.SMTP, logg)

	usersRepo := users.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	productsRepo := product.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	reservationsRepo := reservations.NewRepository(dbClient.DB())

	notifier, err := notifications.NewNotifier(notificationsRepo, hub, mailClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create notifier", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           usersRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}

	productsService, err := product.NewService(productsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create products service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Tx:       dbClient,
		Catalog:  orders.NewCatalog(),
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(reservations.ServiceParams{
		Repo:     reservationsRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reservations service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to create dashboard service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		HTTPMetrics:  metrics.NewHTTPMetrics(),
		Hub:          hub,
		Auth:         authService,
		Register:     registerService,
		Users:        usersService,
		Products:     productsService,
		Orders:       ordersService,
		Reservations: reservationsService,
		Notify:       notificationsService,
		Dashboard:    dashboardService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := api.NewServer(addr, router, logg)
	if err := server.Run(ctx); err != nil {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
