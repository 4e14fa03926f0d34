package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tabacweb/tabac-backend/internal/auth"
	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/db"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// Bootstraps the first administrator account so a fresh deployment can log
// in. Subsequent staff accounts are created through the API.
func main() {
	logg := logger.New(logger.Options{ServiceName: "createadmin"})

	_ = godotenv.Load()

	name := flag.String("name", "", "administrator display name")
	email := flag.String("email", "", "administrator email")
	password := flag.String("password", "", "administrator password (min 8 chars)")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -name NAME -email EMAIL -password PASSWORD")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "createadmin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	user, err := registerService.Register(ctx, auth.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     "admin",
	})
	if err != nil {
		logg.Error(ctx, "failed to create administrator", err)
		os.Exit(1)
	}

	fmt.Printf("created administrator %s (%s)\n", user.Name, user.Email)
}
