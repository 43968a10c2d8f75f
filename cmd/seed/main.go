package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jaswdr/faker"

	"study-plan/internal/config"
	"study-plan/internal/logger"
	"study-plan/internal/store/open"
)

func main() {
	configFile := flag.String("config", "", "config file")
	n := flag.Int("users", 5, "number of demo students")
	password := flag.String("password", "password123", "password for every demo account")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	ctx := context.Background()
	st, err := open.Store(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close(ctx)

	users, err := seed(ctx, st, faker.New(), *n, *password, time.Now())
	if err != nil {
		log.Fatal("seed failed: ", err)
	}
	logger.Info("=== seed done ===", "users", len(users), "driver", cfg.Database.Driver)
}
