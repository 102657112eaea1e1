package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"doctor-booking-service/internal/app"
	"doctor-booking-service/internal/server"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET required")
	}
	interval := 10 * time.Minute
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("bad SWEEP_INTERVAL: %v", err)
		}
		interval = d
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	log.Println("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		log.Printf("migration file not found, skipping: %v", err)
	} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
		log.Printf("migration warning: %v", err)
	} else {
		log.Println("migration applied")
	}

	a := &app.App{DB: pool, Secret: secret}

	sweeper := app.NewSweeper(a, interval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	if err := server.Run(a.Router()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
