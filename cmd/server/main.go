package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"anoa.com/safereport/internal/bootstrap"
	"anoa.com/safereport/internal/config"
	"anoa.com/safereport/internal/server"
	"anoa.com/safereport/pkg/database"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.AppEnv)
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedAnnouncements(db); err != nil {
		log.Fatalf("failed to seed announcements: %v", err)
	}
	if cfg.SeedDemoData {
		if err := bootstrap.SeedDemoStudent(db); err != nil {
			log.Fatalf("failed to seed demo student: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable, rate limits and realtime disabled: %v", err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			log.Println("✅ Connected to Redis")
		}
	} else {
		log.Println("⚠️ REDIS_URL not set, rate limits and realtime disabled")
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
