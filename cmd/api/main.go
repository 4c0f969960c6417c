package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/model"
	"attendtrack/api/internal/server"
	"attendtrack/api/internal/service"

	_ "attendtrack/api/docs"
)

// @title AttendTrack API
// @version 1.0
// @description Employee attendance tracking API with live location streaming.

// @host localhost:3000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	log.Println("[API] Starting AttendTrack API Server...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("[API] Failed to connect to database: %v", err)
	}
	log.Println("[API] Connected to database")

	// Auto migrate
	if err := autoMigrate(db); err != nil {
		log.Fatalf("[API] Failed to migrate database: %v", err)
	}
	log.Println("[API] Database migrated")

	// Seed reference data
	refs := service.NewReferenceService(db)
	if err := refs.Seed(context.Background(), cfg.OfficeStart, cfg.OfficeEnd); err != nil {
		log.Fatalf("[API] Failed to seed reference data: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("[API] Failed to connect to Redis: %v", err)
	}
	log.Println("[API] Connected to Redis")
	defer redisClient.Close()

	// Connect to NATS
	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to NATS: %v", err)
	}
	log.Println("[API] Connected to NATS")
	defer natsConn.Close()

	// Create and setup server
	srv := server.NewServer(cfg, db, redisClient, natsConn)
	srv.Setup()

	// Start the binlog change-feed relay
	var relay *service.BinlogRelay
	if cfg.Binlog.Enabled {
		relay = service.NewBinlogRelay(cfg.Binlog, natsConn)
		relay.Start()
		log.Println("[API] Binlog relay started")
	}

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	go func() {
		if err := srv.Run(addr); err != nil {
			log.Fatalf("[API] Failed to start server: %v", err)
		}
	}()

	log.Printf("[API] Server ready on %s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("[API] Shutting down...")

	// Graceful shutdown
	if relay != nil {
		relay.Stop()
		log.Println("[API] Binlog relay stopped")
	}
	srv.Shutdown()
	log.Println("[API] Server stopped")
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Employee{},
		&model.Attendance{},
		&model.LocationSample{},
		&model.Leave{},
		&model.ExtraWork{},
		&model.District{},
		&model.Tehsil{},
		&model.OfficeName{},
		&model.WorkType{},
		&model.OfficeTime{},
		&model.Holiday{},
	)
}
