package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventbot/internal/bot"
	"eventbot/internal/config"
	"eventbot/internal/flow"
	"eventbot/internal/logger"
	"eventbot/internal/ops"
	"eventbot/internal/session"
	"eventbot/internal/store"
	"eventbot/internal/stream"
	"eventbot/internal/ticket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func openStore(cfg *config.Config, log *logger.Logger) *store.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.Path)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite at %s: %v", cfg.Database.Path, err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to SQLite: %v", err))
	}

	db := &store.DB{Bun: bun.NewDB(sqldb, sqlitedialect.New())}
	if err := db.Migrate(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}

	log.Info("DATABASE", fmt.Sprintf("SQLite ready at %s, schema migrated", cfg.Database.Path))
	return db
}

func openSessions(cfg *config.Config, log *logger.Logger) session.Store {
	if !cfg.Redis.Enabled {
		log.Info("REDIS", "Redis disabled, using in-memory session store")
		return session.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}

	log.Info("REDIS", fmt.Sprintf("Session store connected to Redis at %s", cfg.Redis.Addr))
	return session.NewRedisStore(client, cfg.Redis.SessionTTL)
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting event registration bot")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Bot.Token == "" {
		log.Fatal("CONFIG", "BOT_TOKEN not set")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		log.Warn("CONFIG", "ADMIN_IDS empty, management flows are unreachable")
	}

	db := openStore(cfg, log)
	defer db.Bun.Close()

	sessions := openSessions(cfg, log)

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Fatal("BOT", fmt.Sprintf("Telegram authorization failed: %v", err))
	}
	api.Debug = cfg.Bot.Debug
	log.Info("BOT", fmt.Sprintf("Authorized as @%s", api.Self.UserName))

	svc := flow.New(db, sessions, &bot.Notifier{API: api}, log, cfg.Bot.AdminIDs)
	svc.Passes = ticket.NewGenerator()

	if cfg.Kafka.Enabled {
		producer := stream.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		svc.Stream = producer
		log.Info("KAFKA", fmt.Sprintf("Activity stream enabled, brokers: %v", cfg.Kafka.Brokers))
	} else {
		log.Info("KAFKA", "Activity stream disabled")
	}

	var opsServer *http.Server
	if cfg.Ops.Enabled {
		handler := ops.NewHandler(db, log)
		opsServer = &http.Server{
			Addr:    cfg.Ops.Addr,
			Handler: handler.Router(),
		}
		go func() {
			log.Info("HTTP", fmt.Sprintf("Ops API listening on %s", cfg.Ops.Addr))
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("HTTP", fmt.Sprintf("Ops server error: %v", err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := bot.New(api, svc, log)
	go b.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Bot started, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received")
	cancel()

	if opsServer != nil {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := opsServer.Shutdown(ctxShutdown); err != nil {
			log.Error("HTTP", fmt.Sprintf("Ops server shutdown failed: %v", err))
		}
	}

	log.Info("APP", "Shutdown complete")
}
