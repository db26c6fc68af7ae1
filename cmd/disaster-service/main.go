package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/satyam1256/disaster/internal/aggregator"
	"github.com/satyam1256/disaster/internal/api"
	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/gemini"
	"github.com/satyam1256/disaster/internal/geocode"
	"github.com/satyam1256/disaster/internal/service"
	"github.com/satyam1256/disaster/internal/store"
	"github.com/satyam1256/disaster/internal/ws"
)

func envOrDefault(key, d string) string {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	return v
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if envOrDefault("LOG_PRETTY", "") != "" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	dbHost := envOrDefault("DB_HOST", "localhost")
	dbPort := envOrDefault("DB_PORT", "5432")
	dbName := envOrDefault("DB_NAME", "disaster_db")
	dbUser := envOrDefault("DB_USER", "disaster_user")
	dbPass := envOrDefault("DB_PASS", "disaster")
	redisAddr := envOrDefault("REDIS_ADDR", "localhost:6379")
	port := envOrDefault("PORT", "8080")

	pgURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", pgURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	// db might still be starting in docker, so ping with retries
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("waiting for db")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to db")
	}

	if err := store.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}
	repo := store.NewPgStore(db)

	// Redis is the cache of choice; when it is unreachable at startup the
	// service degrades to an in-memory cache rather than refusing to run.
	var c cache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, using in-memory cache")
		c = cache.NewMemory()
	} else {
		c = cache.NewRedis(rdb, log)
	}
	cancel()

	hub := ws.New(log)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go hub.Run(ctx)

	agg := aggregator.New(&http.Client{}, log)
	svc := service.NewService(
		repo, c, hub,
		gemini.NewClientFromEnv(),
		geocode.NewClientFromEnv(),
		agg,
		log,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, api.NewHandler(svc), hub)

	log.Info().Str("port", port).Msg("listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
