package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/task-manager/internal/config"
	"github.com/iliyamo/task-manager/internal/database"
	"github.com/iliyamo/task-manager/internal/handler"
	"github.com/iliyamo/task-manager/internal/middleware"
	"github.com/iliyamo/task-manager/internal/queue"
	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/response"
	"github.com/iliyamo/task-manager/internal/router"
	queue_publisher "github.com/iliyamo/task-manager/internal/service"
)

func main() {
	_ = godotenv.Load() // best effort; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Redis-backed task read cache; nil when Redis is unavailable or
	// caching is disabled, which the middleware treats as "off".
	cache := middleware.NewTaskCache(config.LoadCacheConfig(), config.NewRedisClient())
	if cache == nil {
		log.Println("task cache disabled")
	}

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	taskHandler := handler.NewTaskHandler(tasks, cache)
	taskHandler.Publish = queue_publisher.PublishTaskCompleted
	userHandler := handler.NewUserHandler(users, cache)

	e := echo.New()
	e.HideBanner = true
	// Every framework-raised failure is rendered as an envelope too.
	e.HTTPErrorHandler = response.ErrorHandler

	router.RegisterRoutes(e)
	router.RegisterAPI(e, authHandler, taskHandler, userHandler,
		middleware.Auth(tokens, users), cache.Middleware())

	// Background consumer for task.completed notifications.
	go func() {
		if err := queue.StartTaskConsumer(); err != nil {
			log.Printf("task consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
