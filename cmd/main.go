package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arzan03/TaskManager/internal/config"
	"github.com/arzan03/TaskManager/internal/db"
	"github.com/arzan03/TaskManager/internal/handlers"
	"github.com/arzan03/TaskManager/internal/middleware"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/arzan03/TaskManager/internal/storage"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Info("no .env file loaded, using environment variables")
	}
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx := context.Background()

	// Connect to MongoDB
	client, err := db.ConnectMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("connect to mongodb", zap.Error(err))
	}
	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatal("create indexes", zap.Error(err))
	}

	// Attachments are optional; the API runs without object storage.
	var objects services.ObjectStore
	if cfg.Minio.Enabled() {
		store, err := storage.NewMinio(ctx, cfg.Minio)
		if err != nil {
			log.Warn("attachment storage disabled", zap.String("endpoint", cfg.Minio.Endpoint), zap.Error(err))
		} else {
			objects = store
		}
	}

	users := db.NewUserRepository(database)
	tasks := db.NewTaskRepository(database)

	policy, err := services.NewAccessPolicy()
	if err != nil {
		log.Fatal("load access policy", zap.Error(err))
	}
	sessions := services.NewSessionService(users, cfg.JWTSecret)
	userService := services.NewUserService(users, tasks, objects, sessions, policy, cfg.BcryptCost, log)
	taskService := services.NewTaskService(tasks, users, objects, policy, cfg.Minio.URLTTL, log)

	app := handlers.NewApp(log)
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	handlers.RegisterRoutes(app,
		middleware.AuthMiddleware(sessions, log),
		handlers.NewAuthHandler(userService, log),
		handlers.NewUserHandler(userService, log),
		handlers.NewTaskHandler(taskService, log),
	)

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Error("disconnect mongodb", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
