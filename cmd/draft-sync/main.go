// Package main runs the draft sync handler, either under the Lambda runtime
// or as a local HTTP server that accepts the same trigger events.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"draftsync-backend/infrastructure/config"
	"draftsync-backend/infrastructure/di"
	"draftsync-backend/interfaces/http/rest"
)

func main() {
	// Outside Lambda, pick up a local .env before reading the environment
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to load .env: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container; config and connection stay lazy
	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if cfg.IsLambda {
		container.Logger.Info("Starting draft-sync Lambda",
			zap.String("function", cfg.LambdaFunctionName),
		)
		awslambda.Start(container.Lambda.Handle)
		return
	}

	serve(cfg, container)
}

func serve(cfg *config.Config, container *di.Container) {
	router := rest.NewRouter(
		rest.InvokerFunc(func(ctx context.Context, event []byte) (string, error) {
			return container.Lambda.Handle(ctx, event)
		}),
		container.Loader,
		container.Manager,
		container.Collector.Handler(),
		container.Logger,
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting local server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Printf("Failed to release resources: %v", err)
	}

	log.Println("Server stopped")
}
