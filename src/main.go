package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/utils"
	"birdfinder-server-go/src/predict"
	"birdfinder-server-go/src/router"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func LoadConfigAndLogger() (*configs.Config, *utils.Logger, error) {
	// .env must be loaded before PORT and the other overrides are read
	envErr := godotenv.Load()

	config, configPath, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	logger, err := utils.NewLogger(config)
	if err != nil {
		return nil, nil, err
	}
	logger.Info(fmt.Sprintf("Logger initialized, config file: %s", configPath))
	if envErr != nil {
		logger.Warn("No .env file found, using process environment")
	}

	return config, logger, nil
}

func StartHttpServer(config *configs.Config, logger *utils.Logger, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	engine, err := router.New(groupCtx, config, logger, predict.StaticClassifier{})
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              config.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info(fmt.Sprintf("Server running on port %d", config.Server.Port))

		go func() {
			<-groupCtx.Done()
			logger.Info("Shutdown signal received, stopping HTTP server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown failed", err.Error())
			} else {
				logger.Info("HTTP server stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", err.Error())
			return err
		}
		return nil
	})

	return httpServer, nil
}

func GracefulShutdown(cancel context.CancelFunc, logger *utils.Logger, g *errgroup.Group, groupCtx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info(fmt.Sprintf("Received signal %v, shutting down", sig))
	case <-groupCtx.Done():
		logger.Warn("Server stopped unexpectedly, shutting down")
	}

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Error while shutting down", err.Error())
			logger.Close()
			os.Exit(1)
		}
		logger.Info("All services stopped")
	case <-time.After(15 * time.Second):
		logger.Error("Shutdown timed out, forcing exit")
		logger.Close()
		os.Exit(1)
	}
}

func main() {
	config, logger, err := LoadConfigAndLogger()
	if err != nil {
		fmt.Println("Failed to load config or logger:", err)
		os.Exit(1)
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, groupCtx := errgroup.WithContext(ctx)

	if _, err := StartHttpServer(config, logger, g, groupCtx); err != nil {
		logger.Error("Failed to start HTTP server", err.Error())
		cancel()
		logger.Close()
		os.Exit(1)
	}

	GracefulShutdown(cancel, logger, g, groupCtx)

	logger.Info("Exited")
}
