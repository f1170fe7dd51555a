package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/pkg/errors"

	"github.com/Tyrowin/roomchat/internal/server"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return exitConfig, errors.Wrap(err, "load .env")
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(cfg.LogLevel)

	relay, err := server.New(cfg, logger)
	if err != nil {
		return exitConfig, err
	}
	relay.Start()

	httpServer := server.CreateServer(cfg.Port, relay.Routes())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.StartServer(httpServer, logger)
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"chat-server": func(_ context.Context) error {
			logger.Info("Shutdown signal received")
			if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, logger); err != nil {
				logger.Error("HTTP server shutdown failed", "error", err)
			}
			return relay.Shutdown(cfg.ShutdownTimeout)
		},
	})

	select {
	case code := <-wait:
		if code != exitOK {
			return code, errors.New("graceful shutdown did not complete")
		}
	case err := <-errChan:
		if err != nil {
			_ = relay.Shutdown(cfg.ShutdownTimeout)
			return exitRuntime, err
		}
		// ListenAndServe returned because the shutdown operation closed it.
		if code := <-wait; code != exitOK {
			return code, errors.New("graceful shutdown did not complete")
		}
	}

	logger.Info("Server stopped")
	return exitOK, nil
}
