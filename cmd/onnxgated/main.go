// Command onnxgated runs the model conversion gateway daemon.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"onnxgate/internal/config"
	"onnxgate/internal/daemon"
	"onnxgate/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("onnxgated shutting down")
}
