package main

import (
	"context"
	"flag"
	"log"
	"os"

	"lingochat-backend/internal/app"
	"lingochat-backend/internal/config"
	"lingochat-backend/internal/tools"
	"lingochat-backend/pkg/logger"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	a := app.New(context.Background(), cfg)
	defer a.Close()

	if err := server.ServeStdio(tools.NewServer(a.Chat)); err != nil {
		logger.Errorf("MCP server stopped: %v", err)
	}
}
