package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"twstock-observer/src/config"
	"twstock-observer/src/data_source/finmind"
	"twstock-observer/src/data_source/yahoo"
	"twstock-observer/src/interfaces"
	"twstock-observer/src/logger"
	"twstock-observer/src/network"
	"twstock-observer/src/resolver"
	"twstock-observer/src/server"
	"twstock-observer/src/summary"
	"twstock-observer/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Setup components
	var netMgr interfaces.INetworkManager = network.NewRetryingNetworkManager(cfg.MConfig, appLogger)

	priceSource := yahoo.NewYahooFinanceSource(cfg.MConfig, netMgr)
	chipSource := finmind.NewFinMindSource(cfg.MConfig, netMgr)
	tickerResolver := resolver.NewTickerResolver(cfg.MConfig, priceSource)
	taiwanCalendar := utils.NewTaiwanCalendar()

	// The narrative feature is optional; the dashboard renders without it.
	var narrator interfaces.INarrator
	if cfg.Narrative.Enabled {
		gemini, err := summary.NewGeminiNarrator(cfg.MConfig)
		if err != nil {
			appLogger.Warning("Narrative feature disabled: %v", err)
		} else {
			narrator = gemini
		}
	}

	views := server.NewViewBuilder(cfg.MConfig, tickerResolver, chipSource, narrator, taiwanCalendar)
	srv := server.NewDashboardServer(cfg.MConfig, appLogger, views)

	// Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	appLogger.Info("Shutting down...")
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown error: %v", err)
	}
}
