package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/lampctl/internal/ble"
	"github.com/chaz8081/lampctl/internal/config"
	"github.com/chaz8081/lampctl/internal/httpapi"
	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/logging"
	"github.com/chaz8081/lampctl/internal/mdns"
	"github.com/chaz8081/lampctl/internal/profile"
	"github.com/chaz8081/lampctl/internal/schedule"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/lampctl/config.yaml)")
	initConfig := flag.Bool("init", false, "write the default config file and exit")
	address := flag.String("address", "", "lamp address (overrides config, environment and mode store)")
	flag.Parse()

	if *initConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("init: %v", err)
		}
		if path == "" {
			fmt.Println("Config already exists at", config.DefaultConfigPath())
			return
		}
		fmt.Println("Wrote", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	fromEnv := cfg.ApplyEnv()
	if *address != "" {
		cfg.Device.Address = *address
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mode store
	store, err := profile.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open mode store: %v", err)
	}
	defer store.Close()

	// A remembered address in the mode store beats the config file, but not
	// an explicit flag or environment variable.
	if *address == "" && !fromEnv {
		stored, err := store.Address(ctx)
		if err != nil {
			logger.Warn("[PROFILE] reading stored address", "error", err)
		} else if stored != "" {
			cfg.Device.Address = stored
		}
	}

	printBanner(cfg)

	// Bluetooth transport
	transport, closeTransport, err := ble.Open(cfg.BLE.Transport, cfg.BLE.AdapterID)
	if err != nil {
		log.Fatalf("Failed to open bluetooth transport: %v", err)
	}
	defer closeTransport()
	transport = ble.WithConnectBreaker(transport, cfg.BLE.ConnectBreaker, logger)

	ctrl := lamp.NewController(transport, lamp.Options{
		Address:         cfg.Device.Address,
		Characteristics: cfg.Device.Characteristics,
		ScanDuration:    cfg.BLE.ScanDuration,
		Logger:          logger,
	})
	defer ctrl.Close()

	if cfg.Device.ConnectOnStart {
		if err := ctrl.Connect(ctx, ""); err != nil {
			logger.Warn("[LAMP] initial connect failed, continuing", "error", err)
		}
	}

	manager := profile.NewManager(store, ctrl, logger)

	sched, err := schedule.New(cfg.Schedules, ctrl, manager, logger)
	if err != nil {
		log.Fatalf("schedules: %v", err)
	}
	sched.Start(ctx)
	defer sched.Stop()

	ln, err := net.Listen("tcp", cfg.HTTP.Listen)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.HTTP.Listen, err)
	}

	if cfg.MDNS.Enabled {
		port := ln.Addr().(*net.TCPAddr).Port
		meta := map[string]string{"address": cfg.Device.Address, "path": "/"}
		go func() {
			if err := mdns.Advertise(ctx, logger, cfg.MDNS.Instance, port, meta); err != nil {
				logger.Error("[MDNS] advertise failed", "error", err)
			}
		}()
	}

	srv := httpapi.New(ctrl, manager, cfg.HTTP.RateLimit, logger)
	log.Println("Ready! Ctrl+C to quit.")
	if err := srv.Serve(ctx, ln); err != nil {
		logger.Error("[HTTP] server stopped", "error", err)
	}

	log.Println("Goodbye!")
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	log.Println("No config file found, using defaults (run with -init to write one)")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	addr := cfg.Device.Address
	if addr == "" {
		addr = "(not set, use /connect?address=)"
	}
	adapter := cfg.BLE.AdapterID
	if adapter == "" {
		adapter = "default"
	}
	fmt.Println("=== lampctl ===")
	fmt.Printf("  Lamp:     %s\n", addr)
	fmt.Printf("  BLE:      %s (adapter %s, scan %s)\n", cfg.BLE.Transport, adapter, cfg.BLE.ScanDuration)
	fmt.Printf("  Store:    %s %s\n", cfg.Store.Driver, cfg.Store.Path)
	fmt.Printf("  HTTP:     %s\n", cfg.HTTP.Listen)
	fmt.Printf("  mDNS:     %t\n", cfg.MDNS.Enabled)
	fmt.Printf("  Schedule: %d entries\n", len(cfg.Schedules))
	fmt.Printf("  Log:      %s\n", cfg.Log.Level)
	fmt.Println("===============")
}
