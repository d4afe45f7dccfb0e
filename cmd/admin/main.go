package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storefront/gateway"
	"github.com/example/storefront/pkg/app"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/logger"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", "config/admin.yaml", "path to the admin config file")
	pflag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(false); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	// Setup logger
	log, err := logger.New(cfg.Log, cfg.Server.Name)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting admin API",
		zap.Int("port", cfg.Server.Port),
		zap.String("host", cfg.Server.Host))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := app.NewBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize backend", zap.Error(err))
	}
	defer backend.Close(context.Background())
	backend.Register(ctx)

	images, err := repository.NewDiskImageStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		log.Fatal("Failed to open upload directory", zap.Error(err))
	}

	store := backend.Store
	gw := gateway.NewGateway(cfg, log)
	gw.SetupAdminRoutes(gateway.AdminServices{
		Catalog:  service.NewCatalogService(store, images, store, cfg.Uploads.MaxImages, log),
		SiteInfo: service.NewSiteInfoService(store, store, log),
		Users:    service.NewUserAdminService(store, store),
		Orders:   service.NewOrderService(store, store, store, backend.Notifier, log),
		Images:   images.FileSystem(),
	})

	// Start gateway in goroutine
	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-gwErr:
		log.Error("Gateway error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down gateway", zap.Error(err))
	}

	log.Info("Admin API stopped")
}
