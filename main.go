package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/takumaeat/takumaeat-app/config"
	"github.com/takumaeat/takumaeat-app/database"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/router"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

func main() {
	// .env opsional, environment production memakai env variables langsung
	_ = godotenv.Load()

	utils.InitLogger()
	cfg := config.Load()

	if err := cfg.Midtrans.Validate(); err != nil {
		utils.InfoLogger.Warnf("Midtrans config incomplete, gateway payments disabled: %v", err)
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect database: %v", err)
	}
	utils.InitDB(db)

	if err := db.AutoMigrate(
		&models.User{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Branch{},
		&models.Address{},
		&models.Promo{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.CheckoutDraft{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := database.Seed(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}

	r := router.SetupRouter(db, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopChecker := make(chan struct{})
	payments := services.NewPaymentService(db)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		utils.InfoLogger.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		payments.StartTimeoutChecker(stopChecker)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		close(stopChecker)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		utils.InfoLogger.Info("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped with error: %v", err)
	}
	utils.InfoLogger.Info("Server stopped")
}
