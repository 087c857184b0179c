package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/marketplace/internal/api"
	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/config"
	"github.com/example/marketplace/internal/partner"
	"github.com/example/marketplace/internal/service"
	"github.com/example/marketplace/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	if err := store.InitSchema(db); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	orderStore := store.NewPostgresOrderStore(db)
	productStore := store.NewPostgresProductStore(db)
	userStore := store.NewPostgresUserStore(db)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	partnerClient := partner.NewClient(cfg.PartnerCancelURL, cfg.PartnerForwardURL, cfg.PartnerTimeout)
	forwardCreds := partner.Credentials{
		ClientID:    cfg.ForwardClientID,
		MerchantID:  cfg.ForwardMerchantID,
		SecurityKey: cfg.ForwardSecurityKey,
	}

	userSvc := service.NewUserService(userStore, jwtService, logger)
	productSvc := service.NewProductService(productStore, logger)
	orderSvc := service.NewOrderService(orderStore, userStore, partnerClient, forwardCreds, logger)

	handlers := api.NewHandlers(userSvc, productSvc, orderSvc, logger)
	router := api.NewRouter(handlers, jwtService, userStore, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
