package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-api/auth"
	"ecommerce-api/config"
	"ecommerce-api/controllers"
	"ecommerce-api/mailer"
	"ecommerce-api/middleware"
	"ecommerce-api/routes"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	level, _ := cfg.Log.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	const op = "main.run"
	log := slog.With("op", op)
	log.Info("starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return err
	}

	var resetMailer services.ResetMailer = mailer.LogMailer{}
	if cfg.SMTP.Addr != "" {
		resetMailer = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Addr:     cfg.SMTP.Addr,
			Host:     cfg.SMTP.Host,
			From:     cfg.SMTP.From,
			Password: cfg.SMTP.Password,
		})
	}

	userSvc := services.NewUserService(store.users, tokens, auth.BcryptHasher{Cost: cfg.Auth.BcryptCost}, resetMailer,
		services.UserServiceConfig{
			ResetTokenTTL: cfg.Auth.ResetTokenTTL,
			FrontendURL:   cfg.App.FrontendURL,
		})
	cartSvc := services.NewCartService(store.users, store.products)
	orderSvc := services.NewOrderService(store.users, store.products, store.orders,
		services.OrderServiceConfig{ReserveStock: cfg.Checkout.ReserveStock})
	productSvc := services.NewProductService(store.products, store.brands, store.categories)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(cfg.CORS.AllowedOrigins))
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:       controllers.NewAuthController(userSvc, tokens.RefreshTTL()),
		Users:      controllers.NewUserAdminController(userSvc),
		Cart:       controllers.NewCartController(cartSvc),
		Orders:     controllers.NewOrderController(orderSvc),
		Products:   controllers.NewProductController(productSvc),
		Brands:     controllers.NewBrandController(services.NewBrandService(store.brands)),
		Categories: controllers.NewCategoryController(services.NewCategoryService(store.categories)),
		Health:     store.ping,
	}, tokens)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: listen: %w", op, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("closing http server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: shutdown: %w", op, err)
		}
		log.Info("http server is closed")
		return nil
	})
	return g.Wait()
}
