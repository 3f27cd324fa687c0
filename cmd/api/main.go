package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicing-backend/config"
	"invoicing-backend/internal/adapter/blob"
	"invoicing-backend/internal/adapter/cache"
	httpHandler "invoicing-backend/internal/adapter/http/handler"
	"invoicing-backend/internal/adapter/queue"
	pgStorage "invoicing-backend/internal/adapter/storage/postgres"
	redisStorage "invoicing-backend/internal/adapter/storage/redis"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/internal/service"
	"invoicing-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Invoicing Backend")

	ctx := context.Background()

	// --- Storage ---
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// --- Repositories ---
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	settingsRepo := pgStorage.NewBusinessSettingsRepo(pool)
	methodRepo := pgStorage.NewPaymentMethodRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	customerRepo := pgStorage.NewCustomerRepo(pool)
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	accessLogRepo := pgStorage.NewAccessLogRepo(pool)
	auditLogRepo := pgStorage.NewAuditLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// --- In-process adapters ---
	ttlCache := cache.New(1 * time.Minute)
	asyncQueue := queue.New(256, log)

	var blobSvc ports.BlobService
	if cfg.Blob.CloudinaryURL != "" {
		cloudinarySvc, err := blob.NewCloudinaryService(cfg.Blob.CloudinaryURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Cloudinary blob service")
		}
		blobSvc = cloudinarySvc
	}

	// --- Core security/crypto services ---
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// --- Outbound adapters ---
	notifierSvc := service.NewSMTPNotifierService(service.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.Server.BaseURL,
	}, log)

	gatewaySvc := service.NewGatewayService(cfg.Gateway.BaseURL, &http.Client{Timeout: 10 * time.Second}, sigSvc, log)

	// --- Business services ---
	auditSvc := service.NewAuditService(auditLogRepo, log)
	authSvc := service.NewAuthService(merchantRepo, hashSvc, tokenSvc, notifierSvc, auditSvc)
	idMinter := service.NewIdMinterService(invoiceRepo, orderRepo)
	matcher := service.NewCustomerMatcherService(customerRepo)
	metricsSvc := service.NewMetricsService(ttlCache)

	invoiceSvc := service.NewInvoiceLifecycleService(
		invoiceRepo,
		orderRepo,
		productRepo,
		settingsRepo,
		methodRepo,
		merchantRepo,
		idMinter,
		matcher,
		gatewaySvc,
		asyncQueue,
		auditSvc,
		transactor,
		encSvc,
		log,
	)
	orderSvc := service.NewOrderService(orderRepo)
	productSvc := service.NewProductService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)

	var profileSvc ports.MerchantProfileService
	if blobSvc != nil {
		profileSvc = service.NewMerchantProfileService(settingsRepo, methodRepo, encSvc, blobSvc, auditSvc)
	}

	_ = accessLogRepo // recorded by the portal handlers' future access-log middleware; wired for storage only today

	// --- Rate limiting & health ---
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		InvoiceSvc:     invoiceSvc,
		OrderSvc:       orderSvc,
		ProductSvc:     productSvc,
		CustomerSvc:    customerSvc,
		ProfileSvc:     profileSvc,
		AuditSvc:       auditSvc,
		MetricsSvc:     metricsSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ReleaseMode:    cfg.Server.Mode == "release",
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
