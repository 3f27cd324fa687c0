package handler

import (
	"invoicing-backend/internal/adapter/http/middleware"
	redisStore "invoicing-backend/internal/adapter/storage/redis"
	"invoicing-backend/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	InvoiceSvc      ports.InvoiceLifecycleService
	OrderSvc        ports.OrderService
	ProductSvc      ports.ProductService
	CustomerSvc     ports.CustomerService
	ProfileSvc      ports.MerchantProfileService
	AuditSvc        ports.AuditService
	MetricsSvc      ports.MetricsService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AllowedOrigins  []string
	ReleaseMode     bool
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := gin.ReleaseMode
	if !deps.ReleaseMode {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.SecurityHeaders(mode))
	r.Use(middleware.MaxBodySize(5 << 20)) // 5 MB request body limit (logo uploads)
	if deps.MetricsSvc != nil {
		r.Use(middleware.MetricsRecorder(deps.MetricsSvc))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type"}
	r.Use(cors.New(corsConfig))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			rule = rules["general"]
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc)

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth"), authHandler.Register)
		auth.POST("/login", rl("auth"), authHandler.Login)
		auth.GET("/verify-email", rl("auth"), authHandler.VerifyEmail)
		auth.POST("/resend-verification", rl("auth"), authHandler.ResendVerification)
		auth.POST("/password-reset", rl("auth"), authHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", rl("auth"), authHandler.ResetPassword)
	}

	// --- Customer portal (token-gated, no JWT) ---
	portalHandler := NewPortalHandler(deps.InvoiceSvc)
	portal := v1.Group("/portal")
	{
		portal.GET("/invoices/:token", rl("general"), portalHandler.GetByCustomerToken)
		portal.POST("/invoices/:token/payment-confirmation", rl("general"), portalHandler.SubmitPaymentConfirmation)
		portal.GET("/final-payment/:token", rl("general"), portalHandler.GetByFinalPaymentToken)
	}

	// --- Inbound payment-gateway webhook (HMAC-signed, no JWT) ---
	invoiceHandlerForWebhook := NewInvoiceHandler(deps.InvoiceSvc)
	v1.POST("/webhooks/gateway", rl("general"), invoiceHandlerForWebhook.GatewayWebhook)

	// --- JWT-authenticated merchant routes ---
	merchants := v1.Group("/merchants/me", jwtAuth)
	{
		merchants.GET("", rl("general"), authHandler.GetProfile)
		merchants.PUT("", rl("general"), authHandler.UpdateProfile)
		merchants.POST("/change-password", rl("general"), authHandler.ChangePassword)
	}

	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc)
	invoices := v1.Group("/invoices", jwtAuth)
	{
		invoices.POST("/preview", rl("ai_pdf"), invoiceHandler.Preview)
		invoices.POST("", rl("general"), invoiceHandler.Create)
		invoices.GET("", rl("general"), invoiceHandler.List)
		invoices.GET("/number/:number", rl("general"), invoiceHandler.GetByNumber)
		invoices.GET("/:id", rl("general"), invoiceHandler.Get)
		invoices.POST("/:id/send", rl("general"), invoiceHandler.Send)
		invoices.POST("/:id/cancel", rl("general"), invoiceHandler.Cancel)
		invoices.POST("/:id/approve-payment", rl("general"), invoiceHandler.ApprovePaymentConfirmation)
		invoices.POST("/:id/reject-payment", rl("general"), invoiceHandler.RejectPaymentConfirmation)
		invoices.POST("/:id/confirm-down-payment", rl("general"), invoiceHandler.ConfirmDownPayment)
	}

	orderHandler := NewOrderHandler(deps.OrderSvc, deps.InvoiceSvc)
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.GET("", rl("general"), orderHandler.List)
		orders.GET("/:id", rl("general"), orderHandler.Get)
		orders.POST("/sync", rl("general"), orderHandler.Sync)
	}

	productHandler := NewProductHandler(deps.ProductSvc)
	products := v1.Group("/products", jwtAuth)
	{
		products.POST("", rl("general"), productHandler.Create)
		products.GET("", rl("general"), productHandler.List)
		products.GET("/:id", rl("general"), productHandler.Get)
		products.PUT("/:id", rl("general"), productHandler.Update)
		products.DELETE("/:id", rl("general"), productHandler.Delete)
	}

	customerHandler := NewCustomerHandler(deps.CustomerSvc)
	customers := v1.Group("/customers", jwtAuth)
	{
		customers.GET("", rl("general"), customerHandler.Search)
		customers.GET("/:id", rl("general"), customerHandler.Get)
	}

	businessHandler := NewBusinessHandler(deps.ProfileSvc)
	business := v1.Group("/business", jwtAuth)
	{
		business.GET("/settings", rl("general"), businessHandler.GetSettings)
		business.PUT("/tax", rl("general"), businessHandler.UpdateTax)
		business.PUT("/branding", rl("general"), businessHandler.UpdateBranding)
		business.POST("/logo", rl("general"), businessHandler.UploadLogo)
		business.DELETE("/logo", rl("general"), businessHandler.RemoveLogo)
		business.GET("/payment-methods", rl("general"), businessHandler.ListPaymentMethods)
		business.POST("/payment-methods", rl("general"), businessHandler.SavePaymentMethod)
	}

	if deps.AuditSvc != nil {
		auditHandler := NewAuditHandler(deps.AuditSvc)
		v1.GET("/audit-log", jwtAuth, rl("general"), auditHandler.List)
	}

	if deps.MetricsSvc != nil {
		metricsHandler := NewMetricsHandler(deps.MetricsSvc)
		v1.GET("/metrics", jwtAuth, rl("general"), metricsHandler.Snapshot)
	}

	return r
}
