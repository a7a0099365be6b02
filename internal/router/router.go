package router

import (
	"time"

	"billbuckz/config"
	"billbuckz/internal/handler"
	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"
	"billbuckz/internal/service"
	"billbuckz/pkg/cloudinary"
	"billbuckz/pkg/logger"
	"billbuckz/pkg/payout"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, log *logger.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	cashbackRepo := repository.NewCashbackRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	cashbackSvc := service.NewCashbackService(db, log)
	referralSvc := service.NewReferralService(db, userRepo, referralRepo, log)
	walletSvc := service.NewWalletService(db, cashbackRepo, referralRepo, withdrawalRepo, &payout.ManualProvider{}, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, log)
	invoiceHandler := handler.NewInvoiceHandler(cashbackSvc, referralSvc, invoiceRepo)
	merchantHandler := handler.NewMerchantHandler(&cfg.Search, merchantRepo)
	referralHandler := handler.NewReferralHandler(referralSvc, userRepo, referralRepo)
	walletHandler := handler.NewWalletHandler(walletSvc, userRepo, cashbackRepo, withdrawalRepo)
	withdrawalHandler := handler.NewWithdrawalHandler(walletSvc, withdrawalRepo)
	userHandler := handler.NewUserHandler(userRepo)
	uploadHandler := handler.NewUploadHandler(&cfg.Cloudinary, cloud)
	payLaterHandler := handler.NewPayLaterHandler(userRepo, invoiceRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		authed := api.Group("")
		authed.Use(authMw)
		{
			authed.POST("/invoices", invoiceHandler.Create)
			authed.GET("/invoices", invoiceHandler.List)
			authed.GET("/invoices/spending", invoiceHandler.Spending)

			authed.GET("/merchants/search", merchantHandler.Search)
			authed.GET("/merchants/nearby", merchantHandler.Nearby)

			authed.POST("/referral/apply", referralHandler.Apply)
			authed.GET("/referral/status", referralHandler.Status)
			authed.GET("/referral/check", referralHandler.Check)

			authed.GET("/wallet", walletHandler.Summary)
			authed.GET("/wallet/cashbacks", walletHandler.Cashbacks)
			authed.POST("/wallet/withdraw", withdrawalHandler.Create)
			authed.GET("/wallet/withdrawals", withdrawalHandler.List)

			authed.GET("/me/profile", userHandler.Profile)
			authed.PATCH("/me/profile", userHandler.UpdateProfile)

			authed.POST("/upload/invoice", uploadHandler.UploadInvoiceImage)
			authed.GET("/paylater/eligibility", payLaterHandler.Eligibility)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/merchants", merchantHandler.Create)
			admin.PATCH("/invoices/:id/status", invoiceHandler.Moderate)
			admin.PATCH("/withdrawals/:id/status", withdrawalHandler.Resolve)
		}
	}

	return r
}
