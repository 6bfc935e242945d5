package router

import (
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/config"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/handler"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/infra"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/middleware"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the pre-wired services and infrastructure handles. The
// object graph is assembled once in main; the router only mounts routes.
type Deps struct {
	Pricing   service.PricingService
	Advisor   service.AdvisorService
	Analytics service.AnalyticsService
	DB        *gorm.DB
	Redis     *redis.Client
	MLBreaker *infra.SidecarBreaker
}

// New returns a configured Gin engine.
// Reads are public; mutations require a JWT with the admin role.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	pricingH := handler.NewPricingHandler(deps.Pricing, deps.Advisor)
	analyticsH := handler.NewAnalyticsHandler(deps.Analytics)

	r.GET("/health", handler.Health(deps.DB, deps.Redis, deps.MLBreaker))

	pricing := r.Group("/api/pricing")
	{
		pricing.GET("/items", pricingH.List)
		pricing.GET("/items/:productId", pricingH.Get)
		pricing.GET("/supplier/:supplierId", pricingH.ListBySupplier)
		pricing.GET("/history/:productId", pricingH.History)

		pricing.GET("/analytics", analyticsH.Summary)
		pricing.GET("/summary-cards", analyticsH.SummaryCards)
		pricing.GET("/ml-performance", analyticsH.MLPerformance)
		pricing.GET("/ml-factors/:productId", analyticsH.PriceFactors)
		pricing.GET("/time-demand/:productId", analyticsH.TimeOfDayDemand)
		pricing.GET("/ml-analytics/:productId", analyticsH.MLAnalytics)

		admin := pricing.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))
		{
			admin.POST("/items", pricingH.Upsert)
			admin.PUT("/update/:productId", pricingH.UpdatePrice)

			// Optimization is the expensive path — tighter rate limit
			admin.POST("/optimize/:productId", middleware.OptimizeRateLimiter(), pricingH.Optimize)
			admin.POST("/optimize", pricingH.OptimizeFleet)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
