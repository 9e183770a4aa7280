package handlers

import (
	"github.com/civicworks/grievance_redressal_app/cmd/docs"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/civicworks/grievance_redressal_app/internal/platform/config"
	"github.com/civicworks/grievance_redressal_app/internal/platform/metrics"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	hub *realtime.Hub,
) {
	RegisterCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, hub)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	hub *realtime.Hub,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Delegate route registration to specific handlers, passing required services
	RegisterGrievanceRoutes(v1, services.Grievance, services.Voting)
	registerWorkerRoutes(v1, services.User, services.Grievance, services.Workflow, services.Assignment)
	registerAdminRoutes(v1, services)
	registerRealtimeRoutes(v1, hub)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// RegisterCustomValidators teaches the binding engine the grievance enums so
// bad categories and priorities fail at bind time.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("grievancecategory", func(fl validator.FieldLevel) bool {
		switch domain.GrievanceCategory(fl.Field().String()) {
		case domain.CategoryRoad, domain.CategoryWater, domain.CategorySanitation, domain.CategoryElectricity, domain.CategoryOther:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("grievancepriority", func(fl validator.FieldLevel) bool {
		switch domain.GrievancePriority(fl.Field().String()) {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
			return true
		}
		return false
	})
}
