package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"saleshub-system/config"
	"saleshub-system/internal/audit"
	"saleshub-system/internal/handlers"
	"saleshub-system/internal/middleware"
	"saleshub-system/internal/permissions"
	"saleshub-system/internal/store"
)

type appStores struct {
	users     *store.UserStore
	employees *store.EmployeeStore
	products  *store.ProductStore
	customers *store.CustomerStore
	sales     *store.SalesStore
}

func buildRouter(cfg config.Config, rdb *redis.Client, stores appStores, listener *audit.Listener) *gin.Engine {
	r := gin.Default()

	middleware.InitMetrics()

	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit())
	r.Use(middleware.PrometheusMiddleware())

	authHandler := handlers.NewAuthHandler(stores.users, rdb, cfg.Auth.TokenTTL)
	employeeHandler := handlers.NewEmployeeHandler(stores.employees)
	productHandler := handlers.NewProductHandler(stores.products)
	customerHandler := handlers.NewCustomerHandler(stores.customers)
	salesHandler := handlers.NewSalesHandler(stores.sales)
	userAdminHandler := handlers.NewUserAdminHandler(stores.users)
	auditHandler := handlers.NewAuditHandler(listener)

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(rdb))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		employees := protected.Group("/employees")
		{
			employees.GET("", middleware.RequirePermission(stores.users, permissions.ViewEmployees), employeeHandler.List)
			employees.GET("/:id", middleware.RequirePermission(stores.users, permissions.ViewEmployees), employeeHandler.Get)
			employees.POST("", middleware.RequirePermission(stores.users, permissions.EditEmployees), employeeHandler.Create)
			employees.PUT("/:id", middleware.RequirePermission(stores.users, permissions.EditEmployees), employeeHandler.Update)
			employees.DELETE("/:id", middleware.RequirePermission(stores.users, permissions.EditEmployees), employeeHandler.Delete)
		}

		products := protected.Group("/products")
		{
			products.GET("", middleware.RequirePermission(stores.users, permissions.ViewProducts), productHandler.List)
			products.GET("/:id", middleware.RequirePermission(stores.users, permissions.ViewProducts), productHandler.Get)
			products.GET("/:id/prices", middleware.RequirePermission(stores.users, permissions.ViewProducts), productHandler.PriceHistory)
			products.GET("/:id/prices/current", middleware.RequirePermission(stores.users, permissions.ViewProducts), productHandler.CurrentPrice)
			products.POST("", middleware.RequirePermission(stores.users, permissions.EditProducts), productHandler.Create)
			products.PUT("/:id", middleware.RequirePermission(stores.users, permissions.EditProducts), productHandler.Update)
			products.DELETE("/:id", middleware.RequirePermission(stores.users, permissions.EditProducts), productHandler.Delete)
			products.POST("/:id/prices", middleware.RequirePermission(stores.users, permissions.EditProducts), productHandler.AppendPrice)
		}

		customers := protected.Group("/customers")
		{
			customers.GET("", middleware.RequirePermission(stores.users, permissions.ViewCustomers), customerHandler.List)
			customers.GET("/:id", middleware.RequirePermission(stores.users, permissions.ViewCustomers), customerHandler.Get)
			customers.POST("", middleware.RequirePermission(stores.users, permissions.EditCustomers), customerHandler.Create)
			customers.PUT("/:id", middleware.RequirePermission(stores.users, permissions.EditCustomers), customerHandler.Update)
			customers.DELETE("/:id", middleware.RequirePermission(stores.users, permissions.EditCustomers), customerHandler.Delete)
		}

		sales := protected.Group("/sales")
		{
			sales.GET("", middleware.RequirePermission(stores.users, permissions.ViewSales), salesHandler.List)
			sales.GET("/:id", middleware.RequirePermission(stores.users, permissions.ViewSales), salesHandler.Get)
			sales.PUT("/:id", middleware.RequirePermission(stores.users, permissions.EditSales), salesHandler.Update)
			sales.DELETE("/:id", middleware.RequirePermission(stores.users, permissions.EditSales), salesHandler.Delete)

			drafts := sales.Group("/drafts")
			drafts.Use(middleware.RequirePermission(stores.users, permissions.EditSales))
			{
				drafts.POST("", salesHandler.CreateDraft)
				drafts.GET("/:id", salesHandler.GetDraft)
				drafts.PUT("/:id", salesHandler.UpdateDraft)
				drafts.POST("/:id/lines", salesHandler.AddLine)
				drafts.PUT("/:id/lines/:line_id", salesHandler.UpdateLine)
				drafts.DELETE("/:id/lines/:line_id", salesHandler.RemoveLine)
				drafts.POST("/:id/submit", salesHandler.SubmitDraft)
			}
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin(stores.users, cfg.Auth.PrivilegedEmail))
		{
			admin.GET("/users", userAdminHandler.ListAccounts)
			admin.PUT("/users/:id/permissions", userAdminHandler.UpdateAccess)
			admin.GET("/audit", auditHandler.List)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
