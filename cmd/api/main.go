package main

import (
	"context"
	"log"
	"os"

	"github.com/willtrojniak/TabApp/internal/auth"
	"github.com/willtrojniak/TabApp/internal/catalog"
	"github.com/willtrojniak/TabApp/internal/db"
	"github.com/willtrojniak/TabApp/internal/event"
	"github.com/willtrojniak/TabApp/internal/middleware"
	"github.com/willtrojniak/TabApp/internal/shop"
	"github.com/willtrojniak/TabApp/internal/storage"
	"github.com/willtrojniak/TabApp/internal/tab"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using process environment")
		}
	}

	// Validate JWT_SECRET early (fail fast)
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	log.Println("Environment loaded successfully")

	// Create Gin router
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Database connection
	pgDB := db.ConnectPostgres()

	// Object storage for exported bill statements
	r2, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("Failed to set up object storage:", err)
	}

	// Event publisher; falls back to logging when no broker is configured
	var events event.Publisher = event.LogPublisher{}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		np, err := event.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatal("Failed to connect to NATS:", err)
		}
		defer np.Close()
		events = np
		log.Println("✅ Connected to NATS")
	}

	// Auth dependencies
	userRepo := auth.NewPostgresUserRepository(pgDB)
	authService := auth.NewService(userRepo)
	authHandler := auth.NewHandler(authService)

	// Shops, catalog and tabs
	shopRepo := shop.NewPostgresRepository(pgDB)
	shopService := shop.NewService(shopRepo)
	shopHandler := shop.NewHandler(shopService)

	catalogRepo := catalog.NewPostgresRepository(pgDB)
	catalogService := catalog.NewService(catalogRepo, shopService)
	catalogHandler := catalog.NewHandler(catalogService)

	tabRepo := tab.NewPostgresRepository(pgDB)
	tabService := tab.NewService(tabRepo, shopService, catalogService, events, r2)
	tabHandler := tab.NewHandler(tabService)

	// Public Auth Routes
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())

	users := api.Group("/users")
	{
		users.GET("/me", authHandler.GetProfile)
		users.PUT("/me", authHandler.UpdateProfile)
	}

	shops := api.Group("/shops")
	{
		shops.POST("", shopHandler.CreateShop)
		shops.GET("", shopHandler.ListShops)
		shops.GET("/:shopId", shopHandler.GetShop)
		shops.PUT("/:shopId", shopHandler.UpdateShop)
		shops.DELETE("/:shopId", shopHandler.DeleteShop)

		shops.GET("/:shopId/users", shopHandler.ListMembers)
		shops.POST("/:shopId/users", shopHandler.InviteMember)
		shops.PUT("/:shopId/users/confirm", shopHandler.ConfirmMembership)
		shops.PUT("/:shopId/users/:userId", shopHandler.UpdateMemberRoles)
		shops.DELETE("/:shopId/users/:userId", shopHandler.RemoveMember)

		shops.POST("/:shopId/locations", shopHandler.CreateLocation)
		shops.PUT("/:shopId/locations/:locationId", shopHandler.UpdateLocation)
		shops.DELETE("/:shopId/locations/:locationId", shopHandler.DeleteLocation)
	}

	// CATALOG MODULE
	{
		shops.GET("/:shopId/items", catalogHandler.ListItems)
		shops.POST("/:shopId/items", catalogHandler.CreateItem)
		shops.GET("/:shopId/items/:itemId", catalogHandler.GetItem)
		shops.PUT("/:shopId/items/:itemId", catalogHandler.UpdateItem)
		shops.DELETE("/:shopId/items/:itemId", catalogHandler.DeleteItem)

		shops.POST("/:shopId/items/:itemId/variants", catalogHandler.CreateVariant)
		shops.PUT("/:shopId/items/:itemId/variants/:variantId", catalogHandler.UpdateVariant)
		shops.DELETE("/:shopId/items/:itemId/variants/:variantId", catalogHandler.DeleteVariant)

		shops.GET("/:shopId/categories", catalogHandler.ListCategories)
		shops.POST("/:shopId/categories", catalogHandler.CreateCategory)
		shops.PUT("/:shopId/categories/:categoryId", catalogHandler.UpdateCategory)
		shops.DELETE("/:shopId/categories/:categoryId", catalogHandler.DeleteCategory)

		shops.GET("/:shopId/substitutions", catalogHandler.ListSubstitutionGroups)
		shops.POST("/:shopId/substitutions", catalogHandler.CreateSubstitutionGroup)
		shops.PUT("/:shopId/substitutions/:groupId", catalogHandler.UpdateSubstitutionGroup)
		shops.DELETE("/:shopId/substitutions/:groupId", catalogHandler.DeleteSubstitutionGroup)
	}

	// TAB MODULE
	{
		shops.POST("/:shopId/tabs", tabHandler.CreateTab)
		shops.GET("/:shopId/tabs", tabHandler.ListTabs)
		shops.GET("/:shopId/tabs/:tabId", tabHandler.GetTab)
		shops.PUT("/:shopId/tabs/:tabId", tabHandler.UpdateTab)

		shops.POST("/:shopId/tabs/:tabId/approve", tabHandler.ApproveTab)
		shops.POST("/:shopId/tabs/:tabId/close", tabHandler.CloseTab)
		shops.POST("/:shopId/tabs/:tabId/add-order", tabHandler.AddOrder)
		shops.POST("/:shopId/tabs/:tabId/remove-order", tabHandler.RemoveOrder)

		shops.POST("/:shopId/tabs/:tabId/bills/:billId/close", tabHandler.CloseBill)
		shops.POST("/:shopId/tabs/:tabId/bills/:billId/export", tabHandler.ExportBill)
	}

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Start server
	log.Println("Server running on http://localhost:8000")
	if err := r.Run(":8000"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
