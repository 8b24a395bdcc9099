package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/cityforge/cityforge/database"
	"github.com/cityforge/cityforge/handlers"
	admin_handlers "github.com/cityforge/cityforge/handlers/admin"
	auth_handlers "github.com/cityforge/cityforge/handlers/auth"
	card_handlers "github.com/cityforge/cityforge/handlers/card"
	forum_handlers "github.com/cityforge/cityforge/handlers/forum"
	helpwanted_handlers "github.com/cityforge/cityforge/handlers/helpwanted"
	resource_handlers "github.com/cityforge/cityforge/handlers/resource"
	review_handlers "github.com/cityforge/cityforge/handlers/review"
	search_handlers "github.com/cityforge/cityforge/handlers/search"
	support_handlers "github.com/cityforge/cityforge/handlers/support"
	upload_handlers "github.com/cityforge/cityforge/handlers/upload"
	"github.com/cityforge/cityforge/services"
	"github.com/cityforge/cityforge/services/storage"
	"github.com/cityforge/cityforge/services/webhook"
	"github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/cache"
	"github.com/cityforge/cityforge/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "cityforge-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the login brute-force counters. Without it the API
	// still runs, just without progressive lockouts.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	memCache := cache.NewMemoryCache(cache.DefaultMemoryCacheSize, cache.DefaultMemoryCacheTTL)
	dispatcher := webhook.NewDispatcher(db)
	emailService := services.NewEmailService()
	mauticService := services.NewMauticService()
	production := os.Getenv("GO_ENV") == "production"

	var imageStore *storage.ImageStore
	if os.Getenv("S3_BUCKET") != "" {
		imageStore, err = storage.NewImageStore(storage.Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize image storage: %v. Uploads will be disabled.", err)
		}
	}

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, mauticService, production)
	cardHandler := card_handlers.NewCardHandler(db, memCache, dispatcher, emailService)
	reviewHandler := review_handlers.NewReviewHandler(db, dispatcher, emailService)
	forumHandler := forum_handlers.NewForumHandler(db, dispatcher, emailService)
	helpWantedHandler := helpwanted_handlers.NewHelpWantedHandler(db)
	resourceHandler := resource_handlers.NewResourceHandler(db, memCache)
	supportHandler := support_handlers.NewSupportHandler(db)
	searchHandler := search_handlers.NewSearchHandler(db)
	uploadHandler := upload_handlers.NewUploadHandler(imageStore)
	adminHandler := admin_handlers.NewAdminHandler(db, memCache, dispatcher)
	healthHandler := handlers.NewHealthHandler(store)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Cookie sessions require the CSRF double-submit check on every
	// state-changing request. Bearer requests are exempt inside the
	// middleware itself.
	app.Use(middleware.CSRFProtection())

	app.Get("/ping", healthHandler.Check)

	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)
	authGroup.Put("/email", authMiddleware.Required(), authHandler.UpdateEmail)
	authGroup.Put("/password", authMiddleware.Required(), authHandler.UpdatePassword)

	// Business directory (public reads, member writes)
	cards := api.Group("/cards")
	cards.Get("/", cardHandler.List)
	cards.Get("/tags", cardHandler.ListTags)
	cards.Get("/mine", authMiddleware.Required(), cardHandler.MySubmissions)
	cards.Get("/:id", cardHandler.Get)
	cards.Post("/", authMiddleware.Required(), cardHandler.Submit)
	cards.Post("/:id/suggest-edit", authMiddleware.Required(), cardHandler.SuggestEdit)

	// Shareable business links
	app.Get("/business/:id/:slug", cardHandler.GetByShareURL)

	// Reviews
	cards.Get("/:id/reviews", reviewHandler.List)
	cards.Get("/:id/reviews/summary", reviewHandler.Summary)
	cards.Post("/:id/reviews", authMiddleware.Required(), reviewHandler.Create)

	reviews := api.Group("/reviews")
	reviews.Get("/mine", authMiddleware.Required(), reviewHandler.MyReviews)
	reviews.Put("/:id", authMiddleware.Required(), reviewHandler.Update)
	reviews.Delete("/:id", authMiddleware.Required(), reviewHandler.Delete)
	reviews.Post("/:id/report", authMiddleware.Required(), reviewHandler.Report)

	// Forum
	forum := api.Group("/forum")
	forum.Get("/categories", forumHandler.ListCategories)
	forum.Post("/categories/request", authMiddleware.Required(), forumHandler.RequestCategory)
	forum.Get("/categories/requests/mine", authMiddleware.Required(), forumHandler.MyCategoryRequests)
	forum.Get("/categories/:id/threads", forumHandler.ListThreads)
	forum.Post("/categories/:id/threads", authMiddleware.Required(), forumHandler.CreateThread)
	forum.Get("/threads/:id", forumHandler.GetThread)
	forum.Delete("/threads/:id", authMiddleware.Required(), forumHandler.DeleteThread)
	forum.Post("/threads/:id/posts", authMiddleware.Required(), forumHandler.CreatePost)
	forum.Post("/threads/:id/report", authMiddleware.Required(), forumHandler.Report)
	forum.Put("/posts/:id", authMiddleware.Required(), forumHandler.UpdatePost)
	forum.Delete("/posts/:id", authMiddleware.Required(), forumHandler.DeletePost)

	// Help wanted board
	helpWanted := api.Group("/help-wanted")
	helpWanted.Get("/", helpWantedHandler.List)
	helpWanted.Get("/:id", helpWantedHandler.Get)
	helpWanted.Post("/", authMiddleware.Required(), helpWantedHandler.Create)
	helpWanted.Post("/:id/close", authMiddleware.Required(), helpWantedHandler.Close)
	helpWanted.Delete("/:id", authMiddleware.Required(), helpWantedHandler.Delete)
	helpWanted.Post("/:id/comments", authMiddleware.Required(), helpWantedHandler.Comment)

	// Community resources (public)
	api.Get("/resources", resourceHandler.List)

	// Sitewide search (public)
	api.Get("/search", searchHandler.Search)

	// Support tickets (member)
	support := api.Group("/support", authMiddleware.Required())
	support.Post("/tickets", supportHandler.Create)
	support.Get("/tickets", supportHandler.MyTickets)
	support.Get("/tickets/:id", supportHandler.Get)
	support.Post("/tickets/:id/messages", supportHandler.Reply)

	// Image uploads (member)
	api.Post("/uploads/image", authMiddleware.Required(), uploadHandler.Image)

	setupAdminRoutes(api, db, authMiddleware, adminHandler)
}

// setupAdminRoutes wires the admin surface. Every state-changing
// route carries an audit-log middleware naming its action/resource.
func setupAdminRoutes(api fiber.Router, db *gorm.DB, authMiddleware *middleware.AuthMiddleware, h *admin_handlers.AdminHandler) {
	admin := api.Group("/admin", authMiddleware.RequireAdmin())

	admin.Get("/stats", h.Stats)
	admin.Get("/audit-logs", h.ListAuditLogs)

	// Cards
	admin.Get("/cards", h.ListCards)
	admin.Post("/cards", middleware.AdminAuditLog(db, "create", "card"), h.CreateCard)
	admin.Put("/cards/:id", middleware.AdminAuditLog(db, "update", "card"), h.UpdateCard)
	admin.Delete("/cards/:id", middleware.AdminAuditLog(db, "delete", "card"), h.DeleteCard)

	// Submissions and modifications
	admin.Get("/submissions", h.ListSubmissions)
	admin.Post("/submissions/:id/approve", middleware.AdminAuditLog(db, "approve", "submission"), h.ApproveSubmission)
	admin.Post("/submissions/:id/reject", middleware.AdminAuditLog(db, "reject", "submission"), h.RejectSubmission)
	admin.Get("/modifications", h.ListModifications)
	admin.Post("/modifications/:id/approve", middleware.AdminAuditLog(db, "approve", "modification"), h.ApproveModification)
	admin.Post("/modifications/:id/reject", middleware.AdminAuditLog(db, "reject", "modification"), h.RejectModification)

	// Review moderation
	admin.Get("/reviews/reported", h.ListReportedReviews)
	admin.Post("/reviews/:id/restore", middleware.AdminAuditLog(db, "restore", "review"), h.RestoreReview)
	admin.Delete("/reviews/:id", middleware.AdminAuditLog(db, "delete", "review"), h.DeleteReview)

	// Users
	admin.Get("/users", h.ListUsers)
	admin.Put("/users/:id", middleware.AdminAuditLog(db, "update", "user"), h.UpdateUser)
	admin.Post("/users/:id/reset-password", middleware.AdminAuditLog(db, "reset_password", "user"), h.ResetUserPassword)

	// Tags
	admin.Get("/tags", h.ListTags)
	admin.Post("/tags", middleware.AdminAuditLog(db, "create", "tag"), h.CreateTag)
	admin.Put("/tags/:id", middleware.AdminAuditLog(db, "update", "tag"), h.RenameTag)
	admin.Delete("/tags/:id", middleware.AdminAuditLog(db, "delete", "tag"), h.DeleteTag)

	// Resources
	admin.Post("/resources/categories", middleware.AdminAuditLog(db, "create", "resource_category"), h.CreateResourceCategory)
	admin.Put("/resources/categories/:id", middleware.AdminAuditLog(db, "update", "resource_category"), h.UpdateResourceCategory)
	admin.Delete("/resources/categories/:id", middleware.AdminAuditLog(db, "delete", "resource_category"), h.DeleteResourceCategory)
	admin.Post("/resources/items", middleware.AdminAuditLog(db, "create", "resource_item"), h.CreateResourceItem)
	admin.Put("/resources/items/:id", middleware.AdminAuditLog(db, "update", "resource_item"), h.UpdateResourceItem)
	admin.Delete("/resources/items/:id", middleware.AdminAuditLog(db, "delete", "resource_item"), h.DeleteResourceItem)
	admin.Put("/resources/quick-access", middleware.AdminAuditLog(db, "upsert", "quick_access"), h.UpsertQuickAccess)

	// Forum moderation
	admin.Get("/forum/category-requests", h.ListCategoryRequests)
	admin.Post("/forum/category-requests/:id/approve", middleware.AdminAuditLog(db, "approve", "category_request"), h.ApproveCategoryRequest)
	admin.Post("/forum/category-requests/:id/reject", middleware.AdminAuditLog(db, "reject", "category_request"), h.RejectCategoryRequest)
	admin.Get("/forum/reports", h.ListForumReports)
	admin.Post("/forum/reports/:id/resolve", middleware.AdminAuditLog(db, "resolve", "forum_report"), h.ResolveForumReport)
	admin.Put("/forum/threads/:id/moderate", middleware.AdminAuditLog(db, "moderate", "forum_thread"), h.ModerateThread)

	// Site settings
	admin.Get("/settings", h.ListSettings)
	admin.Put("/settings", middleware.AdminAuditLog(db, "update", "settings"), h.UpdateSettings)

	// Webhooks
	admin.Get("/webhooks", h.ListWebhooks)
	admin.Post("/webhooks", middleware.AdminAuditLog(db, "create", "webhook"), h.CreateWebhook)
	admin.Put("/webhooks/:id", middleware.AdminAuditLog(db, "update", "webhook"), h.UpdateWebhook)
	admin.Delete("/webhooks/:id", middleware.AdminAuditLog(db, "delete", "webhook"), h.DeleteWebhook)
	admin.Post("/webhooks/:id/test", middleware.AdminAuditLog(db, "test", "webhook"), h.TestWebhook)
	admin.Get("/webhooks/:id/deliveries", h.ListWebhookDeliveries)

	// Support tickets
	admin.Get("/tickets", h.ListTickets)
	admin.Get("/tickets/:id", h.GetTicket)
	admin.Put("/tickets/:id", middleware.AdminAuditLog(db, "update", "ticket"), h.UpdateTicket)
	admin.Post("/tickets/:id/messages", middleware.AdminAuditLog(db, "reply", "ticket"), h.ReplyTicket)

	// Data export/import
	admin.Get("/export", h.ExportData)
	admin.Post("/import", middleware.AdminAuditLog(db, "import", "directory"), h.ImportData)
}
