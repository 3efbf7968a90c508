package main

import (
	"log"
	"os"

	"github.com/dm-gthb/listly/config"
	"github.com/dm-gthb/listly/handlers"
	"github.com/dm-gthb/listly/internal/storage"
	"github.com/dm-gthb/listly/middleware"
	"github.com/dm-gthb/listly/utils"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	if os.Getenv("DB_RESET") == "true" {
		if err := config.ResetAndMigrate(db); err != nil {
			log.Fatal("Failed to reset database:", err)
		}
	} else if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	store, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to init image storage:", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Listly Backend",
		ServerHeader: "Listly Backend Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default 500 statuscode
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			// Retrieve the custom statuscode if it's a *fiber.Error
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": msg,
			})
		},
	})

	middleware.SetupMiddleware(app)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	authHandler := handlers.NewAuthHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	listingHandler := handlers.NewListingHandler(db, store)
	commentHandler := handlers.NewCommentHandler(db)
	imageHandler := handlers.NewImageHandler(store)

	api := app.Group("/api")

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	api.Get("/categories", categoryHandler.GetCategories)
	api.Get("/categories/:id/attributes", categoryHandler.GetCategoryAttributes)
	api.Get("/categories/:id/listings", listingHandler.ListByCategory)

	api.Get("/listings/latest", listingHandler.GetLatest)
	api.Get("/listings/search", listingHandler.Search)
	api.Get("/listings/:id", listingHandler.GetListing)
	api.Get("/listings/:id/comments", commentHandler.GetComments)
	api.Get("/images/:key", imageHandler.GetImage)

	api.Get("/my/listings", utils.AuthMiddleware, listingHandler.GetMyListings)
	api.Post("/listings", utils.AuthMiddleware, listingHandler.CreateListing)
	api.Put("/listings/:id", utils.AuthMiddleware, listingHandler.UpdateListing)
	api.Delete("/listings/:id", utils.AuthMiddleware, listingHandler.DeleteListing)
	api.Post("/listings/:id/comments", utils.AuthMiddleware, commentHandler.CreateComment)

	middleware.SetupErrorHandler(app)

	log.Printf("🚀 Server starting on host %s in port %s mode", cfg.HOST, cfg.AppPort)

	if err := app.Listen(cfg.HOST + ":" + cfg.AppPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
