package config

import (
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"mealmatch-backend/internal/api/handlers"
	"mealmatch-backend/internal/api/routes"
	"mealmatch-backend/internal/middleware"
	"mealmatch-backend/internal/utils"
	"mealmatch-backend/internal/utils/mailing"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/docstore"
	"mealmatch-backend/pkg/foodpost"
	"mealmatch-backend/pkg/user"
)

func NewApp(firestoreClient *firestore.Client, authClient *auth.Client) (*fiber.App, *foodpost.Sweeper, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer := mailing.NewMailer()
	store := docstore.NewFirestoreStore(firestoreClient)

	// Repository
	userRepository := user.NewUserRepository(store)
	foodPostRepository := foodpost.NewFoodPostRepository(store)

	// Service
	userService := user.NewUserService(userRepository, s3)
	foodPostService := foodpost.NewFoodPostService(foodPostRepository, userRepository, s3, mailer)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	foodPostHandler := handlers.NewFoodPostHandler(foodPostService, validator)

	middlewares := middleware.NewMiddleware(authClient, userRepository)

	// routes
	routesConfig := routes.Config{
		App:             app,
		FoodPostHandler: foodPostHandler,
		UserHandler:     userHandler,
		Middleware:      middlewares,
	}
	routesConfig.Setup()

	sweeper, err := foodpost.NewSweeper(utils.GetConfig("SWEEP_SCHEDULE"), foodPostService)
	if err != nil {
		return nil, nil, err
	}

	return app, sweeper, nil
}
