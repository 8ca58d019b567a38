package routes

import (
	"github.com/gofiber/fiber/v2"

	"mealmatch-backend/internal/api/handlers"
	"mealmatch-backend/internal/middleware"
)

type Config struct {
	App             *fiber.App
	FoodPostHandler handlers.FoodPostHandler
	UserHandler     handlers.UserHandler
	Middleware      middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.FoodPosts()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware())
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Get("/me", c.UserHandler.Me)
		user.Patch("/update", c.UserHandler.UpdateUser)
	}
}

func (c *Config) FoodPosts() {
	foodPosts := c.App.Group("/api/v1/food-posts", c.Middleware.AuthMiddleware())

	foodPosts.Get("/dashboard", c.FoodPostHandler.GetDonorDashboard)

	// Basic CRUD operations
	foodPosts.Post("", c.FoodPostHandler.CreateFoodPost)
	foodPosts.Get("", c.FoodPostHandler.GetFoodPosts)
	foodPosts.Get("/:id", c.FoodPostHandler.GetFoodPostByID)
	foodPosts.Put("/:id", c.FoodPostHandler.UpdateFoodPost)
	foodPosts.Delete("/:id", c.FoodPostHandler.DeleteFoodPost)

	// Lifecycle transitions
	foodPosts.Post("/:id/claim", c.FoodPostHandler.ClaimFoodPost)
	foodPosts.Post("/:id/pickup", c.FoodPostHandler.ConfirmPickup)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
