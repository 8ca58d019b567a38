package middleware

import (
	"errors"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"mealmatch-backend/domain"
	"mealmatch-backend/internal/api/presenters"
	"mealmatch-backend/internal/utils"
	"mealmatch-backend/pkg/docstore"
	"mealmatch-backend/pkg/user"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		AuthMiddleware() fiber.Handler
	}

	middleware struct {
		authClient     *auth.Client
		userRepository user.UserRepository
	}
)

func NewMiddleware(authClient *auth.Client, userRepository user.UserRepository) Middleware {
	return &middleware{
		authClient:     authClient,
		userRepository: userRepository,
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	origins := utils.GetConfig("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	})
}

// AuthMiddleware verifies the Firebase ID token and loads the caller's
// profile so handlers get the role without another lookup. Locals set:
// user_id, email, name, email_verified, role.
func (m *middleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}
		idToken := strings.TrimPrefix(header, "Bearer ")
		if idToken == header {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		token, err := m.authClient.VerifyIDToken(c.Context(), idToken)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid)
		}

		email, _ := token.Claims["email"].(string)
		emailVerified, _ := token.Claims["email_verified"].(bool)

		c.Locals("user_id", token.UID)
		c.Locals("email", email)
		c.Locals("email_verified", emailVerified)

		// Role and display name live in the profile document. A user who
		// has not registered yet gets empty values; the registration
		// endpoint is the only one that works in that state.
		profile, err := m.userRepository.GetUserByID(c.Context(), token.UID)
		if err != nil {
			if !errors.Is(err, docstore.ErrNotFound) {
				return presenters.ErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageFailedProcessRequest, domain.ErrBackendUnavailable)
			}
			c.Locals("name", "")
			c.Locals("role", "")
			return c.Next()
		}

		c.Locals("name", profile.Name)
		c.Locals("role", profile.Role)
		return c.Next()
	}
}
