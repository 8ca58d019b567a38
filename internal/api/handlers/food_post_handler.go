package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mealmatch-backend/domain"
	"mealmatch-backend/internal/api/presenters"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/foodpost"
)

type (
	FoodPostHandler interface {
		CreateFoodPost(c *fiber.Ctx) error
		GetFoodPosts(c *fiber.Ctx) error
		GetDonorDashboard(c *fiber.Ctx) error
		GetFoodPostByID(c *fiber.Ctx) error
		ClaimFoodPost(c *fiber.Ctx) error
		ConfirmPickup(c *fiber.Ctx) error
		UpdateFoodPost(c *fiber.Ctx) error
		DeleteFoodPost(c *fiber.Ctx) error
	}

	foodPostHandler struct {
		foodPostService foodpost.FoodPostService
		validator       *validator.Validate
	}
)

func NewFoodPostHandler(foodPostService foodpost.FoodPostService, validator *validator.Validate) FoodPostHandler {
	return &foodPostHandler{
		foodPostService: foodPostService,
		validator:       validator,
	}
}

// actingUser rebuilds the caller from the locals the auth middleware set.
func actingUser(c *fiber.Ctx) domain.ActingUser {
	actor := domain.ActingUser{}
	if v, ok := c.Locals("user_id").(string); ok {
		actor.ID = v
	}
	if v, ok := c.Locals("email").(string); ok {
		actor.Email = v
	}
	if v, ok := c.Locals("name").(string); ok {
		actor.Name = v
	}
	if v, ok := c.Locals("role").(string); ok {
		actor.Role = v
	}
	if v, ok := c.Locals("email_verified").(bool); ok {
		actor.EmailVerified = v
	}
	return actor
}

// statusFor maps service errors onto HTTP codes. Anything unrecognized is
// treated as a bad request, matching how the rest of the API behaves.
func statusFor(err error) int {
	var fieldErr *domain.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrFoodPostNotFound),
		errors.Is(err, domain.ErrChecklistNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedFoodPostAccess),
		errors.Is(err, domain.ErrRecipientRoleRequired),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUserAlreadyRegistered):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrBackendUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, storage.ErrUploadTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadRequest
	}
}

func (h *foodPostHandler) CreateFoodPost(c *fiber.Ctx) error {
	req := new(domain.CreateFoodPostRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	image, _ := c.FormFile("image")

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateFoodPost, err)
	}

	post, err := h.foodPostService.CreateFoodPost(c.Context(), *req, image, actingUser(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedCreateFoodPost, err)
	}

	return presenters.SuccessResponse(c, post, fiber.StatusCreated, domain.MessageSuccessCreateFoodPost)
}

func (h *foodPostHandler) GetFoodPosts(c *fiber.Ctx) error {
	filter := domain.FoodPostFilter{
		Status:     c.Query("status"),
		PostedBy:   c.Query("posted_by"),
		Vegetarian: c.QueryBool("vegetarian"),
		GlutenFree: c.QueryBool("gluten_free"),
		NearExpiry: c.QueryBool("near_expiry"),
	}

	posts, err := h.foodPostService.GetFoodPosts(c.Context(), filter)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFoodPosts, err)
	}

	return presenters.SuccessResponse(c, domain.FoodPostListResponse{
		Posts: posts,
		Total: len(posts),
	}, fiber.StatusOK, domain.MessageSuccessGetFoodPosts)
}

func (h *foodPostHandler) GetDonorDashboard(c *fiber.Ctx) error {
	userID := actingUser(c).ID

	posts, err := h.foodPostService.GetDonorDashboard(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetDashboard, err)
	}

	return presenters.SuccessResponse(c, domain.FoodPostListResponse{
		Posts: posts,
		Total: len(posts),
	}, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

func (h *foodPostHandler) GetFoodPostByID(c *fiber.Ctx) error {
	postID := c.Params("id")
	if postID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetFoodPost, domain.ErrFoodPostNotFound)
	}

	post, err := h.foodPostService.GetFoodPostByID(c.Context(), postID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFoodPost, err)
	}

	return presenters.SuccessResponse(c, post, fiber.StatusOK, domain.MessageSuccessGetFoodPost)
}

func (h *foodPostHandler) ClaimFoodPost(c *fiber.Ctx) error {
	postID := c.Params("id")

	if err := h.foodPostService.ClaimFoodPost(c.Context(), postID, actingUser(c)); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedClaimFoodPost, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClaimFoodPost)
}

func (h *foodPostHandler) ConfirmPickup(c *fiber.Ctx) error {
	postID := c.Params("id")

	if err := h.foodPostService.ConfirmPickup(c.Context(), postID, actingUser(c)); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedConfirmPickup, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessConfirmPickup)
}

func (h *foodPostHandler) UpdateFoodPost(c *fiber.Ctx) error {
	postID := c.Params("id")

	req := new(domain.UpdateFoodPostRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	image, _ := c.FormFile("image")

	if err := h.foodPostService.UpdateFoodPost(c.Context(), postID, *req, image, actingUser(c)); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateFoodPost, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUpdateFoodPost)
}

func (h *foodPostHandler) DeleteFoodPost(c *fiber.Ctx) error {
	postID := c.Params("id")

	if err := h.foodPostService.DeleteFoodPost(c.Context(), postID, actingUser(c)); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteFoodPost, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteFoodPost)
}
