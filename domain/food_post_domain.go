package domain

import (
	"errors"
	"time"

	"mealmatch-backend/entities"
)

var (
	MessageSuccessCreateFoodPost = "food post created successfully"
	MessageSuccessGetFoodPosts   = "success get food posts"
	MessageSuccessGetFoodPost    = "success get food post detail"
	MessageSuccessGetDashboard   = "success get donor dashboard"
	MessageSuccessClaimFoodPost  = "food post claimed successfully"
	MessageSuccessConfirmPickup  = "pickup confirmed successfully"
	MessageSuccessUpdateFoodPost = "food post updated successfully"
	MessageSuccessDeleteFoodPost = "food post deleted successfully"

	MessageFailedCreateFoodPost = "failed to create food post"
	MessageFailedGetFoodPosts   = "failed to get food posts"
	MessageFailedGetFoodPost    = "failed to get food post detail"
	MessageFailedGetDashboard   = "failed to get donor dashboard"
	MessageFailedClaimFoodPost  = "failed to claim food post"
	MessageFailedConfirmPickup  = "failed to confirm pickup"
	MessageFailedUpdateFoodPost = "failed to update food post"
	MessageFailedDeleteFoodPost = "failed to delete food post"

	ErrFoodPostNotFound           = errors.New("food post not found")
	ErrChecklistNotFound          = errors.New("safety checklist not found")
	ErrUnauthorizedFoodPostAccess = errors.New("unauthorized access to food post")
	ErrRecipientRoleRequired      = errors.New("only recipient organizations can perform this action")
	ErrEmailNotVerified           = errors.New("email must be verified before posting food")
)

type (
	// CreateFoodPostRequest arrives as multipart form data so the image can
	// ride along with the fields.
	CreateFoodPostRequest struct {
		Title              string  `form:"title" validate:"required"`
		Quantity           string  `form:"quantity" validate:"required"`
		Description        string  `form:"description" validate:"required"`
		PreparedTime       string  `form:"prepared_time" validate:"required"`
		ExpiryTime         string  `form:"expiry_time" validate:"required"`
		Address            string  `form:"address" validate:"required"`
		Latitude           float64 `form:"latitude"`
		Longitude          float64 `form:"longitude"`
		IsVegetarian       bool    `form:"is_vegetarian"`
		IsNonVegetarian    bool    `form:"is_non_vegetarian"`
		IsGlutenFree       bool    `form:"is_gluten_free"`
		HygieneRating      int     `form:"hygiene_rating" validate:"required,min=1,max=5"`
		ProperStorage      bool    `form:"proper_storage"`
		SafeTemperature    bool    `form:"safe_temperature"`
		HandlingProcedures bool    `form:"handling_procedures"`
		ChecklistNotes     string  `form:"checklist_notes"`
	}

	// UpdateFoodPostRequest carries only the fields the owner wants to change.
	// Pointer fields distinguish "unset" from a zero value.
	UpdateFoodPostRequest struct {
		Title              *string  `form:"title"`
		Quantity           *string  `form:"quantity"`
		Description        *string  `form:"description"`
		PreparedTime       *string  `form:"prepared_time"`
		ExpiryTime         *string  `form:"expiry_time"`
		Address            *string  `form:"address"`
		Latitude           *float64 `form:"latitude"`
		Longitude          *float64 `form:"longitude"`
		IsVegetarian       *bool    `form:"is_vegetarian"`
		IsNonVegetarian    *bool    `form:"is_non_vegetarian"`
		IsGlutenFree       *bool    `form:"is_gluten_free"`
		HygieneRating      *int     `form:"hygiene_rating"`
		ProperStorage      *bool    `form:"proper_storage"`
		SafeTemperature    *bool    `form:"safe_temperature"`
		HandlingProcedures *bool    `form:"handling_procedures"`
		ChecklistNotes     *string  `form:"checklist_notes"`
	}

	// FoodPostFilter narrows List results. Zero values mean "no filter".
	FoodPostFilter struct {
		Status     string `query:"status"`
		PostedBy   string `query:"posted_by"`
		Vegetarian bool   `query:"vegetarian"`
		GlutenFree bool   `query:"gluten_free"`
		NearExpiry bool   `query:"near_expiry"`
	}

	ChecklistResponse struct {
		HygieneRating      int    `json:"hygiene_rating"`
		ProperStorage      bool   `json:"proper_storage"`
		SafeTemperature    bool   `json:"safe_temperature"`
		HandlingProcedures bool   `json:"handling_procedures"`
		Notes              string `json:"notes,omitempty"`
	}

	FoodPostResponse struct {
		ID              string             `json:"id"`
		Title           string             `json:"title"`
		Quantity        string             `json:"quantity"`
		Description     string             `json:"description"`
		ImageURL        string             `json:"image_url,omitempty"`
		PreparedTime    time.Time          `json:"prepared_time"`
		ExpiryTime      time.Time          `json:"expiry_time"`
		Location        entities.Location  `json:"location"`
		IsVegetarian    bool               `json:"is_vegetarian"`
		IsNonVegetarian bool               `json:"is_non_vegetarian"`
		IsGlutenFree    bool               `json:"is_gluten_free"`
		PostedBy        string             `json:"posted_by"`
		PostedByName    string             `json:"posted_by_name"`
		Status          string             `json:"status"`
		CreatedAt       time.Time          `json:"created_at"`
		Checklist       *ChecklistResponse `json:"safety_checklist,omitempty"`
	}

	FoodPostListResponse struct {
		Posts []FoodPostResponse `json:"posts"`
		Total int                `json:"total"`
	}
)
