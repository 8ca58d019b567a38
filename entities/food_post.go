package entities

import (
	"time"
)

// Firestore collection names.
const (
	CollectionFoodPosts        = "foodPosts"
	CollectionSafetyChecklists = "safetyChecklists"
	CollectionUsers            = "users"
)

// Food post statuses. A post only moves forward:
// available -> claimed -> picked_up, or available -> expired.
const (
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
	StatusPickedUp  = "picked_up"
	StatusExpired   = "expired"
)

type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FoodPost struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Quantity        string    `json:"quantity"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url,omitempty"`
	PreparedTime    time.Time `json:"prepared_time"`
	ExpiryTime      time.Time `json:"expiry_time"`
	Location        Location  `json:"location"`
	IsVegetarian    bool      `json:"is_vegetarian"`
	IsNonVegetarian bool      `json:"is_non_vegetarian"`
	IsGlutenFree    bool      `json:"is_gluten_free"`
	PostedBy        string    `json:"posted_by"`
	PostedByName    string    `json:"posted_by_name"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// SafetyChecklist is the donor's self-certification attached to a post.
// Persisted as its own document linked by FoodID.
type SafetyChecklist struct {
	ID                 string    `json:"id"`
	FoodID             string    `json:"food_id"`
	HygieneRating      int       `json:"hygiene_rating"` // 1-5
	ProperStorage      bool      `json:"proper_storage"`
	SafeTemperature    bool      `json:"safe_temperature"`
	HandlingProcedures bool      `json:"handling_procedures"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
