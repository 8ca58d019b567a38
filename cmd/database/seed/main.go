package main

import (
	"context"
	"log"
	"time"

	"mealmatch-backend/entities"
	"mealmatch-backend/internal/utils"
	"mealmatch-backend/pkg/docstore"
	"mealmatch-backend/pkg/firebase"
	"mealmatch-backend/pkg/foodpost"
	"mealmatch-backend/pkg/user"
)

// Seeds a handful of demo donors and posts so a fresh project has
// something to browse.
func main() {
	utils.LoadConfig()

	ctx := context.Background()
	firebaseApp, err := firebase.NewApp(ctx)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	firestoreClient, err := firebase.NewFirestoreClient(ctx, firebaseApp)
	if err != nil {
		log.Fatalf("firestore init failed: %v", err)
	}
	defer firestoreClient.Close()

	store := docstore.NewFirestoreStore(firestoreClient)
	userRepository := user.NewUserRepository(store)
	foodPostRepository := foodpost.NewFoodPostRepository(store)

	now := time.Now()

	donors := []*entities.User{
		{
			ID:            "seed-green-market",
			Name:          "Green Market",
			Email:         "contact@greenmarket.example",
			Role:          "donor",
			EmailVerified: true,
			CreatedAt:     now,
		},
		{
			ID:            "seed-italian-restaurant",
			Name:          "Italian Restaurant",
			Email:         "kitchen@italianrestaurant.example",
			Role:          "donor",
			EmailVerified: true,
			CreatedAt:     now,
		},
		{
			ID:            "seed-downtown-bakery",
			Name:          "Downtown Bakery",
			Email:         "orders@downtownbakery.example",
			Role:          "donor",
			EmailVerified: true,
			CreatedAt:     now,
		},
		{
			ID:                  "seed-city-food-bank",
			Name:                "City Food Bank",
			Email:               "intake@cityfoodbank.example",
			Role:                "ngo",
			OrganizationName:    "City Food Bank",
			OrganizationDetails: "Collects surplus food for local shelters.",
			EmailVerified:       true,
			CreatedAt:           now,
		},
	}

	for _, donor := range donors {
		if err := userRepository.CreateUser(ctx, donor); err != nil {
			log.Fatalf("seed user %s failed: %v", donor.ID, err)
		}
	}

	posts := []*entities.FoodPost{
		{
			Title:        "Fresh Produce",
			Quantity:     "10 kg",
			Description:  "Assorted seasonal vegetables and fruit from today's market.",
			PreparedTime: now.Add(-2 * time.Hour),
			ExpiryTime:   now.Add(24 * time.Hour),
			Location: entities.Location{
				Address:   "12 Market Street",
				Latitude:  40.7128,
				Longitude: -74.0060,
			},
			IsVegetarian: true,
			IsGlutenFree: true,
			PostedBy:     "seed-green-market",
			PostedByName: "Green Market",
			Status:       entities.StatusAvailable,
			CreatedAt:    now,
		},
		{
			Title:        "Prepared Meals",
			Quantity:     "25 portions",
			Description:  "Pasta dishes from tonight's service, refrigerated.",
			PreparedTime: now.Add(-3 * time.Hour),
			ExpiryTime:   now.Add(12 * time.Hour),
			Location: entities.Location{
				Address:   "48 Via Roma",
				Latitude:  40.7142,
				Longitude: -74.0119,
			},
			IsNonVegetarian: true,
			PostedBy:        "seed-italian-restaurant",
			PostedByName:    "Italian Restaurant",
			Status:          entities.StatusAvailable,
			CreatedAt:       now,
		},
		{
			Title:        "Bread Assortment",
			Quantity:     "40 loaves",
			Description:  "Day-old bread and pastries, still fresh.",
			PreparedTime: now.Add(-8 * time.Hour),
			ExpiryTime:   now.Add(36 * time.Hour),
			Location: entities.Location{
				Address:   "7 Baker Lane",
				Latitude:  40.7151,
				Longitude: -74.0021,
			},
			IsVegetarian: true,
			PostedBy:     "seed-downtown-bakery",
			PostedByName: "Downtown Bakery",
			Status:       entities.StatusAvailable,
			CreatedAt:    now,
		},
	}

	for _, post := range posts {
		postID, err := foodPostRepository.CreateFoodPost(ctx, post)
		if err != nil {
			log.Fatalf("seed post %q failed: %v", post.Title, err)
		}

		checklist := &entities.SafetyChecklist{
			FoodID:             postID,
			HygieneRating:      5,
			ProperStorage:      true,
			SafeTemperature:    true,
			HandlingProcedures: true,
			Notes:              "Food has been properly handled and stored.",
			CreatedAt:          now,
		}
		if _, err := foodPostRepository.CreateChecklist(ctx, checklist); err != nil {
			log.Fatalf("seed checklist for %q failed: %v", post.Title, err)
		}
		log.Printf("seeded post %q (%s)", post.Title, postID)
	}

	log.Println("seeding complete")
}
