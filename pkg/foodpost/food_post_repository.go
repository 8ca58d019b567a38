package foodpost

import (
	"context"
	"errors"
	"log"
	"time"

	"mealmatch-backend/domain"
	"mealmatch-backend/entities"
	"mealmatch-backend/pkg/docstore"
)

type (
	FoodPostRepository interface {
		CreateFoodPost(ctx context.Context, post *entities.FoodPost) (string, error)
		GetFoodPostByID(ctx context.Context, id string) (*entities.FoodPost, error)
		UpdateFoodPostStatus(ctx context.Context, id string, status string) error
		UpdateFoodPostFields(ctx context.Context, id string, fields map[string]interface{}) error
		DeleteFoodPost(ctx context.Context, id string) error
		QueryFoodPosts(ctx context.Context, filters []docstore.Filter) ([]*entities.FoodPost, error)

		CreateChecklist(ctx context.Context, checklist *entities.SafetyChecklist) (string, error)
		GetChecklistByFoodID(ctx context.Context, foodID string) (*entities.SafetyChecklist, error)
		UpdateChecklistFields(ctx context.Context, id string, fields map[string]interface{}) error
		DeleteChecklist(ctx context.Context, id string) error
	}

	foodPostRepository struct {
		store docstore.Store
	}
)

func NewFoodPostRepository(store docstore.Store) FoodPostRepository {
	return &foodPostRepository{store: store}
}

// backendErr keeps the raw failure in the log and hands callers the
// collaborator-neutral sentinel. Not-found passes through untouched.
func backendErr(op, id string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	log.Printf("docstore %s failed (id=%q): %v", op, id, err)
	return domain.ErrBackendUnavailable
}

func (r *foodPostRepository) CreateFoodPost(ctx context.Context, post *entities.FoodPost) (string, error) {
	id, err := r.store.Create(ctx, entities.CollectionFoodPosts, foodPostToDoc(post))
	if err != nil {
		return "", backendErr("create food post", "", err)
	}
	return id, nil
}

func (r *foodPostRepository) GetFoodPostByID(ctx context.Context, id string) (*entities.FoodPost, error) {
	data, err := r.store.Get(ctx, entities.CollectionFoodPosts, id)
	if err != nil {
		return nil, backendErr("get food post", id, err)
	}
	return foodPostFromDoc(id, data), nil
}

func (r *foodPostRepository) UpdateFoodPostStatus(ctx context.Context, id string, status string) error {
	err := r.store.Update(ctx, entities.CollectionFoodPosts, id, map[string]interface{}{"status": status})
	if err != nil {
		return backendErr("update food post status", id, err)
	}
	return nil
}

func (r *foodPostRepository) UpdateFoodPostFields(ctx context.Context, id string, fields map[string]interface{}) error {
	err := r.store.Update(ctx, entities.CollectionFoodPosts, id, fields)
	if err != nil {
		return backendErr("update food post", id, err)
	}
	return nil
}

func (r *foodPostRepository) DeleteFoodPost(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, entities.CollectionFoodPosts, id); err != nil {
		return backendErr("delete food post", id, err)
	}
	return nil
}

func (r *foodPostRepository) QueryFoodPosts(ctx context.Context, filters []docstore.Filter) ([]*entities.FoodPost, error) {
	docs, err := r.store.Query(ctx, entities.CollectionFoodPosts, filters, "createdAt", true)
	if err != nil {
		return nil, backendErr("query food posts", "", err)
	}

	posts := make([]*entities.FoodPost, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, foodPostFromDoc(doc.ID, doc.Data))
	}
	return posts, nil
}

func (r *foodPostRepository) CreateChecklist(ctx context.Context, checklist *entities.SafetyChecklist) (string, error) {
	id, err := r.store.Create(ctx, entities.CollectionSafetyChecklists, checklistToDoc(checklist))
	if err != nil {
		return "", backendErr("create checklist", checklist.FoodID, err)
	}
	return id, nil
}

func (r *foodPostRepository) GetChecklistByFoodID(ctx context.Context, foodID string) (*entities.SafetyChecklist, error) {
	docs, err := r.store.Query(ctx, entities.CollectionSafetyChecklists,
		[]docstore.Filter{{Field: "foodId", Value: foodID}}, "", false)
	if err != nil {
		return nil, backendErr("query checklist", foodID, err)
	}
	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}
	return checklistFromDoc(docs[0].ID, docs[0].Data), nil
}

func (r *foodPostRepository) UpdateChecklistFields(ctx context.Context, id string, fields map[string]interface{}) error {
	err := r.store.Update(ctx, entities.CollectionSafetyChecklists, id, fields)
	if err != nil {
		return backendErr("update checklist", id, err)
	}
	return nil
}

func (r *foodPostRepository) DeleteChecklist(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, entities.CollectionSafetyChecklists, id); err != nil {
		return backendErr("delete checklist", id, err)
	}
	return nil
}

func foodPostToDoc(post *entities.FoodPost) map[string]interface{} {
	return map[string]interface{}{
		"title":           post.Title,
		"quantity":        post.Quantity,
		"description":     post.Description,
		"imageUrl":        post.ImageURL,
		"preparedTime":    post.PreparedTime,
		"expiryTime":      post.ExpiryTime,
		"address":         post.Location.Address,
		"latitude":        post.Location.Latitude,
		"longitude":       post.Location.Longitude,
		"isVegetarian":    post.IsVegetarian,
		"isNonVegetarian": post.IsNonVegetarian,
		"isGlutenFree":    post.IsGlutenFree,
		"postedBy":        post.PostedBy,
		"postedByName":    post.PostedByName,
		"status":          post.Status,
		"createdAt":       post.CreatedAt,
	}
}

func foodPostFromDoc(id string, data map[string]interface{}) *entities.FoodPost {
	return &entities.FoodPost{
		ID:           id,
		Title:        docString(data, "title"),
		Quantity:     docString(data, "quantity"),
		Description:  docString(data, "description"),
		ImageURL:     docString(data, "imageUrl"),
		PreparedTime: docTime(data, "preparedTime"),
		ExpiryTime:   docTime(data, "expiryTime"),
		Location: entities.Location{
			Address:   docString(data, "address"),
			Latitude:  docFloat(data, "latitude"),
			Longitude: docFloat(data, "longitude"),
		},
		IsVegetarian:    docBool(data, "isVegetarian"),
		IsNonVegetarian: docBool(data, "isNonVegetarian"),
		IsGlutenFree:    docBool(data, "isGlutenFree"),
		PostedBy:        docString(data, "postedBy"),
		PostedByName:    docString(data, "postedByName"),
		Status:          docString(data, "status"),
		CreatedAt:       docTime(data, "createdAt"),
	}
}

func checklistToDoc(checklist *entities.SafetyChecklist) map[string]interface{} {
	return map[string]interface{}{
		"foodId":             checklist.FoodID,
		"hygieneRating":      checklist.HygieneRating,
		"properStorage":      checklist.ProperStorage,
		"safeTemperature":    checklist.SafeTemperature,
		"handlingProcedures": checklist.HandlingProcedures,
		"notes":              checklist.Notes,
		"createdAt":          checklist.CreatedAt,
	}
}

func checklistFromDoc(id string, data map[string]interface{}) *entities.SafetyChecklist {
	return &entities.SafetyChecklist{
		ID:                 id,
		FoodID:             docString(data, "foodId"),
		HygieneRating:      docInt(data, "hygieneRating"),
		ProperStorage:      docBool(data, "properStorage"),
		SafeTemperature:    docBool(data, "safeTemperature"),
		HandlingProcedures: docBool(data, "handlingProcedures"),
		Notes:              docString(data, "notes"),
		CreatedAt:          docTime(data, "createdAt"),
	}
}

// Firestore hands numbers back as int64 or float64 depending on how they
// were written, so the readers accept both.

func docString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func docBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func docTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func docInt(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func docFloat(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
