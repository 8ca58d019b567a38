package foodpost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"mealmatch-backend/domain"
	"mealmatch-backend/entities"
	"mealmatch-backend/internal/utils/mailing"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/docstore"
	"mealmatch-backend/pkg/user"
)

// NearExpiryWindow is how far ahead the "expiring soon" filter looks.
const NearExpiryWindow = 3 * time.Hour

type (
	FoodPostService interface {
		CreateFoodPost(ctx context.Context, req domain.CreateFoodPostRequest, image *multipart.FileHeader, actor domain.ActingUser) (domain.FoodPostResponse, error)
		GetFoodPosts(ctx context.Context, filter domain.FoodPostFilter) ([]domain.FoodPostResponse, error)
		GetDonorDashboard(ctx context.Context, ownerID string) ([]domain.FoodPostResponse, error)
		GetFoodPostByID(ctx context.Context, id string) (domain.FoodPostResponse, error)
		ClaimFoodPost(ctx context.Context, id string, actor domain.ActingUser) error
		ConfirmPickup(ctx context.Context, id string, actor domain.ActingUser) error
		UpdateFoodPost(ctx context.Context, id string, req domain.UpdateFoodPostRequest, image *multipart.FileHeader, actor domain.ActingUser) error
		DeleteFoodPost(ctx context.Context, id string, actor domain.ActingUser) error
		SweepExpired(ctx context.Context) (int, error)
	}

	foodPostService struct {
		foodPostRepository FoodPostRepository
		userRepository     user.UserRepository
		s3                 storage.AwsS3
		mailer             mailing.Mailer
		now                func() time.Time
	}
)

func NewFoodPostService(
	foodPostRepository FoodPostRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
) FoodPostService {
	return &foodPostService{
		foodPostRepository: foodPostRepository,
		userRepository:     userRepository,
		s3:                 s3,
		mailer:             mailer,
		now:                time.Now,
	}
}

func (s *foodPostService) CreateFoodPost(ctx context.Context, req domain.CreateFoodPostRequest, image *multipart.FileHeader, actor domain.ActingUser) (domain.FoodPostResponse, error) {
	if actor.Role != domain.RoleDonor {
		return domain.FoodPostResponse{}, domain.ErrUserNotAllowed
	}
	if !actor.EmailVerified {
		return domain.FoodPostResponse{}, domain.ErrEmailNotVerified
	}

	if req.Title == "" {
		return domain.FoodPostResponse{}, domain.NewFieldError("title", "must not be empty")
	}
	if req.Quantity == "" {
		return domain.FoodPostResponse{}, domain.NewFieldError("quantity", "must not be empty")
	}
	if req.Description == "" {
		return domain.FoodPostResponse{}, domain.NewFieldError("description", "must not be empty")
	}

	preparedTime, err := time.Parse(time.RFC3339, req.PreparedTime)
	if err != nil {
		return domain.FoodPostResponse{}, domain.NewFieldError("prepared_time", "must be a valid RFC3339 timestamp")
	}
	expiryTime, err := time.Parse(time.RFC3339, req.ExpiryTime)
	if err != nil {
		return domain.FoodPostResponse{}, domain.NewFieldError("expiry_time", "must be a valid RFC3339 timestamp")
	}
	if !expiryTime.After(s.now()) {
		return domain.FoodPostResponse{}, domain.NewFieldError("expiry_time", "must be in the future")
	}

	// The image gate runs before any write so a rejected file leaves no
	// trace in any backend.
	if image != nil {
		if err := storage.ValidateFile(image, storage.AllowImage...); err != nil {
			return domain.FoodPostResponse{}, err
		}
	}

	var imageURL string
	if image != nil {
		objectKey, err := s.s3.UploadFile(ctx, image, "food-images", storage.AllowImage...)
		if err != nil {
			return domain.FoodPostResponse{}, err
		}
		imageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	post := &entities.FoodPost{
		Title:        req.Title,
		Quantity:     req.Quantity,
		Description:  req.Description,
		ImageURL:     imageURL,
		PreparedTime: preparedTime,
		ExpiryTime:   expiryTime,
		Location: entities.Location{
			Address:   req.Address,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		},
		IsVegetarian:    req.IsVegetarian,
		IsNonVegetarian: req.IsNonVegetarian,
		IsGlutenFree:    req.IsGlutenFree,
		PostedBy:        actor.ID,
		PostedByName:    actor.Name,
		Status:          entities.StatusAvailable,
		CreatedAt:       s.now(),
	}

	postID, err := s.foodPostRepository.CreateFoodPost(ctx, post)
	if err != nil {
		return domain.FoodPostResponse{}, err
	}
	post.ID = postID

	checklist := &entities.SafetyChecklist{
		FoodID:             postID,
		HygieneRating:      req.HygieneRating,
		ProperStorage:      req.ProperStorage,
		SafeTemperature:    req.SafeTemperature,
		HandlingProcedures: req.HandlingProcedures,
		Notes:              req.ChecklistNotes,
		CreatedAt:          post.CreatedAt,
	}

	// The post and its checklist are separate documents with no
	// transaction across them. A checklist failure leaves the post in
	// place and is only logged.
	if _, err := s.foodPostRepository.CreateChecklist(ctx, checklist); err != nil {
		log.Printf("checklist write failed for post %s: %v", postID, err)
		checklist = nil
	}

	return foodPostToResponse(post, checklist), nil
}

func (s *foodPostService) GetFoodPosts(ctx context.Context, filter domain.FoodPostFilter) ([]domain.FoodPostResponse, error) {
	var filters []docstore.Filter
	if filter.Status != "" {
		filters = append(filters, docstore.Filter{Field: "status", Value: filter.Status})
	}
	if filter.PostedBy != "" {
		filters = append(filters, docstore.Filter{Field: "postedBy", Value: filter.PostedBy})
	}
	if filter.Vegetarian {
		filters = append(filters, docstore.Filter{Field: "isVegetarian", Value: true})
	}
	if filter.GlutenFree {
		filters = append(filters, docstore.Filter{Field: "isGlutenFree", Value: true})
	}

	posts, err := s.foodPostRepository.QueryFoodPosts(ctx, filters)
	if err != nil {
		return nil, err
	}

	// Near-expiry is a moving window, so it is applied here rather than
	// in the query: expiring within the window but not yet past.
	if filter.NearExpiry {
		now := s.now()
		cutoff := now.Add(NearExpiryWindow)
		filtered := posts[:0]
		for _, post := range posts {
			if post.ExpiryTime.After(now) && post.ExpiryTime.Before(cutoff) {
				filtered = append(filtered, post)
			}
		}
		posts = filtered
	}

	responses := make([]domain.FoodPostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, foodPostToResponse(post, nil))
	}
	return responses, nil
}

// GetDonorDashboard returns the owner's posts and performs the lazy expiry
// sweep on the way: any available post whose expiry has passed gets a
// single status write. The write is idempotent, so concurrent dashboard
// reads racing on the same post produce identical results.
func (s *foodPostService) GetDonorDashboard(ctx context.Context, ownerID string) ([]domain.FoodPostResponse, error) {
	posts, err := s.foodPostRepository.QueryFoodPosts(ctx, []docstore.Filter{
		{Field: "postedBy", Value: ownerID},
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]domain.FoodPostResponse, 0, len(posts))
	for _, post := range posts {
		if post.Status == entities.StatusAvailable && post.ExpiryTime.Before(now) {
			if err := s.foodPostRepository.UpdateFoodPostStatus(ctx, post.ID, entities.StatusExpired); err != nil {
				log.Printf("expiry sweep failed for post %s: %v", post.ID, err)
			}
			post.Status = entities.StatusExpired
		}
		responses = append(responses, foodPostToResponse(post, nil))
	}
	return responses, nil
}

func (s *foodPostService) GetFoodPostByID(ctx context.Context, id string) (domain.FoodPostResponse, error) {
	post, err := s.foodPostRepository.GetFoodPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.FoodPostResponse{}, domain.ErrFoodPostNotFound
		}
		return domain.FoodPostResponse{}, err
	}

	checklist, err := s.foodPostRepository.GetChecklistByFoodID(ctx, id)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return domain.FoodPostResponse{}, err
		}
		checklist = nil
	}

	return foodPostToResponse(post, checklist), nil
}

// ClaimFoodPost writes status=claimed unconditionally. There is no version
// check and no status precondition: racing claims perform identical writes
// and the last one wins, which the product accepts for this marketplace.
func (s *foodPostService) ClaimFoodPost(ctx context.Context, id string, actor domain.ActingUser) error {
	if actor.Role != domain.RoleNGO {
		return domain.ErrRecipientRoleRequired
	}

	post, err := s.foodPostRepository.GetFoodPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.ErrFoodPostNotFound
		}
		return err
	}

	if err := s.foodPostRepository.UpdateFoodPostStatus(ctx, id, entities.StatusClaimed); err != nil {
		return err
	}

	s.notifyDonor(ctx, post, actor)
	return nil
}

func (s *foodPostService) ConfirmPickup(ctx context.Context, id string, actor domain.ActingUser) error {
	if actor.Role != domain.RoleNGO {
		return domain.ErrRecipientRoleRequired
	}

	if _, err := s.foodPostRepository.GetFoodPostByID(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.ErrFoodPostNotFound
		}
		return err
	}

	return s.foodPostRepository.UpdateFoodPostStatus(ctx, id, entities.StatusPickedUp)
}

func (s *foodPostService) UpdateFoodPost(ctx context.Context, id string, req domain.UpdateFoodPostRequest, image *multipart.FileHeader, actor domain.ActingUser) error {
	post, err := s.foodPostRepository.GetFoodPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.ErrFoodPostNotFound
		}
		return err
	}
	if post.PostedBy != actor.ID {
		return domain.ErrUnauthorizedFoodPostAccess
	}

	if image != nil {
		if err := storage.ValidateFile(image, storage.AllowImage...); err != nil {
			return err
		}
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.PreparedTime != nil {
		preparedTime, err := time.Parse(time.RFC3339, *req.PreparedTime)
		if err != nil {
			return domain.NewFieldError("prepared_time", "must be a valid RFC3339 timestamp")
		}
		fields["preparedTime"] = preparedTime
	}
	if req.ExpiryTime != nil {
		expiryTime, err := time.Parse(time.RFC3339, *req.ExpiryTime)
		if err != nil {
			return domain.NewFieldError("expiry_time", "must be a valid RFC3339 timestamp")
		}
		if !expiryTime.After(s.now()) {
			return domain.NewFieldError("expiry_time", "must be in the future")
		}
		fields["expiryTime"] = expiryTime
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}
	if req.IsVegetarian != nil {
		fields["isVegetarian"] = *req.IsVegetarian
	}
	if req.IsNonVegetarian != nil {
		fields["isNonVegetarian"] = *req.IsNonVegetarian
	}
	if req.IsGlutenFree != nil {
		fields["isGlutenFree"] = *req.IsGlutenFree
	}

	if image != nil {
		var objectKey string
		var uploadErr error
		if post.ImageURL != "" {
			existingKey := s.s3.GetObjectKeyFromLink(post.ImageURL)
			objectKey, uploadErr = s.s3.UpdateFile(ctx, existingKey, image, storage.AllowImage...)
		} else {
			objectKey, uploadErr = s.s3.UploadFile(ctx, image, "food-images", storage.AllowImage...)
		}
		if uploadErr != nil {
			return uploadErr
		}
		fields["imageUrl"] = s.s3.GetPublicLinkKey(objectKey)
	}

	if len(fields) > 0 {
		if err := s.foodPostRepository.UpdateFoodPostFields(ctx, id, fields); err != nil {
			return err
		}
	}

	checklistFields := make(map[string]interface{})
	if req.HygieneRating != nil {
		checklistFields["hygieneRating"] = *req.HygieneRating
	}
	if req.ProperStorage != nil {
		checklistFields["properStorage"] = *req.ProperStorage
	}
	if req.SafeTemperature != nil {
		checklistFields["safeTemperature"] = *req.SafeTemperature
	}
	if req.HandlingProcedures != nil {
		checklistFields["handlingProcedures"] = *req.HandlingProcedures
	}
	if req.ChecklistNotes != nil {
		checklistFields["notes"] = *req.ChecklistNotes
	}

	if len(checklistFields) > 0 {
		checklist, err := s.foodPostRepository.GetChecklistByFoodID(ctx, id)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return domain.ErrChecklistNotFound
			}
			return err
		}
		if err := s.foodPostRepository.UpdateChecklistFields(ctx, checklist.ID, checklistFields); err != nil {
			return err
		}
	}

	return nil
}

// DeleteFoodPost removes the post, then its checklist, then the image blob.
// The steps are not transactional; later failures leave orphans that are
// logged and accepted.
func (s *foodPostService) DeleteFoodPost(ctx context.Context, id string, actor domain.ActingUser) error {
	post, err := s.foodPostRepository.GetFoodPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.ErrFoodPostNotFound
		}
		return err
	}
	if post.PostedBy != actor.ID {
		return domain.ErrUnauthorizedFoodPostAccess
	}

	if err := s.foodPostRepository.DeleteFoodPost(ctx, id); err != nil {
		return err
	}

	checklist, err := s.foodPostRepository.GetChecklistByFoodID(ctx, id)
	if err == nil {
		if err := s.foodPostRepository.DeleteChecklist(ctx, checklist.ID); err != nil {
			log.Printf("orphaned checklist %s for deleted post %s: %v", checklist.ID, id, err)
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("checklist lookup failed while deleting post %s: %v", id, err)
	}

	if post.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(post.ImageURL)
		if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
			log.Printf("image cleanup failed for deleted post %s: %v", id, err)
		}
	}

	return nil
}

// SweepExpired runs the same idempotent status write over every available
// post, for the optional scheduled sweep. Returns how many posts expired.
func (s *foodPostService) SweepExpired(ctx context.Context) (int, error) {
	posts, err := s.foodPostRepository.QueryFoodPosts(ctx, []docstore.Filter{
		{Field: "status", Value: entities.StatusAvailable},
	})
	if err != nil {
		return 0, err
	}

	now := s.now()
	expired := 0
	for _, post := range posts {
		if post.ExpiryTime.Before(now) {
			if err := s.foodPostRepository.UpdateFoodPostStatus(ctx, post.ID, entities.StatusExpired); err != nil {
				log.Printf("expiry sweep failed for post %s: %v", post.ID, err)
				continue
			}
			expired++
		}
	}
	return expired, nil
}

// notifyDonor is best effort. A mail failure never rolls back a claim.
func (s *foodPostService) notifyDonor(ctx context.Context, post *entities.FoodPost, claimer domain.ActingUser) {
	donor, err := s.userRepository.GetUserByID(ctx, post.PostedBy)
	if err != nil {
		log.Printf("claim notification skipped, donor %s lookup failed: %v", post.PostedBy, err)
		return
	}

	subject := fmt.Sprintf("Your donation %q has been claimed", post.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s has claimed your food post <b>%s</b>. They will be in touch to arrange pickup before %s.</p>",
		donor.Name, claimer.Name, post.Title, post.ExpiryTime.Format("Jan 2, 15:04"),
	)
	if err := s.mailer.SendMail(donor.Email, subject, body); err != nil {
		log.Printf("claim notification mail to %s failed: %v", donor.Email, err)
	}
}

func foodPostToResponse(post *entities.FoodPost, checklist *entities.SafetyChecklist) domain.FoodPostResponse {
	resp := domain.FoodPostResponse{
		ID:              post.ID,
		Title:           post.Title,
		Quantity:        post.Quantity,
		Description:     post.Description,
		ImageURL:        post.ImageURL,
		PreparedTime:    post.PreparedTime,
		ExpiryTime:      post.ExpiryTime,
		Location:        post.Location,
		IsVegetarian:    post.IsVegetarian,
		IsNonVegetarian: post.IsNonVegetarian,
		IsGlutenFree:    post.IsGlutenFree,
		PostedBy:        post.PostedBy,
		PostedByName:    post.PostedByName,
		Status:          post.Status,
		CreatedAt:       post.CreatedAt,
	}
	if checklist != nil {
		resp.Checklist = &domain.ChecklistResponse{
			HygieneRating:      checklist.HygieneRating,
			ProperStorage:      checklist.ProperStorage,
			SafeTemperature:    checklist.SafeTemperature,
			HandlingProcedures: checklist.HandlingProcedures,
			Notes:              checklist.Notes,
		}
	}
	return resp
}
