package user

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"mealmatch-backend/domain"
	"mealmatch-backend/entities"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/docstore"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterUserRequest, actor domain.ActingUser) (domain.UserResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateUser(ctx context.Context, req domain.UpdateUserRequest, photo *multipart.FileHeader, userID string) (domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		s3             storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, s3 storage.AwsS3) UserService {
	return &userService{
		userRepository: userRepository,
		s3:             s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterUserRequest, actor domain.ActingUser) (domain.UserResponse, error) {
	if req.Role != domain.RoleDonor && req.Role != domain.RoleNGO {
		return domain.UserResponse{}, domain.ErrInvalidRole
	}

	// Role is fixed at registration. Re-registering must not allow a role
	// change through the back door.
	if _, err := s.userRepository.GetUserByID(ctx, actor.ID); err == nil {
		return domain.UserResponse{}, domain.ErrUserAlreadyRegistered
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		ID:                  actor.ID,
		Name:                req.Name,
		Email:               actor.Email,
		Role:                req.Role,
		Phone:               req.Phone,
		Address:             req.Address,
		OrganizationName:    req.OrganizationName,
		OrganizationDetails: req.OrganizationDetails,
		EmailVerified:       actor.EmailVerified,
		CreatedAt:           time.Now(),
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}

	return userToResponse(user), nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return userToResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, req domain.UpdateUserRequest, photo *multipart.FileHeader, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.OrganizationName != nil {
		fields["organizationName"] = *req.OrganizationName
	}
	if req.OrganizationDetails != nil {
		fields["organizationDetails"] = *req.OrganizationDetails
	}

	if photo != nil {
		var objectKey string
		var uploadErr error
		if user.ProfileImage != "" {
			existingKey := s.s3.GetObjectKeyFromLink(user.ProfileImage)
			objectKey, uploadErr = s.s3.UpdateFile(ctx, existingKey, photo, storage.AllowImage...)
		} else {
			objectKey, uploadErr = s.s3.UploadFile(ctx, photo, "profile-images", storage.AllowImage...)
		}
		if uploadErr != nil {
			return domain.UserResponse{}, uploadErr
		}
		fields["profileImage"] = s.s3.GetPublicLinkKey(objectKey)
	}

	if len(fields) > 0 {
		if err := s.userRepository.UpdateUserFields(ctx, userID, fields); err != nil {
			return domain.UserResponse{}, err
		}
	}

	updated, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return userToResponse(updated), nil
}

func userToResponse(user *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:                  user.ID,
		Name:                user.Name,
		Email:               user.Email,
		Role:                user.Role,
		Phone:               user.Phone,
		Address:             user.Address,
		ProfileImage:        user.ProfileImage,
		OrganizationName:    user.OrganizationName,
		OrganizationDetails: user.OrganizationDetails,
		EmailVerified:       user.EmailVerified,
		CreatedAt:           user.CreatedAt,
	}
}
