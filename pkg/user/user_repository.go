package user

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
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		UpdateUserFields(ctx context.Context, id string, fields map[string]interface{}) error
	}

	userRepository struct {
		store docstore.Store
	}
)

func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{store: store}
}

func backendErr(op, id string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	log.Printf("docstore %s failed (id=%q): %v", op, id, err)
	return domain.ErrBackendUnavailable
}

// CreateUser writes the profile keyed by the Firebase Auth UID, so the
// identity provider and the profile store always agree on the id.
func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	err := r.store.Set(ctx, entities.CollectionUsers, user.ID, map[string]interface{}{
		"name":                user.Name,
		"email":               user.Email,
		"role":                user.Role,
		"phone":               user.Phone,
		"address":             user.Address,
		"profileImage":        user.ProfileImage,
		"organizationName":    user.OrganizationName,
		"organizationDetails": user.OrganizationDetails,
		"emailVerified":       user.EmailVerified,
		"createdAt":           user.CreatedAt,
	})
	if err != nil {
		return backendErr("create user", user.ID, err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	data, err := r.store.Get(ctx, entities.CollectionUsers, id)
	if err != nil {
		return nil, backendErr("get user", id, err)
	}

	user := &entities.User{ID: id}
	if v, ok := data["name"].(string); ok {
		user.Name = v
	}
	if v, ok := data["email"].(string); ok {
		user.Email = v
	}
	if v, ok := data["role"].(string); ok {
		user.Role = v
	}
	if v, ok := data["phone"].(string); ok {
		user.Phone = v
	}
	if v, ok := data["address"].(string); ok {
		user.Address = v
	}
	if v, ok := data["profileImage"].(string); ok {
		user.ProfileImage = v
	}
	if v, ok := data["organizationName"].(string); ok {
		user.OrganizationName = v
	}
	if v, ok := data["organizationDetails"].(string); ok {
		user.OrganizationDetails = v
	}
	if v, ok := data["emailVerified"].(bool); ok {
		user.EmailVerified = v
	}
	if v, ok := data["createdAt"].(time.Time); ok {
		user.CreatedAt = v
	}
	return user, nil
}

func (r *userRepository) UpdateUserFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, entities.CollectionUsers, id, fields); err != nil {
		return backendErr("update user", id, err)
	}
	return nil
}
