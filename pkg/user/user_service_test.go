package user

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmatch-backend/domain"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/docstore"
)

type fakeS3 struct {
	uploads []string
}

func (f *fakeS3) UploadFile(ctx context.Context, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	if err := storage.ValidateFile(file, allowedTypes...); err != nil {
		return "", err
	}
	key := folder + "/" + file.Filename
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeS3) UpdateFile(ctx context.Context, objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	folder := objectKey[:strings.Index(objectKey, "/")]
	return f.UploadFile(ctx, file, folder, allowedTypes...)
}

func (f *fakeS3) DeleteFile(ctx context.Context, objectKey string) error { return nil }

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://cdn.test/")
}

func newTestService() (UserService, docstore.Store) {
	store := docstore.NewMemoryStore()
	return NewUserService(NewUserRepository(store), &fakeS3{}), store
}

var actor = domain.ActingUser{
	ID:            "uid-1",
	Email:         "donor@example.com",
	Name:          "Green Market",
	EmailVerified: true,
}

func TestRegister(t *testing.T) {
	service, _ := newTestService()

	profile, err := service.Register(context.Background(), domain.RegisterUserRequest{
		Name: "Green Market",
		Role: domain.RoleDonor,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, actor.ID, profile.ID)
	assert.Equal(t, actor.Email, profile.Email)
	assert.Equal(t, domain.RoleDonor, profile.Role)
	assert.True(t, profile.EmailVerified)
}

func TestRegisterNGOWithOrganization(t *testing.T) {
	service, _ := newTestService()

	profile, err := service.Register(context.Background(), domain.RegisterUserRequest{
		Name:                "City Food Bank",
		Role:                domain.RoleNGO,
		OrganizationName:    "City Food Bank",
		OrganizationDetails: "Collects surplus food for shelters.",
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleNGO, profile.Role)
	assert.Equal(t, "City Food Bank", profile.OrganizationName)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Register(context.Background(), domain.RegisterUserRequest{
		Name: "X",
		Role: "admin",
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRegisterTwiceFails(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, domain.RegisterUserRequest{Name: "Green Market", Role: domain.RoleDonor}, actor)
	require.NoError(t, err)

	// A second registration must not let the caller switch roles.
	_, err = service.Register(ctx, domain.RegisterUserRequest{Name: "Green Market", Role: domain.RoleNGO}, actor)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyRegistered)
}

func TestMeNotFound(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, domain.RegisterUserRequest{Name: "Green Market", Role: domain.RoleDonor}, actor)
	require.NoError(t, err)

	phone := "+1-555-0100"
	profile, err := service.UpdateUser(ctx, domain.UpdateUserRequest{Phone: &phone}, nil, actor.ID)
	require.NoError(t, err)

	assert.Equal(t, phone, profile.Phone)
	assert.Equal(t, "Green Market", profile.Name)
	assert.Equal(t, domain.RoleDonor, profile.Role)
}

func TestUpdateUserWithProfilePhoto(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, domain.RegisterUserRequest{Name: "Green Market", Role: domain.RoleDonor}, actor)
	require.NoError(t, err)

	photo := &multipart.FileHeader{
		Filename: "avatar.png",
		Size:     1024,
		Header:   textproto.MIMEHeader{"Content-Type": []string{"image/png"}},
	}
	profile, err := service.UpdateUser(ctx, domain.UpdateUserRequest{}, photo, actor.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/profile-images/avatar.png", profile.ProfileImage)
}

func TestUpdateUserNotFound(t *testing.T) {
	service, _ := newTestService()

	name := "Nobody"
	_, err := service.UpdateUser(context.Background(), domain.UpdateUserRequest{Name: &name}, nil, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
