package foodpost

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmatch-backend/domain"
	"mealmatch-backend/entities"
	"mealmatch-backend/internal/utils/storage"
	"mealmatch-backend/pkg/docstore"
	"mealmatch-backend/pkg/user"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// countingStore wraps a real store and counts writes per collection, so the
// tests can assert which operations touched which backend.
type countingStore struct {
	docstore.Store
	mu         sync.Mutex
	creates    map[string]int
	updates    map[string]int
	failCreate map[string]error
	failUpdate map[string]error
}

func newCountingStore() *countingStore {
	return &countingStore{
		Store:      docstore.NewMemoryStore(),
		creates:    make(map[string]int),
		updates:    make(map[string]int),
		failCreate: make(map[string]error),
		failUpdate: make(map[string]error),
	}
}

func (s *countingStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	s.mu.Lock()
	if err := s.failCreate[collection]; err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.creates[collection]++
	s.mu.Unlock()
	return s.Store.Create(ctx, collection, data)
}

func (s *countingStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	if err := s.failUpdate[collection]; err != nil {
		s.mu.Unlock()
		return err
	}
	s.updates[collection]++
	s.mu.Unlock()
	return s.Store.Update(ctx, collection, id, fields)
}

type fakeS3 struct {
	uploads []string
	deletes []string
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
	f.deletes = append(f.deletes, objectKey)
	folder := objectKey[:strings.Index(objectKey, "/")]
	return f.UploadFile(ctx, file, folder, allowedTypes...)
}

func (f *fakeS3) DeleteFile(ctx context.Context, objectKey string) error {
	f.deletes = append(f.deletes, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://cdn.test/")
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) SendMail(toEmail string, subject string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, toEmail)
	return nil
}

type testEnv struct {
	service  *foodPostService
	store    *countingStore
	userRepo user.UserRepository
	s3       *fakeS3
	mailer   *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newCountingStore()
	userRepo := user.NewUserRepository(store)
	s3 := &fakeS3{}
	mailer := &fakeMailer{}

	svc := NewFoodPostService(NewFoodPostRepository(store), userRepo, s3, mailer).(*foodPostService)
	svc.now = func() time.Time { return fixedNow }

	return &testEnv{service: svc, store: store, userRepo: userRepo, s3: s3, mailer: mailer}
}

var (
	donorActor = domain.ActingUser{
		ID:            "donor-1",
		Email:         "donor@example.com",
		Name:          "Green Market",
		Role:          domain.RoleDonor,
		EmailVerified: true,
	}
	ngoActor = domain.ActingUser{
		ID:            "ngo-1",
		Email:         "ngo@example.com",
		Name:          "City Food Bank",
		Role:          domain.RoleNGO,
		EmailVerified: true,
	}
)

func (e *testEnv) seedDonor(t *testing.T) {
	t.Helper()
	err := e.userRepo.CreateUser(context.Background(), &entities.User{
		ID:    donorActor.ID,
		Name:  donorActor.Name,
		Email: donorActor.Email,
		Role:  domain.RoleDonor,
	})
	require.NoError(t, err)
}

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func createRequest(expiry time.Time) domain.CreateFoodPostRequest {
	return domain.CreateFoodPostRequest{
		Title:              "Fresh Produce",
		Quantity:           "10 kg",
		Description:        "Seasonal vegetables",
		PreparedTime:       fixedNow.Add(-time.Hour).Format(time.RFC3339),
		ExpiryTime:         expiry.Format(time.RFC3339),
		Address:            "12 Market Street",
		Latitude:           40.7128,
		Longitude:          -74.0060,
		IsVegetarian:       true,
		HygieneRating:      5,
		ProperStorage:      true,
		SafeTemperature:    true,
		HandlingProcedures: true,
	}
}

func TestCreateFoodPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	image := fileHeader("tomatoes.jpg", "image/jpeg", 1024)
	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), image, donorActor)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, entities.StatusAvailable, post.Status)
	assert.Equal(t, donorActor.ID, post.PostedBy)
	assert.Equal(t, donorActor.Name, post.PostedByName)
	assert.Equal(t, fixedNow, post.CreatedAt)
	assert.Equal(t, "https://cdn.test/food-images/tomatoes.jpg", post.ImageURL)
	require.NotNil(t, post.Checklist)
	assert.Equal(t, 5, post.Checklist.HygieneRating)

	assert.Equal(t, 1, env.store.creates[entities.CollectionFoodPosts])
	assert.Equal(t, 1, env.store.creates[entities.CollectionSafetyChecklists])
}

func TestCreateFoodPostWithoutImage(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)

	assert.Equal(t, entities.StatusAvailable, post.Status)
	assert.Empty(t, post.ImageURL)
	assert.Empty(t, env.s3.uploads)
}

func TestCreateFoodPostNamesMissingField(t *testing.T) {
	env := newTestEnv(t)

	req := createRequest(fixedNow.Add(time.Hour))
	req.Quantity = ""
	_, err := env.service.CreateFoodPost(context.Background(), req, nil, donorActor)

	var fieldErr *domain.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "quantity", fieldErr.Field)
	assert.Zero(t, env.store.creates[entities.CollectionFoodPosts])
}

func TestCreateFoodPostRejectsOversizedImageBeforeAnyWrite(t *testing.T) {
	env := newTestEnv(t)

	image := fileHeader("huge.jpg", "image/jpeg", 6*1024*1024)
	_, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(24*time.Hour)), image, donorActor)
	assert.ErrorIs(t, err, storage.ErrFileTooLarge)

	assert.Empty(t, env.s3.uploads)
	assert.Zero(t, env.store.creates[entities.CollectionFoodPosts])
	assert.Zero(t, env.store.creates[entities.CollectionSafetyChecklists])
}

func TestCreateFoodPostRejectsWrongImageType(t *testing.T) {
	env := newTestEnv(t)

	image := fileHeader("doc.pdf", "application/pdf", 1024)
	_, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(24*time.Hour)), image, donorActor)
	assert.ErrorIs(t, err, storage.ErrInvalidFileType)
	assert.Zero(t, env.store.creates[entities.CollectionFoodPosts])
}

func TestCreateFoodPostRejectsPastExpiry(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(-time.Hour)), nil, donorActor)

	var fieldErr *domain.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "expiry_time", fieldErr.Field)
	assert.Zero(t, env.store.creates[entities.CollectionFoodPosts])
}

func TestCreateFoodPostRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)

	actor := donorActor
	actor.EmailVerified = false
	_, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(time.Hour)), nil, actor)
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
}

func TestCreateFoodPostRequiresDonorRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(time.Hour)), nil, ngoActor)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestCreateFoodPostSurvivesChecklistFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failCreate[entities.CollectionSafetyChecklists] = assert.AnError

	post, err := env.service.CreateFoodPost(context.Background(), createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	assert.Nil(t, post.Checklist)
	assert.Equal(t, 1, env.store.creates[entities.CollectionFoodPosts])
}

func TestDonorDashboardSweepsExpiredPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fresh, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)
	stale, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)

	// Move the clock past the second post's expiry.
	env.service.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	posts, err := env.service.GetDonorDashboard(ctx, donorActor.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	statuses := map[string]string{}
	for _, p := range posts {
		statuses[p.ID] = p.Status
	}
	assert.Equal(t, entities.StatusAvailable, statuses[fresh.ID])
	assert.Equal(t, entities.StatusExpired, statuses[stale.ID])

	// The write really happened, not just the in-memory view.
	persisted, err := env.service.GetFoodPostByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusExpired, persisted.Status)
}

func TestDonorDashboardSweepIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)

	env.service.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	_, err = env.service.GetDonorDashboard(ctx, donorActor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.updates[entities.CollectionFoodPosts])

	// A second read must not rewrite a post that is already expired.
	_, err = env.service.GetDonorDashboard(ctx, donorActor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.updates[entities.CollectionFoodPosts])
}

func TestDonorDashboardDoesNotTouchClaimedPosts(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)
	require.NoError(t, env.service.ClaimFoodPost(ctx, post.ID, ngoActor))

	env.service.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	posts, err := env.service.GetDonorDashboard(ctx, donorActor.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, entities.StatusClaimed, posts[0].Status)
}

func TestGetFoodPostsNearExpiryFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	soon, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)
	_, err = env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(5*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	posts, err := env.service.GetFoodPosts(ctx, domain.FoodPostFilter{NearExpiry: true})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, soon.ID, posts[0].ID)
}

func TestGetFoodPostsNearExpiryExcludesAlreadyPast(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)

	env.service.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	posts, err := env.service.GetFoodPosts(ctx, domain.FoodPostFilter{NearExpiry: true})
	require.NoError(t, err)
	assert.Empty(t, posts)

	// The browse read never triggers the sweep; the stored status is
	// untouched until the owner opens their dashboard.
	persisted, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusAvailable, persisted.Status)
}

func TestGetFoodPostsStatusAndDietaryFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	veg, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	meat := createRequest(fixedNow.Add(24 * time.Hour))
	meat.IsVegetarian = false
	meat.IsNonVegetarian = true
	_, err = env.service.CreateFoodPost(ctx, meat, nil, donorActor)
	require.NoError(t, err)

	posts, err := env.service.GetFoodPosts(ctx, domain.FoodPostFilter{
		Status:     entities.StatusAvailable,
		Vegetarian: true,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, veg.ID, posts[0].ID)
}

func TestClaimFoodPost(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	require.NoError(t, env.service.ClaimFoodPost(ctx, post.ID, ngoActor))

	claimed, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusClaimed, claimed.Status)

	// The donor got a best-effort heads up.
	assert.Equal(t, []string{donorActor.Email}, env.mailer.sent)
}

func TestClaimFoodPostRequiresRecipientRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	err = env.service.ClaimFoodPost(ctx, post.ID, donorActor)
	assert.ErrorIs(t, err, domain.ErrRecipientRoleRequired)
}

func TestClaimFoodPostNotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.ClaimFoodPost(context.Background(), "missing", ngoActor)
	assert.ErrorIs(t, err, domain.ErrFoodPostNotFound)
}

func TestConcurrentClaimsLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	other := ngoActor
	other.ID = "ngo-2"
	other.Name = "Second Shelter"

	// Both claims race on the same available post and both succeed; there
	// is no guard on the current status.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, claimer := range []domain.ActingUser{ngoActor, other} {
		wg.Add(1)
		go func(actor domain.ActingUser) {
			defer wg.Done()
			errs <- env.service.ClaimFoodPost(ctx, post.ID, actor)
		}(claimer)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	claimed, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusClaimed, claimed.Status)
	assert.Len(t, env.mailer.sent, 2)
}

func TestClaimSucceedsWhenMailFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t)
	env.mailer.err = assert.AnError
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	require.NoError(t, env.service.ClaimFoodPost(ctx, post.ID, ngoActor))

	claimed, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusClaimed, claimed.Status)
}

func TestConfirmPickup(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)
	require.NoError(t, env.service.ClaimFoodPost(ctx, post.ID, ngoActor))

	require.NoError(t, env.service.ConfirmPickup(ctx, post.ID, ngoActor))

	picked, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPickedUp, picked.Status)
}

func TestConfirmPickupRequiresRecipientRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	err = env.service.ConfirmPickup(ctx, post.ID, donorActor)
	assert.ErrorIs(t, err, domain.ErrRecipientRoleRequired)
}

func TestUpdateFoodPostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	stranger := domain.ActingUser{ID: "donor-2", Role: domain.RoleDonor, EmailVerified: true}
	title := "New Title"
	err = env.service.UpdateFoodPost(ctx, post.ID, domain.UpdateFoodPostRequest{Title: &title}, nil, stranger)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedFoodPostAccess)
}

func TestUpdateFoodPostPartialFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	title := "Surplus Vegetables"
	rating := 4
	err = env.service.UpdateFoodPost(ctx, post.ID, domain.UpdateFoodPostRequest{
		Title:         &title,
		HygieneRating: &rating,
	}, nil, donorActor)
	require.NoError(t, err)

	updated, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Surplus Vegetables", updated.Title)
	assert.Equal(t, "10 kg", updated.Quantity)
	require.NotNil(t, updated.Checklist)
	assert.Equal(t, 4, updated.Checklist.HygieneRating)
}

func TestUpdateFoodPostReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	image := fileHeader("old.jpg", "image/jpeg", 1024)
	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), image, donorActor)
	require.NoError(t, err)

	newImage := fileHeader("new.png", "image/png", 2048)
	err = env.service.UpdateFoodPost(ctx, post.ID, domain.UpdateFoodPostRequest{}, newImage, donorActor)
	require.NoError(t, err)

	updated, err := env.service.GetFoodPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/food-images/new.png", updated.ImageURL)
	assert.Contains(t, env.s3.deletes, "food-images/old.jpg")
}

func TestDeleteFoodPostCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	image := fileHeader("photo.jpg", "image/jpeg", 1024)
	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), image, donorActor)
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteFoodPost(ctx, post.ID, donorActor))

	_, err = env.service.GetFoodPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrFoodPostNotFound)
	assert.Contains(t, env.s3.deletes, "food-images/photo.jpg")

	checklists, err := env.store.Query(ctx, entities.CollectionSafetyChecklists, nil, "", false)
	require.NoError(t, err)
	assert.Empty(t, checklists)
}

func TestDeleteFoodPostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(24*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	err = env.service.DeleteFoodPost(ctx, post.ID, ngoActor)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedFoodPostAccess)
}

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(time.Hour)), nil, donorActor)
	require.NoError(t, err)
	_, err = env.service.CreateFoodPost(ctx, createRequest(fixedNow.Add(48*time.Hour)), nil, donorActor)
	require.NoError(t, err)

	env.service.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }

	expired, err := env.service.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	// Running again finds nothing left to expire.
	expired, err = env.service.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}
