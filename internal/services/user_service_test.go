package services_test

import (
	"fmt"
	"testing"

	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_ResolveOwner_ExistingProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()

	resolved, err := service.ResolveOwner(sellerIdentity)

	assert.NoError(t, err)
	assert.True(t, resolved.Persisted)
	assert.Equal(t, sellerUser, resolved.Owner)
	userRepo.AssertExpectations(t)
}

func TestUserService_ResolveOwner_AutoCreatesMinimalProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-new").Return(nil, models.ErrNotFound).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	resolved, err := service.ResolveOwner(models.Identity{UID: "idp-new", Email: "jane.doe@example.com"})

	assert.NoError(t, err)
	assert.True(t, resolved.Persisted)
	assert.Equal(t, "idp-new", resolved.Owner.IdentityUID)
	assert.Equal(t, "jane.doe", resolved.Owner.Name) // derived from the email local part
	assert.Equal(t, "buyer", resolved.Owner.Role)
	userRepo.AssertExpectations(t)
}

func TestUserService_ResolveOwner_LostRaceUsesWinnerRow(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-seller").Return(nil, models.ErrNotFound).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(models.ErrDuplicate).Once()
	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()

	resolved, err := service.ResolveOwner(sellerIdentity)

	assert.NoError(t, err)
	assert.True(t, resolved.Persisted)
	assert.Equal(t, sellerUser.ID, resolved.Owner.ID)
	userRepo.AssertExpectations(t)
}

func TestUserService_ResolveOwner_EphemeralOnStoreFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-new").Return(nil, models.ErrNotFound).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(fmt.Errorf("store unreachable")).Once()

	resolved, err := service.ResolveOwner(models.Identity{UID: "idp-new", Email: "jane@example.com"})

	// The request is still served from the in-memory profile.
	assert.NoError(t, err)
	assert.False(t, resolved.Persisted)
	assert.Equal(t, "idp-new", resolved.Owner.IdentityUID)
	userRepo.AssertExpectations(t)
}

func TestUserService_Register_NewProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-new").Return(nil, models.ErrNotFound).Once()
	userRepo.On("GetByEmail", "jane@example.com").Return(nil, models.ErrNotFound).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, created, err := service.Register(models.Identity{UID: "idp-new", Email: "jane@example.com"}, "Jane", "555-0100")

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, "555-0100", user.Phone)
	userRepo.AssertExpectations(t)
}

func TestUserService_Register_ExistingIdentityReturnsProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()

	user, created, err := service.Register(sellerIdentity, "ignored", "")

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sellerUser, user)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestUserService_Register_RebindsProfileByEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewUserService(userRepo)

	existing := &models.User{ID: "u1", IdentityUID: "idp-old", Email: "seller@example.com", Name: "seller"}
	userRepo.On("GetByIdentityUID", "idp-reissued").Return(nil, models.ErrNotFound).Once()
	userRepo.On("GetByEmail", "seller@example.com").Return(existing, nil).Once()
	userRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, created, err := service.Register(models.Identity{UID: "idp-reissued", Email: "seller@example.com"}, "seller", "")

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "idp-reissued", user.IdentityUID)
	userRepo.AssertExpectations(t)
}
