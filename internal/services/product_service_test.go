package services_test

import (
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Search(filter repositories.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySeller(sellerID string) ([]models.Product, error) {
	args := m.Called(sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIdentityUID(uid string) (*models.User, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

var (
	sellerIdentity = models.Identity{UID: "idp-seller", Email: "seller@example.com"}
	otherIdentity  = models.Identity{UID: "idp-other", Email: "other@example.com"}

	sellerUser = &models.User{ID: "11111111-1111-1111-1111-111111111111", IdentityUID: "idp-seller", Email: "seller@example.com", Name: "seller"}
	otherUser  = &models.User{ID: "22222222-2222-2222-2222-222222222222", IdentityUID: "idp-other", Email: "other@example.com", Name: "other"}
)

func newServiceUnderTest() (*services.ProductService, *MockProductRepository, *MockUserRepository) {
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	userService := services.NewUserService(userRepo)
	service := services.NewProductService(productRepo, userService, nil) // nil for RabbitMQ client
	return service, productRepo, userRepo
}

func validListing() *models.Product {
	return &models.Product{
		Title:       "Basket of apples",
		Description: "Fresh from the orchard",
		Price:       5,
		Category:    "produce",
		Location: models.Location{
			Type:        "Point",
			Coordinates: []float64{-122.42, 37.77},
			Address:     "SF",
		},
		Images:   []string{"u1"},
		Quantity: 3,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()
	productRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	view, err := service.CreateProduct(sellerIdentity, validListing())

	assert.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, models.StatusActive, view.Status)
	assert.Equal(t, sellerUser.ID, view.SellerID)
	assert.GreaterOrEqual(t, len(view.Images), 1)
	assert.Equal(t, services.SellerSummary{ID: sellerUser.ID, Name: "seller"}, view.Seller)
	productRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DefaultsQuantity(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()
	productRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	listing := validListing()
	listing.Quantity = 0
	view, err := service.CreateProduct(sellerIdentity, listing)

	assert.NoError(t, err)
	assert.Equal(t, 1, view.Quantity)
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	filter := repositories.ProductFilter{Page: 2, Limit: 20, Sort: repositories.SortDateDesc}
	stored := []models.Product{{ID: "p1", SellerID: sellerUser.ID}}
	productRepo.On("Search", filter).Return(stored, int64(41), nil).Once()
	userRepo.On("GetByID", sellerUser.ID).Return(sellerUser, nil).Once()

	views, page, err := service.ListProducts(filter)

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "seller", views[0].Seller.Name)
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages) // ceil(41/20)
	productRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_EmptyIsNotAnError(t *testing.T) {
	service, productRepo, _ := newServiceUnderTest()

	filter := repositories.ProductFilter{Page: 1, Limit: 20}
	productRepo.On("Search", filter).Return([]models.Product{}, int64(0), nil).Once()

	views, page, err := service.ListProducts(filter)

	assert.NoError(t, err)
	assert.Empty(t, views)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.Pages)
}

func TestProductService_GetProduct_ExpandsSeller(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	stored := &models.Product{ID: "p1", SellerID: sellerUser.ID, Status: models.StatusInactive}
	productRepo.On("GetByID", "p1").Return(stored, nil).Once()
	userRepo.On("GetByID", sellerUser.ID).Return(sellerUser, nil).Once()

	view, err := service.GetProduct("p1")

	assert.NoError(t, err)
	// Inactive listings stay retrievable by direct id lookup.
	assert.Equal(t, models.StatusInactive, view.Status)
	assert.Equal(t, sellerUser.ID, view.Seller.ID)
	assert.Equal(t, "seller@example.com", view.Seller.Email)
	assert.Equal(t, "idp-seller", view.Seller.IdentityUID)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	service, productRepo, _ := newServiceUnderTest()

	productRepo.On("GetByID", "missing").Return(nil, models.ErrNotFound).Once()

	view, err := service.GetProduct("missing")

	assert.Nil(t, view)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProductService_UpdateProduct_PartialFields(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	stored := validListing()
	stored.ID = "p1"
	stored.SellerID = sellerUser.ID
	stored.Status = models.StatusActive

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()
	productRepo.On("GetByID", "p1").Return(stored, nil).Once()
	productRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	newPrice := 4.0
	view, err := service.UpdateProduct(sellerIdentity, "p1", services.ProductUpdate{Price: &newPrice})

	assert.NoError(t, err)
	assert.Equal(t, 4.0, view.Price)
	assert.Equal(t, "Basket of apples", view.Title) // untouched
	productRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NonOwnerForbidden(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	stored := validListing()
	stored.ID = "p1"
	stored.SellerID = sellerUser.ID

	userRepo.On("GetByIdentityUID", "idp-other").Return(otherUser, nil).Once()
	productRepo.On("GetByID", "p1").Return(stored, nil).Once()

	newPrice := 4.0
	view, err := service.UpdateProduct(otherIdentity, "p1", services.ProductUpdate{Price: &newPrice})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, models.ErrForbidden)
	// No Update expectation set: the stored listing must stay untouched.
	productRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_RejectsInvalidTransition(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	stored := validListing()
	stored.ID = "p1"
	stored.SellerID = sellerUser.ID
	stored.Status = models.StatusSold

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Once()
	productRepo.On("GetByID", "p1").Return(stored, nil).Once()

	status := models.StatusActive
	_, err := service.UpdateProduct(sellerIdentity, "p1", services.ProductUpdate{Status: &status})

	var vErr *models.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "status")
}

func TestProductService_DeactivateProduct_Idempotent(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	stored := validListing()
	stored.ID = "p1"
	stored.SellerID = sellerUser.ID
	stored.Status = models.StatusActive

	userRepo.On("GetByIdentityUID", "idp-seller").Return(sellerUser, nil).Twice()
	productRepo.On("GetByID", "p1").Return(stored, nil).Twice()
	// A single write: the second call sees an inactive listing and is a no-op.
	productRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	assert.NoError(t, service.DeactivateProduct(sellerIdentity, "p1"))
	assert.Equal(t, models.StatusInactive, stored.Status)
	assert.NoError(t, service.DeactivateProduct(sellerIdentity, "p1"))
	productRepo.AssertExpectations(t)
}

func TestProductService_ListBySeller_ByInternalID(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	productRepo.On("GetBySeller", sellerUser.ID).Return([]models.Product{}, nil).Once()

	views, err := service.ListBySeller(services.OwnerRef{ID: sellerUser.ID})

	assert.NoError(t, err)
	assert.Empty(t, views) // zero listings is not an error
	userRepo.AssertNotCalled(t, "GetByIdentityUID", mock.Anything)
}

func TestProductService_ListBySeller_UnknownIdentityNotFound(t *testing.T) {
	service, productRepo, userRepo := newServiceUnderTest()

	userRepo.On("GetByIdentityUID", "idp-stranger").Return(nil, models.ErrNotFound).Once()

	views, err := service.ListBySeller(services.OwnerRef{IdentityUID: "idp-stranger"})

	assert.Nil(t, views)
	assert.ErrorIs(t, err, models.ErrNotFound)
	productRepo.AssertNotCalled(t, "GetBySeller", mock.Anything)
}
