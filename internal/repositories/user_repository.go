package repositories

import "lapak/internal/models"

// UserRepository defines the interface for owner-directory data access.
// Lookups return models.ErrNotFound for absent rows; Create returns
// models.ErrDuplicate when a uniqueness constraint loses a race.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByIdentityUID(uid string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}
