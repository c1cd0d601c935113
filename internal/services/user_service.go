package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/google/uuid"
)

// UserService is the owner directory: it maps external identities to
// marketplace profiles, creating minimal ones on the fly when needed.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ResolvedOwner is the outcome of resolving an identity to an owner profile.
// Persisted is false when the profile only exists in memory for the current
// request (its auto-creation could not be stored); writes attributed to an
// ephemeral owner are not guaranteed durable.
type ResolvedOwner struct {
	Owner     *models.User
	Persisted bool
}

// ResolveOwner finds the profile bound to the identity, auto-creating a
// minimal one when absent. Auto-creation failures are deliberately swallowed:
// a lost duplicate-key race resolves to the winning row, any other store
// failure is logged and the request proceeds with the in-memory profile.
func (s *UserService) ResolveOwner(identity models.Identity) (ResolvedOwner, error) {
	user, err := s.userRepo.GetByIdentityUID(identity.UID)
	if err == nil {
		return ResolvedOwner{Owner: user, Persisted: true}, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return ResolvedOwner{}, fmt.Errorf("failed to resolve owner: %w", err)
	}

	owner := minimalProfile(identity)
	if createErr := s.userRepo.Create(owner); createErr != nil {
		if errors.Is(createErr, models.ErrDuplicate) {
			// Another request created the row first; use the winner's.
			if winner, readErr := s.userRepo.GetByIdentityUID(identity.UID); readErr == nil {
				return ResolvedOwner{Owner: winner, Persisted: true}, nil
			}
		}
		log.Printf("Failed to persist auto-created profile for identity %s: %v", identity.UID, createErr)
		return ResolvedOwner{Owner: owner, Persisted: false}, nil
	}
	return ResolvedOwner{Owner: owner, Persisted: true}, nil
}

// Register binds a verified identity to a full profile. An identity that is
// already registered gets its existing profile back; a profile that matches
// by email is reconciled onto the new identity subject. The bool result is
// true when a new row was created.
func (s *UserService) Register(identity models.Identity, name, phone string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByIdentityUID(identity.UID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up identity: %w", err)
	}

	// A profile may predate this identity (e.g. the provider reissued the
	// subject); rebind it by email instead of failing on the unique index.
	if existing, emailErr := s.userRepo.GetByEmail(identity.Email); emailErr == nil {
		existing.IdentityUID = identity.UID
		if updErr := s.userRepo.Update(existing); updErr != nil {
			return nil, false, fmt.Errorf("failed to rebind profile: %w", updErr)
		}
		return existing, false, nil
	}

	user = &models.User{
		ID:          uuid.New().String(),
		IdentityUID: identity.UID,
		Email:       identity.Email,
		Name:        name,
		Phone:       phone,
		Role:        "buyer",
		Addresses:   []models.Address{},
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			if winner, readErr := s.userRepo.GetByIdentityUID(identity.UID); readErr == nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}
	return user, true, nil
}

// GetByID returns a profile by internal id.
func (s *UserService) GetByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// GetByIdentityUID returns a profile by external identity subject.
func (s *UserService) GetByIdentityUID(uid string) (*models.User, error) {
	return s.userRepo.GetByIdentityUID(uid)
}

// minimalProfile derives a best-effort profile from the identity context
// alone, naming the user after the email's local part.
func minimalProfile(identity models.Identity) *models.User {
	email := identity.Email
	if email == "" {
		email = "unknown@example.com"
	}
	name := "User"
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return &models.User{
		ID:          uuid.New().String(),
		IdentityUID: identity.UID,
		Email:       email,
		Name:        name,
		Role:        "buyer",
		Addresses:   []models.Address{},
	}
}
