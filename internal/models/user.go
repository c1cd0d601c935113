package models

import "time"

// Address is one entry of a user's address book.
type Address struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// User is the marketplace profile bound one-to-one with an external identity.
// Credential verification happens at the identity provider; this record only
// carries profile data.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	IdentityUID string    `json:"identityUid" gorm:"uniqueIndex;type:varchar(128)"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Name        string    `json:"name" gorm:"type:varchar(100)"`
	Phone       string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Role        string    `json:"role" gorm:"type:varchar(16);default:buyer"`
	Addresses   []Address `json:"addresses" gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Identity is the verified context extracted from a bearer credential:
// the identity provider's stable subject plus the email it vouches for.
type Identity struct {
	UID   string
	Email string
}
