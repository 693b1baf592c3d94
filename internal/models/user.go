package models

import "github.com/google/uuid"

// User represents an authenticated customer or courier.
type User struct {
	BaseModel
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Phone          string        `gorm:"uniqueIndex" json:"phone"`
	DocumentNumber string        `json:"document_number"`
	PasswordHash   string        `json:"-"`
	IsCourier      bool          `json:"is_courier"`
	Addresses      []UserAddress `json:"addresses,omitempty"`
	Orders         []Order       `json:"orders,omitempty"`
}

// UserAddress is a saved delivery address.
type UserAddress struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label        string    `json:"label"`
	AddressLine  string    `json:"address_line"`
	City         string    `json:"city"`
	Municipality string    `json:"municipality"`
	Reference    string    `json:"reference"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IsDefault    bool      `json:"is_default"`
}
