package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record owned 1:1 by a Broker or Customer.
// It is never shared and is removed together with its owner.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Versioned
}

func (u *User) GetID() string { return u.ID.String() }
