package models

import "time"

// Guest represents a club guest tracked in the CRM.
type Guest struct {
	ID          string     `json:"id" db:"id"`
	FullName    string     `json:"full_name" db:"full_name"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Email       *string    `json:"email,omitempty" db:"email"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	VIP         bool       `json:"vip" db:"vip"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
