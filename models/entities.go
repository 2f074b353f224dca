package models

import "time"

// BusinessType is a static category label attached to a business.
type BusinessType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a sales representative who owns businesses.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// State is a board column.
type State struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Business is a deal placed in exactly one state.
type Business struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	BusinessTypeID int64     `json:"business_type_id"`
	UserID         int64     `json:"user_id"`
	StateID        int64     `json:"state_id"`
	Value          Money     `json:"value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	BusinessType *BusinessType `json:"business_type,omitempty"`
	User         *User         `json:"user,omitempty"`
	State        *State        `json:"state,omitempty"`
}

// Board is the aggregate the board view renders from.
type Board struct {
	Businesses    []Business     `json:"businesses"`
	States        []State        `json:"states"`
	BusinessTypes []BusinessType `json:"business_types"`
	Users         []User         `json:"users"`
}
