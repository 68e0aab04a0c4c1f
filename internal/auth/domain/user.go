package domain

import "time"

// User is the projection the token subsystem works from: who the principal
// is and what roles they currently hold. Password material and profile data
// live elsewhere; this service never sees them.
type User struct {
	ID        string
	Email     string // unique, used as the token subject
	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role struct {
	ID          string
	Name        string // unique
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Permission struct {
	ID   string
	Name string // unique
}
