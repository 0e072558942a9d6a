package domain

import "time"

// User is an account that can publish recipes.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	IsVerified   bool
	CreatedAt    time.Time
}
