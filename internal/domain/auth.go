package domain

import "time"

// Session describes an issued session token.
type Session struct {
	ID        string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}
