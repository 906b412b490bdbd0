package models

import "time"

// User is a local account. A row is created exactly once, at the first
// successful login for a given email, and is never deleted by the service.
type User struct {
	ID        int64
	Email     string
	FullName  string
	Picture   string
	CreatedAt time.Time
}
