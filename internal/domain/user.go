package domain

import "time"

// User represents an account that owns tasks and trackers. Username is the
// primary identifier and is what tasks and trackers reference as their owner.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries the fields of a partial profile update. Nil means unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}
