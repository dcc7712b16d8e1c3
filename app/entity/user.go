package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
	Address      sql.NullString
	Avatar       *Avatar
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Avatar struct {
	ID       uint64
	PublicID string
	URL      string
	UserID   uint64
}

// PendingUser is registration data that has not been persisted yet. It only
// ever lives inside a signed activation ticket.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	PhoneNumber  string `json:"phone_number"`
}
